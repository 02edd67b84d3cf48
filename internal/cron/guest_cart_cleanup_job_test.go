package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/smartkisan/kisan-backend/internal/cart"
	"github.com/smartkisan/kisan-backend/pkg/db/models"
	"github.com/smartkisan/kisan-backend/pkg/logger"
)

type fakeGuestCartStore struct {
	rows         []cart.StaleGuestCart
	cutoff       time.Time
	deleteCutoff time.Time
	deleted      []uuid.UUID
	listCalls    int
	deleteErr    error
}

func (f *fakeGuestCartStore) ListStaleGuestCarts(_ context.Context, cutoff time.Time, limit, offset int) ([]cart.StaleGuestCart, error) {
	f.listCalls++
	f.cutoff = cutoff
	if offset >= len(f.rows) {
		return nil, nil
	}
	end := min(offset+limit, len(f.rows))
	return f.rows[offset:end], nil
}

func (f *fakeGuestCartStore) DeleteStaleGuestCarts(_ context.Context, ids []uuid.UUID, cutoff time.Time) (int64, error) {
	f.deleteCutoff = cutoff
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.deleted = append(f.deleted, ids...)
	return int64(len(ids)), nil
}

func staleCarts(n int, withItemsEvery int) []cart.StaleGuestCart {
	rows := make([]cart.StaleGuestCart, 0, n)
	for i := 0; i < n; i++ {
		row := cart.StaleGuestCart{ID: uuid.New()}
		if withItemsEvery > 0 && i%withItemsEvery == 0 {
			row.Items = models.CartItems{{ProductID: "p", Quantity: 1}}
		}
		rows = append(rows, row)
	}
	return rows
}

func newGuestCartJob(t *testing.T, store *fakeGuestCartStore, pageSize int) *guestCartCleanupJob {
	t.Helper()
	jobIface, err := NewGuestCartCleanupJob(GuestCartCleanupJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Carts:    store,
		TTL:      48 * time.Hour,
		PageSize: pageSize,
	})
	if err != nil {
		t.Fatalf("NewGuestCartCleanupJob: %v", err)
	}
	return jobIface.(*guestCartCleanupJob)
}

func TestGuestCartCleanupDeletesOnlyEmptyCarts(t *testing.T) {
	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	store := &fakeGuestCartStore{rows: staleCarts(7, 3)}
	job := newGuestCartJob(t, store, 3)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := now.Add(-48 * time.Hour); !store.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, store.cutoff)
	}
	if !store.deleteCutoff.Equal(store.cutoff) {
		t.Fatalf("expected deletes guarded by the listing cutoff, got %s", store.deleteCutoff)
	}
	if store.listCalls != 3 {
		t.Fatalf("expected 3 pages, got %d", store.listCalls)
	}
	// rows 0, 3 and 6 hold items
	if len(store.deleted) != 4 {
		t.Fatalf("expected 4 deletions, got %d", len(store.deleted))
	}
	for _, id := range store.deleted {
		for i, row := range store.rows {
			if row.ID == id && len(row.Items) > 0 {
				t.Fatalf("deleted non-empty cart at index %d", i)
			}
		}
	}
}

func TestGuestCartCleanupChunksDeletes(t *testing.T) {
	store := &fakeGuestCartStore{rows: staleCarts(guestCartDeleteChunk*2+5, 0)}
	job := newGuestCartJob(t, store, 50)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.deleted) != guestCartDeleteChunk*2+5 {
		t.Fatalf("expected all carts deleted, got %d", len(store.deleted))
	}
}

func TestGuestCartCleanupCombinesDeleteErrors(t *testing.T) {
	store := &fakeGuestCartStore{rows: staleCarts(guestCartDeleteChunk+1, 0), deleteErr: errors.New("locked")}
	job := newGuestCartJob(t, store, 500)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, store.deleteErr) {
		t.Fatalf("expected wrapped delete error, got %v", err)
	}
}

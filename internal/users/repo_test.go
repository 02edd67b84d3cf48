package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartkisan/kisan-backend/pkg/db"
	"github.com/smartkisan/kisan-backend/pkg/db/dbtest"
	"github.com/smartkisan/kisan-backend/pkg/enums"
	"github.com/smartkisan/kisan-backend/pkg/types"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{
		Name:         " Ramesh Kumar ",
		Email:        "Ramesh@Example.com",
		Phone:        "9876543210",
		PasswordHash: "hash",
		Role:         enums.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ramesh Kumar", created.Name)
	assert.Equal(t, "ramesh@example.com", created.Email)
	assert.Equal(t, enums.RoleAdmin, created.Role)
	assert.Equal(t, enums.LanguageEnglish, created.Language)
	assert.Equal(t, types.DefaultLocation(), created.Location)

	byEmail, err := repo.FindByEmail(ctx, "ramesh@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.True(t, byEmail.Preferences.Notifications.SMS)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", byID.Phone)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, db.IsNotFound(err))
}

func TestRepositoryExistsByEmailOrPhone(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	_, err := repo.Create(ctx, CreateUserDTO{Name: "A", Email: "a@example.com", Phone: "9000000001", PasswordHash: "h"})
	require.NoError(t, err)

	exists, err := repo.ExistsByEmailOrPhone(ctx, "other@example.com", "9000000001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmailOrPhone(ctx, "a@example.com", "9000000002")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmailOrPhone(ctx, "b@example.com", "9000000002")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Create(ctx, CreateUserDTO{Name: "B", Email: "a@example.com", Phone: "9000000003", PasswordHash: "h"})
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryUpdateLastLoginAndSummaries(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	user, err := repo.Create(ctx, CreateUserDTO{Name: "Sita", Email: "sita@example.com", Phone: "9123456780", PasswordHash: "h"})
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))
	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
	assert.True(t, reloaded.LastLoginAt.Equal(at))

	summaries, err := repo.FindSummaries(ctx, []uuid.UUID{user.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, Summary{ID: user.ID.String(), Name: "Sita", Email: "sita@example.com", Phone: "9123456780"}, summaries[user.ID])
}

func TestDTOHidesCredentials(t *testing.T) {
	model := CreateUserDTO{Name: "X", Email: "x@example.com", Phone: "9999999999", PasswordHash: "secret"}.ToModel()
	dto := FromModel(model)
	assert.Equal(t, model.ID.String(), dto.ID)
	assert.Equal(t, enums.RoleFarmer, dto.Role)
	assert.Nil(t, FromModel(nil))

	demo := DemoUser()
	assert.Equal(t, DemoUserID, demo.ID)
	assert.Equal(t, "demo@gmail.com", demo.Email)
}

package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func fixedNow(t *testing.T, ts time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = prev })
}

func TestCreateSQLMigrationWritesValidTemplate(t *testing.T) {
	dir := t.TempDir()
	fixedNow(t, time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC))

	path, err := CreateSQLMigration(dir, "Add crop Ratings!")
	require.NoError(t, err)
	assert.Equal(t, "20260301093000_add_crop_ratings.sql", filepath.Base(path))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "another")
	require.Error(t, err, "same second must not reuse a version")

	_, err = CreateSQLMigration(dir, "!!!")
	require.Error(t, err)
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("20260101000000_ok.sql", "-- +goose Up\nCREATE TABLE a (id int);\n-- +goose Down\nDROP TABLE a;\n")
	write("20260101000000_dup.sql", "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")
	write("bad-name.sql", "")
	write("20260101000100_no_down.sql", "-- +goose Up\nSELECT 1;\n")
	write("20260101000200_empty_up.sql", "-- +goose Up\n-- nothing yet\n-- +goose Down\nSELECT 1;\n")
	write("README.md", "ignored")

	err := ValidateDir(dir)
	require.Error(t, err)
	problems := multierr.Errors(err)
	require.Len(t, problems, 4)
	joined := err.Error()
	for _, want := range []string{"already used", "bad-name.sql", "missing \"-- +goose Down\"", "no statements"} {
		assert.True(t, strings.Contains(joined, want), "missing %q in %s", want, joined)
	}
}

func TestValidateDirRequiresDir(t *testing.T) {
	require.Error(t, ValidateDir(""))
	require.Error(t, ValidateDir(filepath.Join(t.TempDir(), "missing")))
}

func TestRunRequiresDBAndDir(t *testing.T) {
	require.ErrorContains(t, Run(context.Background(), nil, DefaultDir, "up"), "db is required")
	require.ErrorContains(t, MigrateToVersion(context.Background(), nil, DefaultDir, "20260101000000"), "db is required")
}

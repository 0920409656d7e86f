package marker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/app-deployer/internal/domain/deploy"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), DefaultFilename))

	m, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, m)
}

// TestFileRepository_SaveLoadRemove walks the whole marker lifecycle.
func TestFileRepository_SaveLoadRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	file := filepath.Join(t.TempDir(), DefaultFilename)
	repo := NewFileRepository(file)

	want := &domain.Marker{
		PID:       4242,
		Repo:      "org/app",
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Save(ctx, want))
	require.ErrorIs(t, repo.Save(ctx, want), ErrExists)

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, want.PID, got.PID)
	require.Equal(t, want.Repo, got.Repo)
	require.True(t, want.StartedAt.Equal(got.StartedAt))

	require.NoError(t, repo.Remove(ctx))
	require.NoError(t, repo.Remove(ctx))

	_, err = os.Stat(file)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestFileRepository_Corrupt reports a decode error for garbage contents.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), DefaultFilename)
	require.NoError(t, os.WriteFile(file, []byte("{"), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

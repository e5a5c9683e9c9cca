package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/watchdog"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	k, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, k)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal kick.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "state.json")
	repo := NewFileRepository(file)

	want := &domain.Kick{
		ID:        "2f1c7a52-3c55-4d3c-9d0f-5b3c2f8f0a11",
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Actor: &domain.Actor{
			Hostname: "office-pc",
			Username: "o.shokin",
		},
	}

	require.NoError(t, repo.Save(context.Background(), want))
	require.Error(t, repo.Save(context.Background(), nil))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.ID, got.ID)
	require.True(t, want.Timestamp.Equal(got.Timestamp))
	require.Equal(t, want.Actor, got.Actor)

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileRepository_CorruptFile ensures garbage on disk is reported, not silently ignored.
func TestFileRepository_CorruptFile(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"unexpected": true}`), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

package deploy

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestArtifactIsFetched tracks the fetch stage through ArchivePath.
func TestArtifactIsFetched(t *testing.T) {
	t.Parallel()

	require.False(t, (*Artifact)(nil).IsFetched())

	a := &Artifact{Filename: "build-42.zip"}
	require.False(t, a.IsFetched())

	a.ArchivePath = "build-42.zip"
	require.True(t, a.IsFetched())
}

// TestNewMarker fills the current process and a UTC start time.
func TestNewMarker(t *testing.T) {
	t.Parallel()

	m := NewMarker("org/app")
	require.Equal(t, os.Getpid(), m.PID)
	require.Equal(t, "org/app", m.Repo)
	require.Equal(t, time.UTC, m.StartedAt.Location())
	require.WithinDuration(t, time.Now(), m.StartedAt, time.Second)
	require.True(t, m.IsOwn())

	m.PID++
	require.False(t, m.IsOwn())
	require.False(t, (*Marker)(nil).IsOwn())
}

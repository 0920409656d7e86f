package deploy

import (
	"os"
	"time"
)

// Artifact is the build archive resolved for one run.
type Artifact struct {
	// Filename is the name announced by the server's content-disposition header.
	Filename string
	// SourceURL is the download endpoint that produced the artifact.
	SourceURL string
	// ArchivePath is where the archive was saved locally; empty until fetched.
	ArchivePath string
	// Size is the number of bytes written to ArchivePath.
	Size int64
}

// IsFetched reports whether the archive has been written to disk.
func (a *Artifact) IsFetched() bool {
	return a != nil && a.ArchivePath != ""
}

// Result describes a successful run.
type Result struct {
	// OutputPath is the configured output directory, as given in the config.
	OutputPath string
	// Artifact is the archive that was deployed.
	Artifact *Artifact
	// DependenciesInstalled is false when installation was skipped or failed.
	DependenciesInstalled bool
}

// Marker records an in-progress run so that a second run against the same
// working directory can refuse to start.
type Marker struct {
	// PID is the process running the deployment.
	PID int `json:"pid"`
	// Repo is the repository being deployed.
	Repo string `json:"repo"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
}

// NewMarker returns a marker for the current process.
func NewMarker(repo string) *Marker {
	return &Marker{
		PID:       os.Getpid(),
		Repo:      repo,
		StartedAt: time.Now().UTC(),
	}
}

// IsOwn reports whether the marker belongs to the current process.
func (m *Marker) IsOwn() bool {
	return m != nil && m.PID == os.Getpid()
}

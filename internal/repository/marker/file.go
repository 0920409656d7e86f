package marker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/app-deployer/internal/config"
	domain "github.com/oshokin/app-deployer/internal/domain/deploy"
)

// DefaultFilename is the marker file created inside the working directory.
const DefaultFilename = ".app-deployer.marker.json"

// Repository defines persistence operations for the run marker.
type Repository interface {
	Load(ctx context.Context) (*domain.Marker, error)
	Save(ctx context.Context, marker *domain.Marker) error
	Remove(ctx context.Context) error
}

// FileRepository stores the marker in a JSON file.
type FileRepository struct {
	// path is the filesystem location of the marker file.
	path string
	// mu serializes access from within one process.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when no marker exists.
	ErrNotFound = errors.New("marker not found")
	// ErrExists is returned by Save when another marker is already in place.
	ErrExists = errors.New("marker already exists")
)

// NewFileRepository creates a repository that reads/writes JSON at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the marker from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Marker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read marker file: %w", err)
	}

	var m domain.Marker
	if err = json.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("decode marker file: %w", err)
	}

	return &m, nil
}

// Save creates the marker file. It fails with ErrExists rather than
// overwriting a marker written concurrently by another process.
func (r *FileRepository) Save(_ context.Context, m *domain.Marker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode marker: %w", err)
	}

	file, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, config.DefaultFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrExists
		}

		return fmt.Errorf("create marker file: %w", err)
	}

	if _, err = file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(r.path)

		return fmt.Errorf("write marker file: %w", err)
	}

	if err = file.Close(); err != nil {
		_ = os.Remove(r.path)

		return fmt.Errorf("close marker file: %w", err)
	}

	return nil
}

// Remove deletes the marker. A missing marker is not an error.
func (r *FileRepository) Remove(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove marker file: %w", err)
	}

	return nil
}

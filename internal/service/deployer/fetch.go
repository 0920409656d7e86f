package deployer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	domain "github.com/oshokin/app-deployer/internal/domain/deploy"
	"github.com/oshokin/app-deployer/internal/logger"
)

// sourceReader remembers read-side failures so they can be told apart from
// write-side ones after io.Copy returns.
type sourceReader struct {
	r   io.Reader
	err error
}

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		s.err = err
	}

	return n, err
}

// copyArchive streams src into dst. Read-side failures wrap
// ErrArtifactNotFound, write-side failures wrap ErrFilesystem.
func copyArchive(dst io.Writer, src io.Reader) (int64, error) {
	source := &sourceReader{r: src}

	written, err := io.Copy(dst, source)
	if err == nil {
		return written, nil
	}

	if source.err != nil {
		return written, fmt.Errorf("%w: download interrupted: %w", ErrArtifactNotFound, err)
	}

	return written, fmt.Errorf("%w: write archive: %w", ErrFilesystem, err)
}

// saveArchive streams body into a temporary file next to the target and
// renames it into place only after it was fully written and closed.
func (d *Deployer) saveArchive(ctx context.Context, body io.Reader, artifact *domain.Artifact) error {
	target := filepath.Join(d.cfg.WorkDir, artifact.Filename)

	logger.Infof(ctx, "Saving zip object to %s", target)

	part, err := os.CreateTemp(d.cfg.WorkDir, artifact.Filename+".*.part")
	if err != nil {
		logger.ErrorKV(ctx, "Unable to create archive file", "error", err)
		return fmt.Errorf("%w: create archive file: %w", ErrFilesystem, err)
	}

	partName := part.Name()

	written, err := copyArchive(part, body)
	if err != nil {
		_ = part.Close()
		_ = os.Remove(partName)

		logger.ErrorKV(ctx, "Unable to save archive", "error", err)

		return err
	}

	if err = part.Close(); err != nil {
		_ = os.Remove(partName)

		logger.ErrorKV(ctx, "Unable to close archive", "error", err)

		return fmt.Errorf("%w: close archive: %w", ErrFilesystem, err)
	}

	if err = os.Rename(partName, target); err != nil {
		_ = os.Remove(partName)

		logger.ErrorKV(ctx, "Unable to move archive into place", "error", err)

		return fmt.Errorf("%w: rename archive: %w", ErrFilesystem, err)
	}

	artifact.ArchivePath = target
	artifact.Size = written

	logger.InfoKV(ctx, "Saved archive", "path", target, "size", humanize.Bytes(uint64(written)))

	return nil
}

package deployer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	domain "github.com/oshokin/app-deployer/internal/domain/deploy"
	"github.com/oshokin/app-deployer/internal/logger"
	"github.com/oshokin/app-deployer/internal/version"
)

// locateArtifact requests the download endpoint and resolves the archive name
// from the response headers. On success the caller owns the returned body,
// which is the archive stream itself, so the artifact is requested only once.
func (d *Deployer) locateArtifact(ctx context.Context) (*domain.Artifact, io.ReadCloser, error) {
	logger.Infof(ctx, "domain     : %s", d.cfg.URL)
	logger.Infof(ctx, "repository : %s", d.cfg.Repo)
	logger.Infof(ctx, "filename   : %s", d.cfg.Filename)

	downloadURL, err := d.cfg.DownloadURL()
	if err != nil {
		logger.ErrorKV(ctx, "Could not build artifact URL", "error", err)
		return nil, nil, fmt.Errorf("%w: %w", ErrArtifactNotFound, err)
	}

	// The downloads API has no HEAD support, so the GET is issued right away
	// and its body is reused by the fetch stage.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, http.NoBody)
	if err != nil {
		logger.ErrorKV(ctx, "Could not build artifact request", "error", err)
		return nil, nil, fmt.Errorf("%w: %w", ErrArtifactNotFound, err)
	}

	req.SetBasicAuth(d.cfg.Username, d.cfg.Password)
	req.Header.Set("User-Agent", version.UserAgent())

	response, err := d.client.Do(req)
	if err != nil {
		logger.ErrorKV(ctx, "Could not fetch repository build artifact", "error", err)
		return nil, nil, fmt.Errorf("%w: %w", ErrArtifactNotFound, err)
	}

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		closeQuietly(response.Body)
		logger.ErrorKV(ctx, "Did not find zip file, download aborted", "status", response.Status)

		return nil, nil, fmt.Errorf("%s, %s: %w", downloadURL, response.Status, ErrArtifactNotFound)
	}

	filename, ok := ParseAttachmentFilename(response.Header.Get("Content-Disposition"))
	if !ok {
		closeQuietly(response.Body)
		logger.Error(ctx, "Did not find zip file, download aborted")

		return nil, nil, fmt.Errorf("%s: no attachment in response: %w", downloadURL, ErrArtifactNotFound)
	}

	logger.Infof(ctx, "Found zip file: %s", filename)

	return &domain.Artifact{
		Filename:  filename,
		SourceURL: downloadURL,
	}, response.Body, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

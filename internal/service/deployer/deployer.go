package deployer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/oshokin/app-deployer/internal/config"
	domain "github.com/oshokin/app-deployer/internal/domain/deploy"
	"github.com/oshokin/app-deployer/internal/logger"
	"github.com/oshokin/app-deployer/internal/repository/marker"
	"github.com/oshokin/app-deployer/internal/service/common"
)

// Options are inputs accepted by the deployer entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// EnvFile is the optional dotenv file with DEPLOYER_* values.
	EnvFile string
	// Overrides take precedence over every other configuration source.
	Overrides map[string]any
}

// Run loads the configuration, deploys the latest artifact and returns the
// output directory. It is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) (string, error) {
	ctx = logger.WithName(ctx, "app-deployer")
	ctx = logger.WithKV(ctx, "run_id", uuid.NewString())

	cfg, err := config.Load(opts.ConfigPath,
		config.WithEnvFile(opts.EnvFile),
		config.WithOverrides(opts.Overrides),
	)
	if err != nil {
		logger.ErrorKV(ctx, "Unable to load configuration", "error", err)
		return "", fmt.Errorf("load configuration: %w", err)
	}

	result, err := New(cfg).Run(ctx)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Deployment completed", "path", result.OutputPath)

	return result.OutputPath, nil
}

// Deployer executes the download-and-install pipeline for one configuration.
type Deployer struct {
	// cfg is a private copy with defaults applied.
	cfg config.Config
	// client performs the artifact request.
	client *http.Client
	// runner executes the extract and install commands.
	runner common.CommandRunner
	// markers guards against overlapping runs in the same working directory.
	markers marker.Repository
	// isProcessAlive reports whether a marker's owner is still running.
	isProcessAlive func(pid int) (bool, error)
}

// Option configures a Deployer.
type Option func(*Deployer)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Deployer) {
		if client != nil {
			d.client = client
		}
	}
}

// WithCommandRunner replaces the shell runner.
func WithCommandRunner(runner common.CommandRunner) Option {
	return func(d *Deployer) {
		if runner != nil {
			d.runner = runner
		}
	}
}

// WithMarkerRepository replaces the file-based run marker.
func WithMarkerRepository(repo marker.Repository) Option {
	return func(d *Deployer) {
		if repo != nil {
			d.markers = repo
		}
	}
}

// New prepares a Deployer. cfg is copied; later changes to it have no effect.
func New(cfg *config.Config, opts ...Option) *Deployer {
	d := &Deployer{
		client:         http.DefaultClient,
		runner:         common.NewShellRunner(),
		isProcessAlive: processAlive,
	}

	if cfg != nil {
		d.cfg = *cfg
	}

	config.ApplyDefaults(&d.cfg)

	d.markers = marker.NewFileRepository(filepath.Join(d.cfg.WorkDir, marker.DefaultFilename))

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Run executes the pipeline:
// 1) Locate the artifact name from the response headers.
// 2) Remove the old output directory.
// 3) Stream the archive to disk.
// 4) Expand the archive.
// 5) Install dependencies, logging but not returning failures.
func (d *Deployer) Run(ctx context.Context) (*domain.Result, error) {
	if err := config.Validate(&d.cfg); err != nil {
		logger.ErrorKV(ctx, "Not downloading app", "error", err)
		return nil, err
	}

	release, err := d.acquireMarker(ctx)
	if err != nil {
		return nil, err
	}

	defer release()

	artifact, body, err := d.locateArtifact(ctx)
	if err != nil {
		return nil, err
	}

	defer closeQuietly(body)

	if err = d.removeOldOutput(ctx); err != nil {
		return nil, err
	}

	if err = d.saveArchive(ctx, body, artifact); err != nil {
		return nil, err
	}

	if err = d.expandArchive(ctx, artifact); err != nil {
		return nil, err
	}

	return &domain.Result{
		OutputPath:            d.cfg.OutputPath,
		Artifact:              artifact,
		DependenciesInstalled: d.installDependencies(ctx),
	}, nil
}

// acquireMarker writes the run marker, replacing one left by a dead process
// or by an earlier run of this process that failed to clean up.
// The returned func removes it.
func (d *Deployer) acquireMarker(ctx context.Context) (func(), error) {
	current := domain.NewMarker(d.cfg.Repo)

	err := d.markers.Save(ctx, current)
	if errors.Is(err, marker.ErrExists) {
		err = d.replaceStaleMarker(ctx, current)
	}

	if err != nil {
		if !errors.Is(err, ErrRunInProgress) {
			err = fmt.Errorf("%w: %w", ErrFilesystem, err)
		}

		logger.ErrorKV(ctx, "Unable to start deployment", "error", err)

		return nil, err
	}

	return func() {
		if removeErr := d.markers.Remove(ctx); removeErr != nil {
			logger.WarnKV(ctx, "Unable to remove run marker", "error", removeErr)
		}
	}, nil
}

func (d *Deployer) replaceStaleMarker(ctx context.Context, current *domain.Marker) error {
	existing, err := d.markers.Load(ctx)
	if err != nil && !errors.Is(err, marker.ErrNotFound) {
		logger.WarnKV(ctx, "Unreadable run marker, replacing it", "error", err)
	}

	if existing != nil && !existing.IsOwn() {
		alive, aliveErr := d.isProcessAlive(existing.PID)
		if aliveErr != nil {
			return fmt.Errorf("check marker owner: %w", aliveErr)
		}

		if alive {
			return fmt.Errorf("pid %d deploying %s since %s: %w",
				existing.PID, existing.Repo, existing.StartedAt.Format("2006-01-02 15:04:05"), ErrRunInProgress)
		}

		logger.InfoKV(ctx, "Removing stale run marker", "pid", existing.PID)
	}

	if err = d.markers.Remove(ctx); err != nil {
		return err
	}

	return d.markers.Save(ctx, current)
}

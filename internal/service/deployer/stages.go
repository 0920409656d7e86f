package deployer

import (
	"context"
	"errors"
	"fmt"
	"os"

	domain "github.com/oshokin/app-deployer/internal/domain/deploy"
	"github.com/oshokin/app-deployer/internal/logger"
	"github.com/oshokin/app-deployer/internal/service/common"
)

// removeOldOutput deletes the output directory so no stale file survives.
func (d *Deployer) removeOldOutput(ctx context.Context) error {
	outputDir := d.cfg.OutputDir()

	logger.Infof(ctx, "Removing %s", outputDir)

	if err := os.RemoveAll(outputDir); err != nil {
		logger.ErrorKV(ctx, "Unable to remove old output", "error", err)
		return fmt.Errorf("%w: remove %s: %w", ErrFilesystem, outputDir, err)
	}

	return nil
}

// expandArchive runs the extract command on the saved archive from the working directory.
func (d *Deployer) expandArchive(ctx context.Context, artifact *domain.Artifact) error {
	if !artifact.IsFetched() {
		return fmt.Errorf("%w: archive %s was not saved", ErrFilesystem, artifact.Filename)
	}

	command := common.Command{
		Line: d.cfg.ExtractCommand + " " + common.Quote(artifact.Filename),
		Dir:  d.cfg.WorkDir,
	}

	if _, err := d.runner.Run(ctx, command); err != nil {
		return fmt.Errorf("expand %s: %w", artifact.Filename, err)
	}

	logger.Infof(ctx, "Unzipped %s", artifact.Filename)

	if _, err := os.Stat(d.cfg.OutputDir()); errors.Is(err, os.ErrNotExist) {
		logger.WarnKV(ctx, "Archive did not create the output directory", "path", d.cfg.OutputDir())
	}

	return nil
}

// installDependencies runs the install command inside the output directory.
// Failures are logged and swallowed: a broken package manager must not undo
// a deployed artifact.
func (d *Deployer) installDependencies(ctx context.Context) bool {
	if d.cfg.SkipInstall {
		logger.Info(ctx, "Skipping dependency installation")
		return false
	}

	command := common.Command{
		Line: d.cfg.InstallCommand,
		Dir:  d.cfg.OutputDir(),
	}

	if _, err := d.runner.Run(ctx, command); err != nil {
		logger.ErrorKV(ctx, "Unable to install dependencies", "command", command.Line, "error", err)
		return false
	}

	logger.Infof(ctx, "Installed dependencies via %s", command.Line)

	return true
}

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/app-deployer/internal/config"
)

var errConfigExists = errors.New("config file already exists, use --force to overwrite")

func newInitConfigCommand() *cobra.Command {
	var force bool

	command := &cobra.Command{
		Use:   "init-config",
		Short: "Write a configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("%s: %w", configPath, errConfigExists)
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s; set repo, username and password before deploying\n", configPath)

			return nil
		},
	}

	command.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	return command
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/app-deployer/internal/config"
	"github.com/oshokin/app-deployer/internal/logger"
	"github.com/oshokin/app-deployer/internal/service/deployer"
	"github.com/oshokin/app-deployer/internal/version"
)

// flagKeys maps CLI flags onto configuration keys.
//
//nolint:gochecknoglobals // Static lookup table.
var flagKeys = map[string]string{
	"url":          "url",
	"username":     "username",
	"password":     "password",
	"repo":         "repo",
	"filename":     "filename",
	"path":         "path",
	"work-dir":     "work_dir",
	"skip-install": "skip_install",
}

var (
	// configPath to the configuration YAML file.
	configPath string
	// envFile to read DEPLOYER_* variables from.
	envFile string
	// logLevel for console output.
	logLevel string

	// rootCmd downloads the latest build artifact and deploys it.
	rootCmd = &cobra.Command{
		Use:          "app-deployer",
		Short:        "Replace the local build with the latest artifact from repository downloads",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			level, ok := logger.ParseLogLevel(logLevel)
			if !ok {
				return fmt.Errorf("unknown log level %q", logLevel)
			}

			logger.SetLevel(level)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			overrides, err := changedFlags(cmd)
			if err != nil {
				return err
			}

			outputPath, err := deployer.Run(ctx, &deployer.Options{
				ConfigPath: configPath,
				EnvFile:    envFile,
				Overrides:  overrides,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), outputPath)

			return nil
		},
	}
)

// Execute runs the app-deployer CLI and exits with non-zero status on error.
func Execute() {
	defer logger.Sync()

	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(newInitConfigCommand())

	if err := rootCmd.Execute(); err != nil {
		logger.Sync()
		os.Exit(1)
	}
}

// changedFlags collects only flags the user set, so they do not mask
// values coming from the config file or the environment.
func changedFlags(cmd *cobra.Command) (map[string]any, error) {
	overrides := make(map[string]any, len(flagKeys))

	for flagName, key := range flagKeys {
		flag := cmd.Flags().Lookup(flagName)
		if flag == nil || !flag.Changed {
			continue
		}

		if flagName == "skip-install" {
			value, err := cmd.Flags().GetBool(flagName)
			if err != nil {
				return nil, err
			}

			overrides[key] = value

			continue
		}

		overrides[key] = flag.Value.String()
	}

	return overrides, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&envFile, "env-file", config.DefaultEnvFilename, "dotenv file with DEPLOYER_* variables")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	local := rootCmd.Flags()
	local.String("url", config.DefaultURL, "downloads API root")
	local.StringP("username", "u", "", "basic-auth username")
	local.StringP("password", "p", "", "basic-auth password (prefer DEPLOYER_PASSWORD)")
	local.StringP("repo", "r", "", "repository identifier, e.g. org/app")
	local.StringP("filename", "f", "", "download name used in the request path")
	local.String("path", config.DefaultOutputPath, "output directory replaced by the archive contents")
	local.String("work-dir", config.DefaultWorkDir, "directory where the archive is saved and expanded")
	local.Bool("skip-install", false, "do not run the dependency install command")
}

// Command server runs the clientes admin web UI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simp-lee/clientes/internal/app"
	"github.com/simp-lee/clientes/internal/config"
)

// serve builds and runs the app; replaced in tests.
var serve = func(cfg *config.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	return a.Run()
}

func newServerCmd() *cobra.Command {
	var configPath, envFile string

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve the clientes admin pages and JSON API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			if _, err := config.LoadEnvFiles(envFile); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "configs/config.yaml", "path to configuration file")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional dotenv file loaded before the configuration")
	return cmd
}

func main() {
	if err := newServerCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"github.com/spf13/cobra"

	"github.com/simp-lee/clientes/internal/config"
	"github.com/simp-lee/clientes/internal/domain"
	"github.com/simp-lee/clientes/internal/module/cliente"
	"github.com/simp-lee/clientes/internal/pkg"
)

// cli holds what every subcommand needs once the root pre-run has resolved
// the configuration.
type cli struct {
	configPath string
	envFile    string
	baseURL    string
	assumeYes  bool

	cfg     *config.Config
	log     *logger.Logger
	gateway domain.ClienteGateway
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:          "clientesctl",
		Short:        "Manage clientes of the ClientesPs backend",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return c.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			c.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "configs/config.yaml", "path to configuration file")
	flags.StringVar(&c.envFile, "env-file", ".env", "optional dotenv file loaded before the configuration")
	flags.StringVar(&c.baseURL, "base-url", "", "backend base URL, overrides backend.base_url")
	flags.BoolVarP(&c.assumeYes, "yes", "y", false, "answer yes to every confirmation")

	cmd.AddCommand(
		newListCmd(c),
		newBrowseCmd(c),
		newToggleCmd(c),
		newRemoveCmd(c),
		newExistsCmd(c),
		newCreateCmd(c),
		newEditCmd(c),
	)
	return cmd
}

// execute runs cmd and follows a failure with a hint for the error category.
func execute(cmd *cobra.Command) error {
	err := cmd.Execute()
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), hint)
	}
	return err
}

func errorHint(err error) string {
	switch {
	case err == nil:
		return ""
	case domain.IsNotFound(err):
		return "El cliente no existe en el backend."
	case domain.IsNetwork(err):
		return "No se pudo contactar el backend. Revisa --base-url o backend.base_url."
	case domain.IsPendingValidation(err):
		return "La verificación del número de identificación sigue en curso."
	case domain.IsInternal(err):
		return "Error interno. Ejecuta con log.level=debug para ver el detalle."
	default:
		return ""
	}
}

// setup resolves the configuration, the logger and the gateway.
func (c *cli) setup() error {
	if _, err := config.LoadEnvFiles(c.envFile); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}

	cfg, err := resolveConfig(c.configPath, c.baseURL)
	if err != nil {
		return err
	}
	c.cfg = cfg

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	c.log = log

	httpClient := pkg.NewHTTPClient(pkg.HTTPClientConfig{
		Timeout: cfg.Backend.TimeoutDuration(),
		Logger:  log.Logger,
	})
	c.gateway = cliente.NewGateway(pkg.NewBaseClient(httpClient, cfg.Backend.BaseURL))
	return nil
}

func (c *cli) close() {
	if c.log != nil {
		_ = c.log.Close()
		c.log = nil
	}
}

func (c *cli) logger() *slog.Logger {
	if c.log == nil {
		return slog.Default()
	}
	return c.log.Logger
}

// session returns the prompter and navigator for one command run.
func (c *cli) session(cmd *cobra.Command) (*terminalPrompter, *printNavigator) {
	out := cmd.OutOrStdout()
	return newTerminalPrompter(cmd.InOrStdin(), out, c.assumeYes), &printNavigator{out: out}
}

// resolveConfig loads the configuration file when it exists. baseURL, when
// set, overrides backend.base_url; without a usable file the CLI defaults
// are used. A file that cannot be loaded is only ignored when baseURL is set.
func resolveConfig(path, baseURL string) (*config.Config, error) {
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			cfg, err := config.Load(path)
			if err == nil {
				if baseURL == "" {
					return cfg, nil
				}
				cfg.Backend.BaseURL = baseURL
				return cfg, cfg.Validate()
			}
			if baseURL == "" {
				return nil, err
			}
		}
	}

	if baseURL == "" {
		return nil, errors.New("backend base url is required: pass --base-url or set backend.base_url")
	}
	cfg := defaultCLIConfig()
	cfg.Backend.BaseURL = baseURL
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultCLIConfig() *config.Config {
	color := false
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, Mode: gin.ReleaseMode},
		Log:    config.LogConfig{Level: "warn", Format: "text", Color: &color},
	}
}

// confirmPrompt writes msg followed by the answer hint.
func confirmPrompt(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s [s/N] ", msg)
}

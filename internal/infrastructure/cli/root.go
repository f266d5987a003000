package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/boardflow/internal/infrastructure/config"
	"github.com/felixgeelhaar/boardflow/internal/infrastructure/wiring"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configPath string
	dotEnvPath string
	logLevel   string
	logFormat  string

	appConfig *config.Config
	logger    *slog.Logger
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "boardflow",
	Version: Version,
	Short:   "Flow metrics from Jira boards",
	Long: `Boardflow replays a Jira board's column changes and reports flow metrics:
a daily cumulative flow diagram, weekly throughput, the lead-time
distribution, and the tickets completed in the window.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(dotEnvPath); err != nil {
		return err
	}

	cfg := config.Default()
	if cmd != configInitCmd {
		loaded, err := config.Load(configPath)
		if err != nil {
			return MapError(err)
		}
		cfg = loaded
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	l, err := wiring.NewLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	appConfig = cfg
	logger = l
	slog.SetDefault(l)
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := RootCmd.ExecuteContext(ctx)
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
	}
	return err
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.ExitCode
	}
	return 1
}

func init() {
	RootCmd.SetVersionTemplate(fmt.Sprintf("boardflow %s (commit %s, built %s)\n", Version, Commit, Date))
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./"+config.FileName+")")
	RootCmd.PersistentFlags().StringVar(&dotEnvPath, "env-file", ".env", "dotenv file loaded without overriding the environment")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	RootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

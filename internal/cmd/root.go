package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/daylog/internal/config"
	"github.com/Iron-Ham/daylog/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "daylog",
	Short: "Leveled logging to the console, daily files and a log collector",
	Long: `Daylog writes leveled log records to the console, to one plain-text
file per calendar day, and to a remote log collector over HTTP.

Records below the configured threshold are dropped. File and remote
logging are enabled in the config file or with DAYLOG_* environment
variables; the collector port can also be set with NEXUS_PORT.`,
	SilenceUsage: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command's
// context so that long-running commands shut down cleanly.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/daylog/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// A .env file in the working directory is optional
	_ = godotenv.Load()

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	config.BindEnv()

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// newLogger builds a logger from cfg whose console is the command's output,
// attaching the file and remote sinks the configuration enables. service
// overrides the configured remote service name when not empty.
func newLogger(cmd *cobra.Command, cfg *config.Config, service string) (*logging.Logger, error) {
	logger := logging.New(cfg.LoggerOptions(cmd.OutOrStdout())...)

	if cfg.File.Enabled {
		if err := logger.EnableFileLogging(cfg.File.Dir); err != nil {
			_ = logger.Close(context.Background())
			return nil, err
		}
	}

	if cfg.Remote.Enabled {
		if service == "" {
			service = cfg.Remote.Service
		}
		if err := logger.EnableRemoteLogging(service); err != nil {
			_ = logger.Close(context.Background())
			return nil, err
		}
	}

	return logger, nil
}

// closeLogger shuts the logger down. Pending remote entries get the
// configured drain timeout even if ctx has been cancelled by a signal.
func closeLogger(ctx context.Context, logger *logging.Logger) error {
	return logger.Close(context.WithoutCancel(ctx))
}

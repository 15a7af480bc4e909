package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/daylog/internal/config"
	"github.com/Iron-Ham/daylog/internal/severity"
)

var emitCmd = &cobra.Command{
	Use:   "emit <message>",
	Short: "Log a single record",
	Long: `Log a single record through every enabled sink.

Examples:
  # Log at the default level (info)
  daylog emit "service started"

  # Log an error with structured data for the collector
  daylog emit --level error --data order=1235 --data user=42 "charge failed"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEmit,
}

var (
	emitLevel   string
	emitData    []string
	emitService string
)

func init() {
	rootCmd.AddCommand(emitCmd)

	emitCmd.Flags().StringVarP(&emitLevel, "level", "l", "info",
		fmt.Sprintf("Record severity (%s)", strings.Join(severity.Names(), ", ")))
	emitCmd.Flags().StringArrayVarP(&emitData, "data", "d", nil, "Structured data as key=value (repeatable)")
	emitCmd.Flags().StringVar(&emitService, "service", "", "Service name for remote entries (default from config)")
}

func runEmit(cmd *cobra.Command, args []string) error {
	level, err := severity.Parse(emitLevel)
	if err != nil {
		return err
	}

	data, err := parseData(emitData)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := newLogger(cmd, cfg, emitService)
	if err != nil {
		return err
	}

	logErr := logger.Log(level, strings.Join(args, " "), data)
	closeErr := closeLogger(cmd.Context(), logger)
	if logErr != nil {
		return logErr
	}
	return closeErr
}

// parseData turns key=value pairs into a map. Later keys win.
func parseData(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	data := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid data %q: expected key=value", pair)
		}
		data[key] = value
	}
	return data, nil
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dikkadev/prettyslog"
	"github.com/spf13/cobra"

	"analog-mux/board"
	"analog-mux/config"
)

var (
	// Global flags
	configFile string
	portName   string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "muxctl",
	Short: "Select channels on a 74HC4051/74HC4067 analog multiplexer",
	Long: `Drive the select and enable lines of an 8 or 16 channel analog multiplexer
from a host, directly over GPIO, through a PCF8574 I2C expander, or through a
microcontroller running the muxbridge firmware.

Every invocation enables the chip and selects channel 0 before running the
command. Pin levels are left as the command set them on exit.

Examples:
  muxctl info                                  # Show the configured multiplexer
  muxctl select 11                             # Connect channel 11 to the common pin
  muxctl disable                               # Float the common pin
  muxctl scan --once --port /dev/ttyACM0       # Sample every channel once`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "board.yaml",
		"board config file")
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "",
		"serial port name, overrides serial.portName (e.g., /dev/ttyACM0, COM3)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}
	if portName != "" {
		cfg.Serial.PortName = portName
	}

	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(prettyslog.NewPrettyslogHandler("amux",
		prettyslog.WithLevel(level),
		prettyslog.WithWriter(os.Stderr),
	))
	slog.SetDefault(logger)
	return nil
}

func openBoard() (*board.Board, error) {
	b, err := board.Open(cfg, slog.Default())
	if err != nil {
		return nil, fmt.Errorf("open multiplexer: %w", err)
	}
	return b, nil
}

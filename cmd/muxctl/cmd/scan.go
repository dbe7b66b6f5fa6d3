package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"analog-mux/channels"
	"analog-mux/scanner"
)

var (
	scanOnce  bool
	scanClear bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Sample every channel through the bridge firmware",
	Long: `Select each channel in turn, wait scan.settleDelay, and sample the common
analog pin. Requires the serial backend.

Examples:
  muxctl scan --once          # One pass, then exit
  muxctl scan --clear         # Refresh a table every scan.period until Ctrl+C`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanOnce, "once", false,
		"scan once and exit")
	scanCmd.Flags().BoolVar(&scanClear, "clear", false,
		"clear the terminal before each table")
}

func runScan(cmd *cobra.Command, args []string) error {
	b, err := openBoard()
	if err != nil {
		return err
	}
	defer b.Close()

	sampler, err := b.Sampler()
	if err != nil {
		return err
	}
	s := scanner.New(b.Mux, sampler, cfg.Scan.SettleDelay, slog.Default())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	show := func(v *channels.Values) {
		if scanClear {
			fmt.Fprint(out, "\x1B[2J\x1B[0H")
		}
		fmt.Fprint(out, v)
	}

	if scanOnce {
		v, err := s.ReadAll(ctx)
		if err != nil {
			return err
		}
		show(v)
		return nil
	}

	slog.Info("scanning. press Ctrl+C to exit", "period", cfg.Scan.Period)
	err = s.Run(ctx, cfg.Scan.Period, show)
	if errors.Is(err, context.Canceled) {
		slog.Info("scan stopped")
		return nil
	}
	return err
}

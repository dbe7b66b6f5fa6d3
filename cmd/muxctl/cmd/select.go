package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select <channel>",
	Short: "Connect one channel to the common pin",
	Args:  cobra.ExactArgs(1),
	RunE:  runSelect,
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Bring EN low",
	Args:  cobra.NoArgs,
	RunE:  runEnable,
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Bring EN high, disconnecting every channel",
	Args:  cobra.NoArgs,
	RunE:  runDisable,
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the configured multiplexer",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(selectCmd, enableCmd, disableCmd, infoCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	ch, err := strconv.ParseUint(args[0], 10, 8)
	if err != nil {
		return fmt.Errorf("invalid channel %q", args[0])
	}

	b, err := openBoard()
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Mux.SetChannel(uint8(ch)); err != nil {
		return err
	}
	slog.Info("selected channel", "channel", b.Mux.ActiveChannel())
	return nil
}

func runEnable(cmd *cobra.Command, args []string) error {
	b, err := openBoard()
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Mux.Enable(); err != nil {
		return err
	}
	slog.Info("multiplexer enabled")
	return nil
}

func runDisable(cmd *cobra.Command, args []string) error {
	b, err := openBoard()
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.Mux.Disable(); err != nil {
		return err
	}
	slog.Info("multiplexer disabled")
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	m := cfg.Multiplexer
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Channels:     %d\n", m.Channels)
	fmt.Fprintf(out, "Backend:      %s\n", m.Backend)
	for i, p := range m.Select {
		fmt.Fprintf(out, "S%d:           %s\n", i, p)
	}
	fmt.Fprintf(out, "EN:           %s\n", m.Enable)
	fmt.Fprintf(out, "Settle delay: %s\n", cfg.Scan.SettleDelay)
	return nil
}

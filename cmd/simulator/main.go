package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bodgate/internal/config"
	"bodgate/internal/simulator"
	"bodgate/pkg/logging"
)

var (
	configFile string
	targetURL  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "simulator",
		Short: "Order traffic simulator for the mock integration endpoint",
		Long:  "Simulator generates synthetic XML order documents and posts them to the receiver: single orders, duplicates, malformed payloads, bulk bursts and timed auto mode",
		RunE:  menuCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (optional)")
	rootCmd.PersistentFlags().StringVar(&targetURL, "url", "", "Endpoint URL (overrides config and BOOMI_URL)")

	rootCmd.AddCommand(menuCmd())
	rootCmd.AddCommand(sendCmd())
	rootCmd.AddCommand(bulkCmd())
	rootCmd.AddCommand(autoCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildSimulator() (*simulator.Simulator, error) {
	earlyLog := logging.NewEarlyLog()

	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, err
	}
	if targetURL != "" {
		cfg.Simulator.URL = targetURL
	}

	return simulator.New(cfg.Simulator, os.Stdout), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := buildSimulator()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			return sim.Run(ctx, os.Stdin)
		},
	}
}

func sendCmd() *cobra.Command {
	var malformed bool
	var orderID string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a single order",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := buildSimulator()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			if malformed {
				sim.SendMalformed(ctx)
				return nil
			}
			if orderID != "" {
				sim.SendOrder(ctx, orderID)
				return nil
			}
			sim.SendNormal(ctx)
			return nil
		},
	}

	cmd.Flags().BoolVar(&malformed, "malformed", false, "Send a deliberately broken XML document")
	cmd.Flags().StringVar(&orderID, "order-id", "", "Use this order id instead of generating one")
	return cmd
}

func bulkCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Send a burst of orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := buildSimulator()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			sim.SendBulk(ctx, count)
			sim.PrintStats()
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Number of orders to send (defaults to config bulk_count)")
	return cmd
}

func autoCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "auto",
		Short: "Send orders on a timer until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			sim, err := buildSimulator()
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			sim.RunAuto(ctx, interval)
			sim.PrintStats()
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Interval between orders (defaults to config auto_interval_seconds)")
	return cmd
}

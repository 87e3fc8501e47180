package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-audit-relay/internal/bootstrap"
	"go-audit-relay/internal/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and relay audit events",
	RunE:  runRelay,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRelay(cmd *cobra.Command, _ []string) error {
	b := bootstrap.New()
	if err := b.Initialize(cfgFile); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := b.Start(ctx); err != nil {
		shutdown(b)
		return fmt.Errorf("start failed: %w", err)
	}

	<-ctx.Done()
	logging.Info("Shutdown signal received")
	return shutdown(b)
}

func shutdown(b *bootstrap.Bootstrap) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return b.Shutdown(ctx)
}

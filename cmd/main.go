package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"webpbatch/internal/app"
	"webpbatch/internal/config"
	"webpbatch/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "webpbatch",
	Short:         "Batch-encode images to WebP with a pool of workers",
	Long:          `Discovers images under a source tree and encodes them with an external encoder (cwebp by default), spreading the files evenly across a fixed number of concurrent workers.`,
	RunE:          runBatch,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file; flags override its values")
	config.RegisterFlags(rootCmd.Flags())
}

func runBatch(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: failed to initialize logger: %v", config.ErrInvalidConfig, err)
	}
	defer log.Sync()

	// Create application
	transcoder, err := app.New(cfg, log)
	if err != nil {
		return err
	}

	// Cancel on SIGINT/SIGTERM. Workers finish the file they are on; the
	// process does not wait for them.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Received shutdown signal, stopping...")
		cancel()
	}()

	_, err = transcoder.Run(ctx)
	if err != nil && !errors.Is(err, app.ErrCancelled) {
		log.Error("Batch failed", zap.Error(err))
	}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, app.ErrCancelled) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

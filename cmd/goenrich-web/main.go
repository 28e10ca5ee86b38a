package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yashubustudio/goenrich/enrichment"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "goenrich-web: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr       string
		configPath string
		loglevel   string
		runTimeout time.Duration
	)
	cmd := &cobra.Command{
		Use:           "goenrich-web",
		Short:         "Serve the GO enrichment upload form",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := enrichment.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if loglevel == "" {
				loglevel = cfg.LogLevel
			}
			logger, err := enrichment.NewLogger(loglevel)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			service, err := enrichment.NewDefaultService(cfg, logger)
			if err != nil {
				return fmt.Errorf("init service: %w", err)
			}
			e, err := NewServer(service, logger, loglevel, runTimeout)
			if err != nil {
				return fmt.Errorf("build server: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				graceful, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := e.Shutdown(graceful); err != nil {
					logger.Warn("error on shutdown", zap.Error(err))
				}
			}()

			logger.Info("listening", zap.String("addr", addr))
			for _, r := range e.Routes() {
				logger.Debug("route", zap.String("method", r.Method), zap.String("path", r.Path))
			}
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to config.json or config.yaml (default: ./config.json)")
	cmd.Flags().StringVar(&loglevel, "loglevel", "", "Log level: debug|info|warn|error (default: config logLevel)")
	cmd.Flags().DurationVar(&runTimeout, "run-timeout", 15*time.Minute, "Time limit for one analysis")
	return cmd
}

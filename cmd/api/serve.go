package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"surgical-records/internal/adapters/extraction/gemini"
	"surgical-records/internal/router"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Arranca el servidor HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer syncLogger(log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Storage, log)
	if err != nil {
		log.Error("storage setup failed", map[string]any{"error": err.Error()})
		return err
	}
	defer func() { _ = closeStore() }()

	opts := router.Options{
		Store:             store,
		Logger:            log,
		ExtractionTimeout: cfg.Extraction.Timeout,
	}

	if cfg.ExtractionEnabled() {
		client, err := gemini.NewClient(gemini.Config{
			BaseURL:       cfg.Extraction.BaseURL,
			APIKey:        cfg.Extraction.APIKey,
			Model:         cfg.Extraction.Model,
			Timeout:       cfg.Extraction.Timeout,
			RatePerMinute: cfg.Extraction.RatePerMinute,
			Retries:       2,
		})
		if err != nil {
			return err
		}
		opts.Image = client
		opts.Audio = client
	} else {
		log.Warn("extraction disabled: RECORDS_EXTRACTION_API_KEY not set", nil)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.Server.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", map[string]any{"error": err.Error()})
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

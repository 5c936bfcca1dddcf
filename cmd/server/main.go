package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docvoice/internal/api"
	"github.com/dgallion1/docvoice/internal/config"
	"github.com/dgallion1/docvoice/internal/llm"
	"github.com/dgallion1/docvoice/internal/parser"
	"github.com/dgallion1/docvoice/internal/pipeline"
	"github.com/dgallion1/docvoice/internal/speech"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize providers.
	completer, err := llm.New(ctx, cfg)
	if err != nil {
		log.Error("completion provider", "error", err)
		os.Exit(1)
	}
	tts := speech.New(cfg)

	pipe := pipeline.New(parser.NewExtractor(cfg.PDFFallbackPdftotext), completer, tts, log)

	srv := api.NewServer(pipe, log, cfg, completer, tts)

	httpServer := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     srv,
		ReadTimeout: 60 * time.Second,
		// A request waits on both providers in turn.
		WriteTimeout: 2*cfg.ProviderTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if c, ok := completer.(interface{ Close() }); ok {
			c.Close()
		}
		tts.Close()
	}()

	log.Info("starting docvoice",
		"port", cfg.Port,
		"completion_provider", completer.Name(),
		"completion_model", completer.Model(),
		"synthesis_model", tts.Model(),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

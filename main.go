package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lightbooru/internal/handlers"
	"lightbooru/internal/library"
	"lightbooru/internal/logging"
	"lightbooru/internal/middleware"
	"lightbooru/internal/startup"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("configuration error: %v", err)
	}

	lib := library.New(config.Roots)

	// The first scan runs before the server accepts traffic so /api/items
	// never answers 503 on a healthy start.
	if _, err := lib.Rebuild(context.Background()); err != nil {
		logging.Fatal("initial scan failed: %v", err)
	}

	rescanCtx, stopRescan := context.WithCancel(context.Background())
	if config.RescanInterval > 0 {
		go rescanLoop(rescanCtx, lib, config.RescanInterval)
	}

	h := handlers.New(lib, config)
	router := h.Router()

	handler := middleware.Logger(middleware.DefaultLoggingConfig())(router)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	handler = middleware.Compression()(handler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, stopRescan)

	logging.Info("listening on :%s (started in %v)", config.Port, time.Since(startTime).Round(time.Millisecond))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("server error: %v", err)
	}
}

// rescanLoop rebuilds the snapshot on the configured interval until the
// context is cancelled.
func rescanLoop(ctx context.Context, lib *library.Library, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := lib.Rebuild(ctx); err != nil && ctx.Err() == nil {
				logging.Error("periodic rebuild failed: %v", err)
			}
		}
	}
}

func handleShutdown(srv *http.Server, stopRescan context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	logging.Info("received %s, shutting down", sig)
	stopRescan()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("server shutdown error: %v", err)
	}
}

// Command docchat-stub runs the in-memory document-chat backend for local
// development. It speaks the same protocol as the production service but
// answers from a canned function and stores nothing durably.
//
// Usage:
//
//	docchat-stub [flags]
//
// Flags:
//
//	-addr string   Listen address (default :8000, or DOCCHAT_STUB_ADDR)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"docchat/stub"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "docchat-stub: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("DOCCHAT_STUB_ADDR", ":8000"), "Listen address")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	server := &http.Server{
		Addr:              *addr,
		Handler:           stub.New(stub.WithLogger(logger)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("stub backend listening", "addr", *addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("stub backend stopped")
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

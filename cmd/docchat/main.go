// Command docchat is a terminal client for chatting with PDF documents.
//
// Usage:
//
//	docchat [flags]
//
// Flags:
//
//	-backend string   Document-chat service base URL (default http://127.0.0.1:8000, or DOCCHAT_BACKEND)
//	-speech string    Speech engine websocket URL (or DOCCHAT_SPEECH; voice disabled if empty)
//	-identity string  Path to the identity file (default: user config dir)
//	-export string    Transcript export path (default chat.pdf)
//	-log string       Debug log file (disabled if empty)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"docchat"
	bt "docchat/bubbletea"
	"docchat/identity"
	"docchat/pdf"
	"docchat/remote"
	"docchat/voice"
)

const defaultBackend = "http://127.0.0.1:8000"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "docchat: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Tolerate a missing .env; flags and the environment still apply.
	_ = godotenv.Load()

	var (
		backendURL   = flag.String("backend", envOr("DOCCHAT_BACKEND", defaultBackend), "Document-chat service base URL")
		speechURL    = flag.String("speech", os.Getenv("DOCCHAT_SPEECH"), "Speech engine websocket URL (voice disabled if empty)")
		identityPath = flag.String("identity", "", "Path to the identity file")
		exportPath   = flag.String("export", pdf.DefaultFileName, "Transcript export path")
		logPath      = flag.String("log", "", "Debug log file (disabled if empty)")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, closeLog, err := newLogger(*logPath)
	if err != nil {
		return err
	}
	defer closeLog()

	userID, err := resolveIdentity(*identityPath)
	if err != nil {
		return err
	}

	client := remote.New(*backendURL)

	opts := []docchat.Option{docchat.WithLogger(logger)}
	events, handler := bt.NewEventChannel()
	opts = append(opts, docchat.WithEventHandler(handler))

	var voiceAdapter *voice.Adapter
	if *speechURL != "" {
		gateway := voice.NewGateway(*speechURL)
		voiceAdapter = voice.NewAdapter(gateway, voice.WithAdapterLogger(logger))
		opts = append(opts, docchat.WithSynthesizer(gateway))
	}

	orch := docchat.New(userID, client, client, client, opts...)
	orch.LoadHistory(ctx)

	model := bt.New(bt.Config{
		Orchestrator: orch,
		Events:       events,
		Voice:        voiceAdapter,
		Exporter:     pdf.New(),
		ExportPath:   *exportPath,
		Theme:        docchat.DefaultTheme(),
	})

	if err := bt.Run(ctx, model); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	// Let in-flight history writes land before exit.
	orch.Flush()
	return nil
}

func resolveIdentity(path string) (string, error) {
	if path == "" {
		p, err := identity.DefaultPath()
		if err != nil {
			return "", err
		}
		path = p
	}
	return identity.LoadOrCreate(path)
}

// newLogger returns a JSON slog logger writing to path, or a discarding
// logger when path is empty. Logging to stderr would corrupt the TUI.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewJSONHandler(f, nil)), func() { _ = f.Close() }, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

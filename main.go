package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"sbs-player/config"
	"sbs-player/mpv"
	"sbs-player/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	app, err := ui.NewApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing app: %v\n", err)
		if errors.Is(err, mpv.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "\nPlease install mpv or set mpv_path in the config file.\n")
			fmt.Fprintf(os.Stderr, "Download from: https://mpv.io/installation/\n")
		}
		return 1
	}

	return app.Run()
}

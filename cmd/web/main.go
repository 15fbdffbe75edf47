package main

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"hoteldash/internal/app"
)

// Embedded dashboard frontend
//go:embed all:web
var webFiles embed.FS

func main() {
	// Optional .env for local development; missing file is fine
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	frontendFS, err := fs.Sub(webFiles, "web")
	if err != nil {
		slog.Error("failed to prepare embedded frontend", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplication(frontendFS)
	if err != nil {
		slog.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

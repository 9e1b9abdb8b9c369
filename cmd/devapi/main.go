package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tillpad/internal/config"
	"github.com/MrJamesThe3rd/tillpad/internal/devapi"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store := devapi.NewStore()
	devapi.Seed(store)

	handler := devapi.NewHandler(store, devapi.NewCSRF(cfg.DevAPI.CSRFSecret))
	router := devapi.New(handler, cfg.DevAPI.AllowedOrigins)

	port := fmt.Sprintf(":%d", cfg.DevAPI.Port)
	slog.Info("starting development backend", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

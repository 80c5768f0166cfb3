package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/crucial707/board/internal/config"
	"github.com/crucial707/board/internal/db"
	"github.com/crucial707/board/internal/handlers"
	"github.com/crucial707/board/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Local development convenience; no .env file is not an error.
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg)

	manager, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer manager.Close()

	if err := manager.InitSchema(context.Background()); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	slog.Info("database ready", "backend", manager.Backend().Name())

	r := newRouter(manager)

	slog.Info("starting server", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}

// newRouter builds the full handler chain; split out so the integration
// test can exercise it against a mock database.
func newRouter(manager *db.Manager) chi.Router {
	board, err := handlers.NewBoardHandler(manager)
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Prometheus)
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	board.Register(r)
	return r
}

func setupLogging(cfg config.Config) {
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))
}

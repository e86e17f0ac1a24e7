// The library server: a JSON REST API for authors and books with an inline
// admin page, part 4 of the course.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webcourse/internal/library"
	"webcourse/internal/middleware"
	"webcourse/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	_ = godotenv.Load()
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/library_api.db")
	store, err := library.NewStore(dbPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", dbPath)

	mux := library.NewHandler(store).Routes()
	mux.Handle("GET /metrics", promhttp.Handler())

	// CORS so the admin page can also be hosted away from the API.
	handler := middleware.Logging(
		middleware.Metrics(prometheus.DefaultRegisterer, "library")(
			middleware.CORS(mux),
		),
	)

	addr := ":" + getEnv("PORT", "8080")
	slog.Info("library API starting", "address", addr, "url", "http://localhost"+addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// The school server: ORM-backed course/teacher/student management, part 3
// of the course.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webcourse/internal/middleware"
	"webcourse/internal/school"
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

	dbPath := getEnv("DB_PATH", "./data/academy.db")
	store, err := school.NewStore(dbPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", dbPath)

	mux := school.NewHandler(store).Routes()
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.Logging(
		middleware.Metrics(prometheus.DefaultRegisterer, "school")(mux),
	)

	addr := ":" + getEnv("PORT", "8080")
	slog.Info("school server starting", "address", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

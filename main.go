package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"store-monitor/internal/auth"
	"store-monitor/internal/config"
	"store-monitor/internal/observability/metrics"
	"store-monitor/internal/report/application"
	reportpostgres "store-monitor/internal/report/infrastructure/postgres"
	reporthttp "store-monitor/internal/report/interfaces/http"
	uptimepostgres "store-monitor/internal/uptime/infrastructure/postgres"
	uptimehttp "store-monitor/internal/uptime/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	m := metrics.New()
	storeReader := uptimepostgres.NewStoreRepository(db)
	reportRepo := reportpostgres.NewReportRepository(db)
	service := application.NewService(storeReader, reportRepo, cfg.ScoringWorkers, m, logger)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/reports/trigger", reporthttp.NewTriggerHandler(service))
	mux.Handle("/api/v1/reports", reporthttp.NewReportHandler(service, m, logger))
	mux.Handle("/api/v1/reports/restaurants", reporthttp.NewRestaurantsHandler(service))
	mux.Handle("/api/v1/stats", uptimehttp.NewStatsHandler(storeReader))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	var handler http.Handler = mux
	if cfg.JWTSecret != "" {
		policy := auth.NewDefaultPolicy([]string{"/healthz"}, []string{"/metrics"})
		handler = auth.NewMiddleware([]byte(cfg.JWTSecret), policy).Wrap(mux)
	} else {
		logger.Println("auth disabled: no JWT secret configured")
	}

	logger.Printf("listening on %s", cfg.HTTPAddr)
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		logger.Fatalf("http server error: %v", err)
	}
}

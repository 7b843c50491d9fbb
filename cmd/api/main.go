package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GalladeX3/exercise-tracker-test-project/internal/api"
	"github.com/GalladeX3/exercise-tracker-test-project/internal/config"
	"github.com/GalladeX3/exercise-tracker-test-project/internal/domain"
	"github.com/GalladeX3/exercise-tracker-test-project/internal/events"
	"github.com/GalladeX3/exercise-tracker-test-project/internal/persistence/memory"
	"github.com/GalladeX3/exercise-tracker-test-project/internal/persistence/postgres"
	httptransport "github.com/GalladeX3/exercise-tracker-test-project/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		users     domain.UserRepository
		exercises domain.ExerciseRepository
	)

	switch cfg.StoreDriver {
	case "memory":
		users = memory.NewUserStore()
		exercises = memory.NewExerciseStore()
	default:
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		users = postgres.NewUserRepository(pool)
		exercises = postgres.NewExerciseRepository(pool)
	}

	var sink domain.EventSink
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.ExerciseTopic)
		defer publisher.Close()
		sink = publisher
	}

	registry := domain.NewRegistry(users)
	exlog := domain.NewExerciseLog(users, exercises, sink)

	handler := api.NewHandler(registry, exlog)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	cors := httptransport.WithCORS(cfg.CORSOrigin)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}, httptransport.WithRequestLogging(cors(mux)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("exercise-tracker listening on %s (store=%s)", cfg.HTTPAddress, cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

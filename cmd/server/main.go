package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/flashmart/stock-sync/internal/adapter/events"
	"github.com/flashmart/stock-sync/internal/adapter/handler"
	"github.com/flashmart/stock-sync/internal/adapter/storage"
	"github.com/flashmart/stock-sync/internal/port"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	_ = godotenv.Load()
	cfg := LoadConfig()

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("backend", cfg.Backend).
		Msg("starting stock service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, cleanup := buildBackend(ctx, cfg)
	defer cleanup()

	if len(cfg.StockSeed) > 0 {
		seedStock(ctx, backend, cfg.StockSeed)
	}

	// Optional stock.updated publisher
	var sink handler.EventSink = handler.NopSink{}
	if cfg.RabbitURL != "" {
		pub, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitQueue, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		defer pub.Close()
		sink = pub
		log.Info().Str("queue", cfg.RabbitQueue).Msg("publishing stock events")
	}

	h := handler.NewHTTPHandler(backend, sink, log.Logger)
	mux := http.NewServeMux()
	h.Register(mux)

	// The storefront web client calls this API straight from the browser.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsHandler,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	log.Info().Msg("HTTP server stopped")
}

// buildBackend wires the configured storage adapter and returns it with a
// cleanup function for its connections.
func buildBackend(ctx context.Context, cfg Config) (port.StockService, func()) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryAdapter(), func() {}

	case "sqlite":
		a, err := storage.NewSQLiteAdapter(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open sqlite")
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("connected to sqlite")
		return a, func() { a.Close() }

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect mysql")
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping mysql")
		}
		log.Info().Msg("connected to mysql")
		return storage.NewMySQLAdapter(db), func() { db.Close() }

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		log.Info().Msg("connected to redis")
		return storage.NewRedisAdapter(rdb), func() { rdb.Close() }

	default:
		log.Fatal().Str("backend", cfg.Backend).Msg("unknown backend")
		return nil, nil
	}
}

func seedStock(ctx context.Context, backend port.StockService, seed map[string]string) {
	for id, raw := range seed {
		count, err := strconv.Atoi(raw)
		if err != nil {
			log.Warn().Str("item", id).Str("count", raw).Msg("skipping bad seed entry")
			continue
		}
		if _, err := backend.SetStock(ctx, id, count); err != nil {
			log.Fatal().Err(err).Str("item", id).Msg("failed to seed stock")
		}
		log.Info().Str("item", id).Int("stock", count).Msg("seeded stock")
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwells/saasdash/internal/api"
	"github.com/mwells/saasdash/internal/config"
	"github.com/mwells/saasdash/internal/repository/postgres"
	"github.com/mwells/saasdash/internal/service"
	"github.com/mwells/saasdash/internal/stream"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	repos := postgres.NewRepositories(db)
	services := service.NewServices(repos, cfg)

	opts := api.RouterOptions{
		Redis: newRedisClient(cfg),
		Sink:  newEventSink(cfg),
	}

	router := api.NewRouter(services, cfg, opts)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if opts.Redis != nil {
		opts.Redis.Close()
	}

	log.Println("Server stopped")
}

// newRedisClient builds the shared counter store for rate limiting.
// Absent or unreachable redis is tolerated: the limiter falls back to
// in-process counters.
func newRedisClient(cfg *config.Config) redis.UniversalClient {
	if cfg.RedisURL == "" {
		return nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARN failed to parse REDIS_URL, rate limiting falls back to memory: %v", err)
		return nil
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("WARN redis not reachable, rate limiting falls back to memory: %v", err)
		client.Close()
		return nil
	}

	return client
}

func newEventSink(cfg *config.Config) stream.EventSink {
	if cfg.FirehoseStreamName == "" {
		return nil
	}

	sink, err := stream.NewFirehoseSink(context.Background(), cfg.AWSRegion, cfg.FirehoseStreamName)
	if err != nil {
		log.Printf("WARN firehose sink disabled: %v", err)
		return nil
	}
	return sink
}

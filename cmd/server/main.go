package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UkralStul/halalyelp-service/internal/app"
	"github.com/UkralStul/halalyelp-service/internal/chatbot"
	"github.com/UkralStul/halalyelp-service/internal/config"
	"github.com/UkralStul/halalyelp-service/internal/feed"
	"github.com/UkralStul/halalyelp-service/internal/httpapi"
	"github.com/UkralStul/halalyelp-service/internal/live"
	"github.com/UkralStul/halalyelp-service/internal/media"
	"github.com/UkralStul/halalyelp-service/internal/ratelimit"
	"github.com/UkralStul/halalyelp-service/internal/restaurants"
	"github.com/UkralStul/halalyelp-service/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	storageType := flag.String("storage", cfg.Storage, "Storage type (in-memory, postgres or sqlite)")
	flag.Parse()
	cfg.Storage = *storageType
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Starting server with %s storage", cfg.Storage)
	store, closeStore, err := app.OpenStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	if cfg.SeedDemo {
		if err := seed.Run(ctx, store); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
	}

	hub := live.NewHub()
	restaurantService := restaurants.NewService(store)
	feedService := feed.NewService(store, hub)

	if cfg.MediaEnabled() {
		uploader, err := media.NewMinIO(ctx, media.Config{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		})
		if err != nil {
			log.Fatalf("failed to init media storage: %v", err)
		}
		feedService.WithUploader(uploader)
		log.Printf("Media uploads enabled (bucket %s)", cfg.MinIOBucket)
	}

	var counter ratelimit.Counter
	if cfg.RedisAddr != "" {
		redisCounter, err := ratelimit.NewRedisCounter(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
		defer redisCounter.Close()
		counter = redisCounter
		log.Printf("Chat rate limit: %d messages per %s", cfg.ChatRateLimit, cfg.ChatRateWindow)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Store:       store,
		Restaurants: restaurantService,
		Feed:        feedService,
		Chat:        chatbot.NewService(restaurantService),
		Hub:         hub,
		Sessions:    httpapi.NewSessionStore(cfg.SessionSecret),
		ChatLimiter: ratelimit.New(counter, "chat", cfg.ChatRateLimit, cfg.ChatRateWindow),
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("graceful shutdown failed: %v", err)
		}
	}()

	log.Printf("listening on http://localhost:%s/", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed to start: %v", err)
	}
	log.Println("server stopped")
}

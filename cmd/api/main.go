package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"folio/api/internal/app"
	"folio/api/internal/config"
	"folio/api/internal/media"
	"folio/api/internal/search"
	"folio/api/internal/session"
	"folio/api/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var service *app.Service
	var searchLoader search.ContentLoader

	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		// No database configured: serve the built-in sample content.
		// Reads return the sample document, writes succeed without
		// persisting, the admin account lives in memory only.
		log.Printf("DATABASE_URL not set, running with built-in sample content")
		memStore := store.NewMemoryStore()
		service = app.New(cfg, memStore)
		searchLoader = memStore
	} else {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()

		if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}

		dataStore := store.NewPostgresStore(db)
		service = app.New(cfg, dataStore)
		searchLoader = dataStore

		if strings.TrimSpace(cfg.RedisURL) != "" {
			log.Printf("Using Redis for refresh token storage")
			redisStore, err := session.NewRedisStore(cfg.RedisURL)
			if err != nil {
				log.Fatalf("redis connection failed: %v", err)
			}
			defer redisStore.Close()
			service.UseSessionStore(redisStore)
		} else {
			log.Printf("Using PostgreSQL for refresh token storage")
		}
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	service.UseSearch(search.NewService(meiliClient, search.NewScan(searchLoader)))

	if strings.TrimSpace(cfg.MediaEndpoint) != "" {
		uploader, err := media.NewMinioUploader(ctx, media.MinioConfig{
			Endpoint:  cfg.MediaEndpoint,
			AccessKey: cfg.MediaAccessKey,
			SecretKey: cfg.MediaSecretKey,
			Bucket:    cfg.MediaBucket,
			UseSSL:    cfg.MediaUseSSL,
			PublicURL: cfg.MediaPublicURL,
		})
		if err != nil {
			log.Fatalf("media storage connection failed: %v", err)
		}
		service.UseUploader(uploader)
	} else {
		log.Printf("MEDIA_ENDPOINT not set, uploads disabled")
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Folio API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"jobdesk.org/internal/auth"
	"jobdesk.org/internal/config"
	"jobdesk.org/internal/httpapi"
	"jobdesk.org/internal/jobs"
	"jobdesk.org/internal/obs"
	"jobdesk.org/internal/profile"
	"jobdesk.org/internal/resume"
	"jobdesk.org/internal/store/pg"
)

var version = "0.3.1"

func main() {
	obs.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := pg.Open(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer store.Close()

	tokens, err := auth.NewTokens(cfg.AuthSecret, auth.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}
	accounts, err := auth.NewService(store.Accounts(), tokens)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	artifacts, err := resume.NewStore(cfg.ResumeDir)
	if err != nil {
		log.Fatalf("resume store: %v", err)
	}
	profiles, err := profile.NewService(store.Profiles(), artifacts)
	if err != nil {
		log.Fatalf("profile service: %v", err)
	}
	jobSvc, err := jobs.NewService(store.Jobs(), store.Applications(), store.Profiles())
	if err != nil {
		log.Fatalf("jobs service: %v", err)
	}

	var limiter *httpapi.RedisLimiter
	if cfg.RedisAddr != "" {
		limiter = httpapi.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	api := httpapi.New(httpapi.Deps{
		Tokens:     tokens,
		Accounts:   accounts,
		Jobs:       jobSvc,
		Profiles:   profiles,
		Artifacts:  artifacts,
		ReadyProbe: httpapi.ReadyProbe{DB: store.DB()},
		Version:    version,
	})

	handler := api.Handler()
	handler = httpapi.MaxBodyBytes(handler, cfg.MaxBodyBytes)
	if limiter != nil {
		handler = httpapi.RateLimitRedis(handler, limiter, cfg.RateLimitPerSecond*60, time.Minute)
	} else {
		handler = httpapi.RateLimit(handler, cfg.RateLimitBurst, cfg.RateLimitPerSecond)
	}
	handler = httpapi.CORS(handler)
	handler = httpapi.SecurityHeaders(handler)
	handler = httpapi.LoggingJSON(handler)
	handler = httpapi.RequestID(handler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting jobdesk-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recylink.org/internal/auth"
	"recylink.org/internal/config"
	"recylink.org/internal/httpapi"
	"recylink.org/internal/obs"
	"recylink.org/internal/store/pg"
)

var version = "1.2.0"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("GIT_COMMIT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Missing DSN is the one store misconfiguration treated as fatal:
	// every data route would fail anyway, and unlike connectivity it
	// cannot heal on retry.
	pool, err := pg.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer pool.Close()

	// Startup connectivity check is non-fatal: the deployment target
	// restarts crashed processes anyway, and routes fail individually
	// while the database is still coming up.
	if err := pool.VerifyConnectivity(context.Background(), pg.DefaultMaxAttempts); err != nil {
		log.Printf("store verification failed, serving anyway: %v", err)
	}

	tokenOpts := []auth.TokenOption{auth.WithTTL(cfg.TokenTTL)}
	if cfg.IsProduction() {
		tokenOpts = append(tokenOpts, auth.InProduction())
	}
	tokens, err := auth.NewTokenService(cfg.JWTSecret, tokenOpts...)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	store := pg.NewStore(pool)
	api := httpapi.New(store, store, tokens, httpapi.ReadyProbe{DB: pool.DB()}, cfg, version)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting recylink-api %s on %s (env=%s)", version, srv.Addr, cfg.Env)

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

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokyolore/config"
	"tokyolore/internal/clock"
	"tokyolore/internal/database"
	"tokyolore/internal/router"
	"tokyolore/internal/snapshot"
	"tokyolore/pkg/cloudinary"
	"tokyolore/pkg/payment"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var snapshots snapshot.Store
	redisStore, err := snapshot.NewRedisStore(cfg.Redis.URL, cfg.Checkout.SnapshotTTL)
	if err != nil {
		log.Printf("[Snapshot] Redis unavailable (%v), falling back to in-memory store", err)
		snapshots = snapshot.NewMemoryStore(cfg.Checkout.SnapshotTTL, clock.NewSystem())
	} else {
		snapshots = redisStore
		defer redisStore.Close()
	}

	var gateway payment.Gateway
	if cfg.Stripe.SecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Checkout.MinChargeCents)
	} else {
		log.Println("[Payment] STRIPE_SECRET_KEY not set, using stub gateway")
		gateway = payment.NewStubGateway(cfg.Checkout.MinChargeCents)
	}

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}

	engine := router.Setup(cfg, db, snapshots, gateway, cloud)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}

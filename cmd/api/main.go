// main.go - Service entry point

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spendscan/spendscan/configs"
	"github.com/spendscan/spendscan/internal/ai"
	"github.com/spendscan/spendscan/internal/api"
	"github.com/spendscan/spendscan/internal/queryengine"
	"github.com/spendscan/spendscan/internal/ratelimit"
	"github.com/spendscan/spendscan/internal/scanner"
	"github.com/spendscan/spendscan/internal/storage"
)

func main() {
	configs.LoadConfig()

	if err := os.MkdirAll(configs.UPLOAD_DIR, 0o755); err != nil {
		log.Fatalf("failed to create upload dir %s: %v", configs.UPLOAD_DIR, err)
	}

	db, err := storage.Open()
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	limiter := ratelimit.NewLimiter(configs.RATE_LIMIT_TOKENS, time.Duration(configs.RATE_LIMIT_REFILL_SECONDS)*time.Second)

	visionClient, err := ai.NewClientForModel(configs.VISION_MODEL_NAME, limiter)
	if err != nil {
		log.Fatalf("failed to create vision client: %v", err)
	}
	sqlClient, err := ai.NewClientForModel(configs.SQL_MODEL_NAME, limiter)
	if err != nil {
		log.Fatalf("failed to create SQL client: %v", err)
	}

	engine, err := queryengine.New(db, sqlClient)
	if err != nil {
		log.Fatalf("failed to create query engine: %v", err)
	}

	handler := api.NewHandler(
		scanner.New(visionClient),
		engine,
		storage.NewReceiptStore(db),
		storage.NewNormalizedItemStore(db),
		storage.NewQueryLogStore(db),
	)

	srv := &http.Server{
		Addr:         ":" + configs.PORT,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("stopped")
}

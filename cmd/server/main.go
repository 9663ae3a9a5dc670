package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/JustinWhittecar/kobayashi/internal/config"
	"github.com/JustinWhittecar/kobayashi/internal/httpapi"
	"github.com/JustinWhittecar/kobayashi/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg := config.LoadServerConfig()

	jobDB, err := store.ConnectJobStore(cfg.JobStorePath)
	if err != nil {
		log.Fatalf("connect job store: %v", err)
	}
	defer jobDB.Close()

	server := httpapi.NewServerWithJobStore(jobDB)
	mux := http.NewServeMux()
	server.Routes(mux)

	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}
	handler := httpapi.CORSMiddleware(allowed)(mux)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Printf("kobayashi server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
}

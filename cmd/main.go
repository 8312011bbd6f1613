package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"micrositepilot/pkg/api"
	"micrositepilot/pkg/config"
	"micrositepilot/pkg/genai"
	"micrositepilot/pkg/pipeline"
	"micrositepilot/pkg/publish"
	"micrositepilot/pkg/storage"
)

func main() {
	cfg := config.Load()
	log := config.NewLogger()

	jobStore := storage.NewJobStore()
	siteRegistry, err := storage.NewSiteRegistry(cfg.StoragePath)
	if err != nil {
		log.Fatalf("Failed to initialize site registry: %v", err)
	}
	defer siteRegistry.Close()

	invoker := genai.NewClient(cfg.Model)
	publisher := publish.New(cfg.SitesDir, cfg.Deploy, log)

	manager := pipeline.NewManager(cfg.Pipeline, cfg.Model, jobStore, siteRegistry, invoker, publisher, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := manager.Start(ctx); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}

	handlers := api.NewHandlers(manager, jobStore, siteRegistry, cfg.UploadDir, log)

	router := mux.NewRouter()
	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")
	router.HandleFunc("/transcribe", handlers.UploadHandler).Methods("POST")
	router.HandleFunc("/jobs/{id}", handlers.GetJobHandler).Methods("GET")
	router.HandleFunc("/sites", handlers.ListSitesHandler).Methods("GET")
	router.HandleFunc("/sites/{id}", handlers.GetSiteHandler).Methods("GET")
	router.HandleFunc("/sites/{id}/content", handlers.ServeSiteContentHandler).Methods("GET")
	router.HandleFunc("/ws", handlers.WebSocketHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("Server starting on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	manager.Stop()
	log.Info("Server exited")
}

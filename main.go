package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lingosub/backend/internal/api"
	"github.com/lingosub/backend/internal/auth"
	"github.com/lingosub/backend/internal/config"
	"github.com/lingosub/backend/internal/db"
	"github.com/lingosub/backend/internal/job"
	"github.com/lingosub/backend/internal/ollama"
	"github.com/lingosub/backend/internal/storage"
	"github.com/lingosub/backend/internal/subtitle/translate"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Ensure data directory exists
	os.MkdirAll(cfg.DataPath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Ensure admin user exists
	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	// Register the local Ollama instance on first run
	if err := database.SeedDefaultBackend(cfg.OllamaURL); err != nil {
		log.Fatalf("Failed to seed default backend: %v", err)
	}

	// Subtitle file storage
	store, err := storage.NewStore(cfg.SubtitlePath)
	if err != nil {
		log.Fatalf("Failed to initialize subtitle storage: %v", err)
	}

	client := ollama.NewClient()

	// Job queue with the translation handler
	queue := job.NewJobQueue(database.DB())
	translator := translate.NewService(store, database, client)
	queue.RegisterHandler(job.JobTranslate, translator.HandleJob)

	// Initialize JWT service
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Create router
	router := api.NewRouter(database, jwtService, cfg, queue, store, client)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on %s", addr)
	log.Printf("Subtitle path: %s", cfg.SubtitlePath)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		queue.Stop()
		database.Close()
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// Command rainbowd runs the optional HTTP+WebSocket job service wrapping
// the generation and attack engines for long-running, observable
// operation.
package main

import (
	"log"
	"os"

	"github.com/rawblock/rainbow-engine/internal/service"
)

func main() {
	log.Println("Starting rainbow table job service...")

	var history *service.HistoryStore
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		h, err := service.Connect(dbURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing without persisting job history. Error: %v", err)
		} else {
			defer h.Close()
			if err := h.InitSchema(); err != nil {
				log.Printf("Warning: history schema init failed: %v", err)
			}
			history = h
		}
	} else {
		log.Println("DATABASE_URL not set, running history-less")
	}

	hub := service.NewHub()
	go hub.Run()

	jobs := service.NewManager(hub, history)
	r := service.SetupRouter(jobs, hub)

	port := getEnvOrDefault("PORT", "8099")
	log.Printf("rainbowd listening on :%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

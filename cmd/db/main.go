package main

import (
	"context"
	"log"

	"polycubes/internal/cache"
	"polycubes/internal/config"
)

// Recreates the sqlite level cache, discarding every stored level.
func main() {
	cfg, err := config.Load("", nil)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	dbPath := cfg.Cache.SQLite

	log.Printf("Setting up level cache at: %s\n", dbPath)

	db, err := cache.InitDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Println("Dropping and recreating tables...")
	if err := cache.ResetSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to reset schema: %v", err)
	}

	log.Println("Level cache setup completed successfully!")
}

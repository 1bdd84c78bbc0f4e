package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/cancerinfo/cms/config"
	"github.com/cancerinfo/cms/internal/database"
	"github.com/cancerinfo/cms/internal/logger"
)

func main() {
	status := flag.Bool("status", false, "List applied migrations and exit")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	db, err := database.Open(cfg, lg)
	if err != nil {
		lg.Fatal("Failed to connect to database", "error", err)
	}

	if *status {
		names, err := database.AppliedMigrations(db)
		if err != nil {
			lg.Fatal("Failed to read migrations", "error", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	if err := database.RunMigrations(db, lg); err != nil {
		lg.Fatal("Failed to apply migrations", "error", err)
	}
	fmt.Println("All migrations applied successfully.")
}

// Command createadmin creates a staff account, the only kind that may write
// through the REST API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/cancerinfo/cms/config"
	"github.com/cancerinfo/cms/internal/database"
	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/service"
)

func main() {
	username := flag.String("username", "admin", "Username of the staff account")
	email := flag.String("email", "", "Email address")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD environment variable is not set")
	}

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
	if err := database.RunMigrations(db, lg); err != nil {
		lg.Fatal("Failed to run migrations", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	auth := service.NewAuthService(db, lg, service.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	account, err := auth.Register(ctx, service.RegisterInput{
		Username: *username,
		Email:    *email,
		Password: password,
		Staff:    true,
	})
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			fields := make([]string, 0, len(ve.Fields))
			for field, msgs := range ve.Fields {
				fields = append(fields, field+": "+strings.Join(msgs, " "))
			}
			sort.Strings(fields)
			log.Fatalf("Invalid account:\n  %s", strings.Join(fields, "\n  "))
		}
		lg.Fatal("Failed to create staff account", "error", err)
	}

	fmt.Printf("Created staff account %q (id %d)\n", account.Username, account.ID)
}

package main

import (
	"log"
	"strings"

	"github.com/joho/godotenv"

	"github.com/andersoncassiani/chatsuite/environments"
	"github.com/andersoncassiani/chatsuite/pkg/database"
)

func main() {
	_ = godotenv.Load()

	cfg := environments.Load()

	botDB, err := database.NewMySQLDB(cfg.BotDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to bot database: %v", err)
	}

	defer func() {
		if err := botDB.Close(); err != nil {
			log.Printf("Failed to close bot database: %v", err)
		}
	}()

	appDB, err := database.NewMySQLDB(cfg.AppDatabase)
	if err != nil {
		log.Fatalf("Failed to connect to app database: %v", err)
	}

	defer func() {
		if err := appDB.Close(); err != nil {
			log.Printf("Failed to close app database: %v", err)
		}
	}()

	if err := database.RunMigrations(appDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	sender := strings.TrimSpace(cfg.Twilio.WhatsAppFrom)
	if !strings.HasPrefix(sender, "whatsapp:") {
		sender = "whatsapp:+" + strings.TrimLeft(sender, "+")
	}
	if err := database.SeedBotData(botDB, sender); err != nil {
		log.Fatalf("Failed to seed bot data: %v", err)
	}

	log.Println("Seed completed successfully")
}

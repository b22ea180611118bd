// cmd/historian/main.go is an asynchronous historian service that pops game
// action records from the Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"chameleon/internal/cache"
	"chameleon/internal/database"
)

func main() {
	database.ConnectDB()
	if err := cache.ConnectRedis(); err != nil {
		log.Fatalf("historian requires redis: %v", err)
	}

	repo := database.NewRepo(database.DB)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("schema setup failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("historian shutting down")
		cancel()
	}()

	log.Println("historian started")
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		record, err := cache.ConsumeGameAction(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("failed to consume action record: %v", err)
			time.Sleep(time.Second)
			continue
		}
		if record == nil {
			continue
		}

		payload, err := json.Marshal(record.ActionPayload)
		if err != nil {
			log.Printf("failed to encode action payload for game %s: %v", record.GameName, err)
			continue
		}
		if err := repo.InsertActionRecord(ctx, record.GameID, record.ActionIndex, record.Actor, record.ActionType, payload); err != nil {
			log.Printf("failed to persist action record for game %s: %v", record.GameName, err)
		}
	}
}

// Команда reset удаляет все рестораны вместе с отзывами.
// Посты ленты остаются, ссылка на ресторан у них обнуляется.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/UkralStul/halalyelp-service/internal/app"
	"github.com/UkralStul/halalyelp-service/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	storageType := flag.String("storage", cfg.Storage, "Storage type (postgres or sqlite)")
	flag.Parse()
	cfg.Storage = *storageType
	if cfg.Storage == config.StorageInMemory {
		log.Fatal("in-memory storage has nothing to reset; use -storage postgres or -storage sqlite")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	store, closeStore, err := app.OpenStore(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	deleted, err := store.DeleteAllRestaurants(context.Background())
	if err != nil {
		log.Fatalf("failed to delete restaurants: %v", err)
	}
	log.Printf("Deleted %d old restaurants.", deleted)
}

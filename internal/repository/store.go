package repository

import (
	"context"
	"log"

	"leadforms/internal/config"
	"leadforms/internal/database"
)

// Open connects to the store selected by cfg.URL and returns the matching
// repository with a function that releases its connections.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (LeadRepository, func(context.Context) error, error) {
	switch {
	case cfg.IsMemory():
		log.Println("[DB] Using in-memory lead store (data is lost on exit)")
		return NewInMemoryLeadRepository(), func(context.Context) error { return nil }, nil

	case cfg.IsMongo():
		client, db, err := database.ConnectMongo(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		repo := NewMongoLeadRepository(db)
		if cfg.AutoMigrate {
			if err := repo.EnsureIndexes(ctx); err != nil {
				log.Printf("[DB] Warning: %v", err)
			}
		}
		return repo, client.Disconnect, nil

	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewGormLeadRepository(db), func(context.Context) error { return database.Close(db) }, nil
	}
}

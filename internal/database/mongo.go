package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"leadforms/internal/config"
)

const (
	mongoConnectTimeout = 10 * time.Second
	mongoMaxPoolSize    = 25
)

// ConnectMongo connects to the MongoDB deployment named by cfg and returns
// the database that holds the leads collection.
func ConnectMongo(ctx context.Context, cfg *config.DatabaseConfig) (*mongo.Client, *mongo.Database, error) {
	log.Println("[DB] Connecting to MongoDB...")

	clientOptions := options.Client().
		ApplyURI(cfg.URL).
		SetMaxPoolSize(mongoMaxPoolSize).
		SetConnectTimeout(mongoConnectTimeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	name := cfg.GetMongoDatabase()
	log.Printf("[DB] MongoDB connected, database=%s", name)
	return client, client.Database(name), nil
}

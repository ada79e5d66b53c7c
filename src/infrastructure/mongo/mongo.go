package mongo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cafeteria-orders/src/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	clientInstance *mongo.Client
	clientErr      error
	clientOnce     sync.Once
)

// GetMongoClient connects once per process and returns the shared client.
func GetMongoClient(cfg *config.Config) (*mongo.Client, error) {
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDBConnectionString))
		if err != nil {
			clientErr = fmt.Errorf("failed to connect to MongoDB: %w", err)
			return
		}
		clientInstance = client
	})
	return clientInstance, clientErr
}

// GetDatabase returns the configured cafeteria database.
func GetDatabase(cfg *config.Config) (*mongo.Database, error) {
	client, err := GetMongoClient(cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(cfg.MongoDBDatabaseName), nil
}

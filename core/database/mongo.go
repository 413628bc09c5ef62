package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"go-event-cms/core/config"
	"go-event-cms/core/constants"
	"go-event-cms/core/logger"
)

type IDatabase interface {
	Collection(name string) *mongo.Collection
	Client() *mongo.Client
}

type Database struct {
	client *mongo.Client
	db     *mongo.Database
}

func InitDB(cfg config.MongoConfig) (*Database, error) {
	logger.Info("Initializing document store...")

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(opts)
	if err != nil {
		logger.Error("Failed to connect to document store", "error", err)
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("Failed to ping document store", "error", err)
		return nil, fmt.Errorf("failed to ping document store: %w", err)
	}

	logger.Info("Document store initialized successfully",
		"database", cfg.DBName,
	)

	return &Database{
		client: client,
		db:     client.Database(cfg.DBName),
	}, nil
}

func (d *Database) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

func (d *Database) Client() *mongo.Client {
	return d.client
}

func (d *Database) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

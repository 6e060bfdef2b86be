package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Database struct {
	MongoDB *mongo.Database
}

// NewDatabase connects to MongoDB. The checkout log is best-effort, so a
// failed connection leaves MongoDB nil rather than failing startup.
func NewDatabase(mongoURL, mongoDBName string, log *zap.Logger) *Database {
	if mongoURL == "" {
		log.Info("MongoDB not configured, checkout log disabled")
		return &Database{}
	}

	mongoDB, err := initMongoDB(mongoURL, mongoDBName)
	if err != nil {
		log.Warn("MongoDB connection failed, checkout log disabled", zap.Error(err))
		return &Database{}
	}

	log.Info("connected to MongoDB", zap.String("db", mongoDBName))
	return &Database{MongoDB: mongoDB}
}

func initMongoDB(url, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	return client.Database(dbName), nil
}

func (db *Database) Close() error {
	if db.MongoDB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.MongoDB.Client().Disconnect(ctx)
}

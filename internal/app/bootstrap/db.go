// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/mongang/mongang/internal/app/store/activitylog"
	gangstore "github.com/mongang/mongang/internal/app/store/gangs"
	metastore "github.com/mongang/mongang/internal/app/store/meta"
	userstore "github.com/mongang/mongang/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and selects the app database.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the collection indexes on startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	type indexer interface {
		EnsureIndexes(ctx context.Context) error
	}
	stores := map[string]indexer{
		"users":        userstore.New(db),
		"gangs":        gangstore.New(db),
		"activity_log": activitylog.New(db),
		"meta":         metastore.New(db),
	}
	for name, s := range stores {
		if err := s.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes for %s: %w", name, err)
		}
	}
	logger.Info("collection indexes ensured")
	return nil
}

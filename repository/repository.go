package repository

import (
	"context"
	"fmt"
	"kodikas-backend/dal"
	"kodikas-backend/models"
	"kodikas-backend/utils"
	"kodikas-backend/utils/logger"
)

// Open creates the store selected by cfg.StoreDriver
func Open(ctx context.Context, cfg *models.Config, log logger.Logger) (Store, error) {
	switch cfg.StoreDriver {
	case "", utils.StoreMemory:
		log.Info("Using in-memory store")
		return NewMemoryStore(), nil
	case utils.StoreDynamoDB:
		db, err := dal.NewDynamoDBClient(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
		}
		return NewDynamoStore(db, cfg, log), nil
	case utils.StorePostgres:
		return NewPostgresStore(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
}

package app

import (
	"context"
	"fmt"

	"github.com/recipebox/recipe-service/internal/config"
	"github.com/recipebox/recipe-service/internal/database"
	"github.com/recipebox/recipe-service/internal/recipe/repository"
	"github.com/recipebox/recipe-service/pkg/logger"
)

const mongoConnectAttempts = 5

// Store is the opened document store. Close releases the underlying client.
type Store struct {
	Backend string
	Repo    repository.Repository
	Close   func(ctx context.Context) error
}

// OpenStore connects the backend selected by cfg.Store.Backend and returns an
// instrumented repository over the recipes collection.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	var (
		repo    repository.Repository
		closeFn = func(context.Context) error { return nil }
	)
	switch cfg.Store.Backend {
	case config.BackendMemory:
		logger.Warnf("store: using in-memory backend, data is lost on restart")
		repo = repository.NewMemoryRepo()

	case config.BackendMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
		if err != nil {
			return nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.Store.Collection)
		repo = repository.NewMongoRepo(col)
		closeFn = client.Disconnect
		logger.Infof("store: MongoDB %s.%s", cfg.MongoDB.Database, cfg.Store.Collection)

	case config.BackendFirestore:
		client, err := database.ConnectFirestore(ctx, cfg.Firestore.ProjectID, cfg.Firestore.CredentialsFile)
		if err != nil {
			return nil, err
		}
		repo = repository.NewFirestoreRepo(client, cfg.Store.Collection)
		closeFn = func(context.Context) error { return client.Close() }
		logger.Infof("store: Firestore project=%s collection=%s", cfg.Firestore.ProjectID, cfg.Store.Collection)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return &Store{
		Backend: cfg.Store.Backend,
		Repo:    repository.NewInstrumented(repo, cfg.Store.Backend),
		Close:   closeFn,
	}, nil
}

package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipe-service/internal/config"
	"github.com/recipebox/recipe-service/internal/recipe/repository"
)

func TestOpenStoreMemory(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: config.BackendMemory, Collection: "recipe_item_DB"}}
	st, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, config.BackendMemory, st.Backend)
	require.IsType(t, &repository.Instrumented{}, st.Repo)
	require.NoError(t, st.Repo.Ping(context.Background()))
	require.NoError(t, st.Close(context.Background()))
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: "sqlite"}}
	_, err := OpenStore(context.Background(), cfg)
	require.Error(t, err)
}

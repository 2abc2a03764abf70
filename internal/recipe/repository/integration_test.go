package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipe-service/internal/database"
	"github.com/recipebox/recipe-service/internal/recipe"
)

// These run against real stores and are skipped unless the environment
// points at one (a local mongod, or the Firestore emulator).

func TestMongoRepoContract(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, uri, 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()

	col := client.Database("recipes_test").Collection(fmt.Sprintf("recipes_%d", time.Now().UnixNano()))
	defer func() { _ = col.Drop(ctx) }()

	runRepositoryContract(t, NewMongoRepo(col))
}

func TestFirestoreRepoContract(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	client, err := database.ConnectFirestore(ctx, "recipes-test", "")
	require.NoError(t, err)
	defer client.Close()

	name := fmt.Sprintf("recipes_%d", time.Now().UnixNano())
	repo := NewFirestoreRepo(client, name)
	runRepositoryContract(t, repo)

	// a document in the legacy server's shape reads and updates cleanly
	_, err = client.Collection(name).Doc("legacy").Set(ctx, map[string]any{
		"title":       "Chicken Curry",
		"making_time": "45 min",
		"serves":      "4 people",
		"ingredients": "onion, chicken, seasoning",
		"cost":        1000,
		"created_at":  "2016-01-10T12:10:12.000Z",
		"updated_at":  "2016-01-10T12:10:12.000Z",
	})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "legacy")
	require.NoError(t, err)
	require.Equal(t, recipe.Cost("1000"), got.Cost)
	require.Equal(t, 2016, got.CreatedAt.Year())

	later := recipe.Now()
	require.NoError(t, repo.Update(ctx, "legacy", map[string]any{recipe.FieldServes: "2 people"}, later))
	got, err = repo.Get(ctx, "legacy")
	require.NoError(t, err)
	require.Equal(t, "2 people", got.Serves)
	require.True(t, got.UpdatedAt.Equal(later))
}

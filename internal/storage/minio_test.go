package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipe-service/internal/config"
)

func TestNewMinIOStorageRequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.MinIOConfig{Bucket: "recipes-backup"})
	require.Error(t, err)
}

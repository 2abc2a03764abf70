package repository

import (
	"context"
	"errors"
	"time"

	"github.com/recipebox/recipe-service/internal/recipe"
)

var (
	ErrNotFound = errors.New("recipe not found")
)

// Repository is the persistence contract shared by every backing store.
// Create assigns the ID; Update merges fields and stamps updatedAt.
type Repository interface {
	Create(ctx context.Context, r *recipe.Recipe) (string, error)
	Get(ctx context.Context, id string) (*recipe.Recipe, error)
	List(ctx context.Context) ([]*recipe.Recipe, error)
	Update(ctx context.Context, id string, fields map[string]any, updatedAt time.Time) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

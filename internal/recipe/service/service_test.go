package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipebox/recipe-service/internal/recipe"
	"github.com/recipebox/recipe-service/internal/recipe/repository"
)

func validRequest() *recipe.CreateRequest {
	return &recipe.CreateRequest{
		Title:       "Tea",
		MakingTime:  "5 min",
		Serves:      "1",
		Ingredients: "tea,water",
		Cost:        "2",
	}
}

func strp(s string) *string { return &s }

func TestCreateAssignsIDAndEqualTimestamps(t *testing.T) {
	svc := NewMemoryService()
	r, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotEmpty(t, r.ID)
	require.False(t, r.CreatedAt.IsZero())
	require.True(t, r.CreatedAt.Equal(r.UpdatedAt))
	require.Equal(t, "Tea", r.Title)
}

func TestCreateRejectsEachMissingField(t *testing.T) {
	svc := NewMemoryService()
	cases := map[string]func(*recipe.CreateRequest){
		"title":       func(r *recipe.CreateRequest) { r.Title = "" },
		"making_time": func(r *recipe.CreateRequest) { r.MakingTime = "" },
		"serves":      func(r *recipe.CreateRequest) { r.Serves = "" },
		"ingredients": func(r *recipe.CreateRequest) { r.Ingredients = "" },
		"cost":        func(r *recipe.CreateRequest) { r.Cost = "" },
	}
	for field, drop := range cases {
		t.Run(field, func(t *testing.T) {
			req := validRequest()
			drop(req)
			_, err := svc.Create(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidRecipe)
			assert.Contains(t, err.Error(), field)
		})
	}

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list, "rejected creates must not persist anything")
}

func TestUpdateChangesOnlyPatchedFields(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)
	res, err := svc.Update(ctx, created.ID, &recipe.Patch{Title: strp("X")})
	require.NoError(t, err)

	require.Equal(t, "X", res.Changes[recipe.FieldTitle])
	require.Contains(t, res.Changes, recipe.FieldUpdatedAt)
	require.Len(t, res.Changes, 2)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, created.MakingTime, got.MakingTime)
	assert.Equal(t, created.Serves, got.Serves)
	assert.Equal(t, created.Ingredients, got.Ingredients)
	assert.Equal(t, created.Cost, got.Cost)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, got, res.Recipe)
}

func TestUpdateRejectsEmptyValues(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, &recipe.Patch{Serves: strp("")})
	require.ErrorIs(t, err, ErrInvalidPatch)
	assert.Contains(t, err.Error(), "serves")
}

func TestUnknownIDIsNotFound(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()

	_, err := svc.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, "missing", &recipe.Patch{Title: strp("X")})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
}

func TestDeleteThenGet(t *testing.T) {
	svc := NewMemoryService()
	ctx := context.Background()
	created, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

// failingRepo returns a store error from every call.
type failingRepo struct{ err error }

func (f *failingRepo) Create(context.Context, *recipe.Recipe) (string, error) { return "", f.err }
func (f *failingRepo) Get(context.Context, string) (*recipe.Recipe, error)    { return nil, f.err }
func (f *failingRepo) List(context.Context) ([]*recipe.Recipe, error)         { return nil, f.err }
func (f *failingRepo) Update(context.Context, string, map[string]any, time.Time) error {
	return f.err
}
func (f *failingRepo) Delete(context.Context, string) error { return f.err }
func (f *failingRepo) Ping(context.Context) error           { return f.err }

var _ repository.Repository = (*failingRepo)(nil)

func TestStoreErrorsPassThrough(t *testing.T) {
	boom := errors.New("deadline exceeded talking to store")
	svc := New(&failingRepo{err: boom})
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest())
	require.ErrorIs(t, err, boom)
	_, err = svc.Get(ctx, "id")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrNotFound)
	_, err = svc.List(ctx)
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, svc.Ping(ctx), boom)
}

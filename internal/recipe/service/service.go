package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/recipebox/recipe-service/internal/recipe"
	"github.com/recipebox/recipe-service/internal/recipe/repository"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecipe = errors.New("invalid recipe")
	ErrInvalidPatch  = errors.New("invalid patch")
)

// Service defines the recipe operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, req *recipe.CreateRequest) (*recipe.Recipe, error)
	Get(ctx context.Context, id string) (*recipe.Recipe, error)
	List(ctx context.Context) ([]*recipe.Recipe, error)
	Update(ctx context.Context, id string, patch *recipe.Patch) (*recipe.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// New returns a Service over the given repository. The repository (and the
// store client behind it) is owned by the caller.
func New(repo repository.Repository) Service {
	return &recipeService{repo: repo, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

type recipeService struct {
	repo     repository.Repository
	validate *validator.Validate
}

func (s *recipeService) Create(ctx context.Context, req *recipe.CreateRequest) (*recipe.Recipe, error) {
	if req == nil {
		return nil, ErrInvalidRecipe
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRecipe, fieldList(err))
	}
	now := recipe.Now()
	r := &recipe.Recipe{
		Title:       req.Title,
		MakingTime:  req.MakingTime,
		Serves:      req.Serves,
		Ingredients: req.Ingredients,
		Cost:        req.Cost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *recipeService) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	return r, nil
}

func (s *recipeService) List(ctx context.Context) ([]*recipe.Recipe, error) {
	return s.repo.List(ctx)
}

// Update applies the patch and returns both the applied changes (with the new
// updated_at) and the merged record as read back from the store.
func (s *recipeService) Update(ctx context.Context, id string, patch *recipe.Patch) (*recipe.UpdateResult, error) {
	if patch == nil {
		patch = &recipe.Patch{}
	}
	if err := s.validate.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %s must not be empty", ErrInvalidPatch, fieldList(err))
	}
	fields := patch.Fields()
	now := recipe.Now()
	if err := s.repo.Update(ctx, id, fields, now); err != nil {
		return nil, mapErr(err)
	}
	merged, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err)
	}
	fields[recipe.FieldUpdatedAt] = now
	return &recipe.UpdateResult{Changes: fields, Recipe: merged}, nil
}

func (s *recipeService) Delete(ctx context.Context, id string) error {
	return mapErr(s.repo.Delete(ctx, id))
}

func (s *recipeService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func mapErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// fieldList renders the JSON names of the fields that failed validation.
func fieldList(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, jsonName(fe.Field()))
	}
	return fmt.Sprint(names)
}

func jsonName(goField string) string {
	switch goField {
	case "Title":
		return recipe.FieldTitle
	case "MakingTime":
		return recipe.FieldMakingTime
	case "Serves":
		return recipe.FieldServes
	case "Ingredients":
		return recipe.FieldIngredients
	case "Cost":
		return recipe.FieldCost
	}
	return goField
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/recipebox/recipe-service/internal/recipe"
)

// FirestoreRepo implements Repository on a single Firestore collection.
// The document ID is the recipe ID and is also written into the "id" field.
type FirestoreRepo struct {
	client *firestore.Client
	col    *firestore.CollectionRef
}

func NewFirestoreRepo(client *firestore.Client, collection string) *FirestoreRepo {
	return &FirestoreRepo{client: client, col: client.Collection(collection)}
}

func (f *FirestoreRepo) Create(ctx context.Context, r *recipe.Recipe) (string, error) {
	ref := f.col.NewDoc()
	if r.ID != "" {
		ref = f.col.Doc(r.ID)
	}
	r.ID = ref.ID
	if _, err := ref.Create(ctx, r); err != nil {
		return "", fmt.Errorf("firestore create recipe: %w", err)
	}
	return r.ID, nil
}

func (f *FirestoreRepo) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	snap, err := f.col.Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("firestore get recipe: %w", err)
	}
	return decodeSnapshot(snap)
}

func (f *FirestoreRepo) List(ctx context.Context) ([]*recipe.Recipe, error) {
	iter := f.col.Documents(ctx)
	defer iter.Stop()
	out := []*recipe.Recipe{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore list recipes: %w", err)
		}
		r, err := decodeSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Update reads and writes in one transaction so updated_at only moves forward.
func (f *FirestoreRepo) Update(ctx context.Context, id string, fields map[string]any, updatedAt time.Time) error {
	ref := f.col.Doc(id)
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		cur, err := decodeSnapshot(snap)
		if err != nil {
			return err
		}
		updates := make([]firestore.Update, 0, len(fields)+1)
		for k, v := range fields {
			updates = append(updates, firestore.Update{Path: k, Value: v})
		}
		if updatedAt.After(cur.UpdatedAt) {
			updates = append(updates, firestore.Update{Path: recipe.FieldUpdatedAt, Value: updatedAt})
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("firestore update recipe: %w", err)
	}
	return nil
}

func (f *FirestoreRepo) Delete(ctx context.Context, id string) error {
	if _, err := f.col.Doc(id).Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("firestore delete recipe: %w", err)
	}
	return nil
}

func (f *FirestoreRepo) Ping(ctx context.Context) error {
	iter := f.col.Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (*recipe.Recipe, error) {
	r, err := recipeFromData(snap.Ref.ID, snap.Data())
	if err != nil {
		return nil, fmt.Errorf("firestore decode recipe %s: %w", snap.Ref.ID, err)
	}
	return r, nil
}

// recipeFromData builds a Recipe from raw document fields. Documents written by
// the legacy server hold ISO-8601 strings for the timestamps and whatever JSON
// type the client sent for the text fields, so both shapes are accepted.
func recipeFromData(id string, data map[string]any) (*recipe.Recipe, error) {
	r := &recipe.Recipe{ID: id}
	texts := []struct {
		field string
		dst   *string
	}{
		{recipe.FieldTitle, &r.Title},
		{recipe.FieldMakingTime, &r.MakingTime},
		{recipe.FieldServes, &r.Serves},
		{recipe.FieldIngredients, &r.Ingredients},
	}
	for _, t := range texts {
		v, err := textValue(data[t.field])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.field, err)
		}
		*t.dst = v
	}
	cost, err := textValue(data[recipe.FieldCost])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", recipe.FieldCost, err)
	}
	r.Cost = recipe.Cost(cost)

	if r.CreatedAt, err = timeValue(data[recipe.FieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("%s: %w", recipe.FieldCreatedAt, err)
	}
	if r.UpdatedAt, err = timeValue(data[recipe.FieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("%s: %w", recipe.FieldUpdatedAt, err)
	}
	return r, nil
}

func textValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func timeValue(v any) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return x.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, x)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported value type %T", v)
	}
}

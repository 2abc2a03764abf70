package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/recipebox/recipe-service/internal/recipe"
)

// MongoRepo implements Repository on a single MongoDB collection.
// IDs are ObjectID hex strings stored in _id, so no extra index is needed.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, r *recipe.Recipe) (string, error) {
	if r.ID == "" {
		r.ID = primitive.NewObjectID().Hex()
	}
	if _, err := m.col.InsertOne(ctx, r); err != nil {
		return "", fmt.Errorf("mongo insert recipe: %w", err)
	}
	return r.ID, nil
}

func (m *MongoRepo) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	var r recipe.Recipe
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find recipe: %w", err)
	}
	return &r, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*recipe.Recipe, error) {
	cur, err := m.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongo list recipes: %w", err)
	}
	defer cur.Close(ctx)
	out := []*recipe.Recipe{}
	for cur.Next(ctx) {
		var r recipe.Recipe
		if err := cur.Decode(&r); err != nil {
			return nil, fmt.Errorf("mongo decode recipe: %w", err)
		}
		out = append(out, &r)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo list recipes: %w", err)
	}
	return out, nil
}

// Update uses $max on updated_at so concurrent writers never move it backwards.
func (m *MongoRepo) Update(ctx context.Context, id string, fields map[string]any, updatedAt time.Time) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	upd := bson.M{"$max": bson.M{recipe.FieldUpdatedAt: updatedAt}}
	if len(set) > 0 {
		upd["$set"] = set
	}
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": id}, upd)
	if err != nil {
		return fmt.Errorf("mongo update recipe: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo delete recipe: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	return m.col.Database().Client().Ping(ctx, nil)
}

package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Field names as they appear on the wire and in every backing store.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldMakingTime  = "making_time"
	FieldServes      = "serves"
	FieldIngredients = "ingredients"
	FieldCost        = "cost"
	FieldCreatedAt   = "created_at"
	FieldUpdatedAt   = "updated_at"
)

// RequiredFields is the message listed back to clients when a create request
// is missing one of the mandatory fields.
const RequiredFields = "title, making_time, serves, ingredients, cost"

// Recipe is the single persisted record type.
// The Mongo _id and the Firestore document ID both hold the string ID.
type Recipe struct {
	ID          string    `json:"id" bson:"_id" firestore:"id"`
	Title       string    `json:"title" bson:"title" firestore:"title"`
	MakingTime  string    `json:"making_time" bson:"making_time" firestore:"making_time"`
	Serves      string    `json:"serves" bson:"serves" firestore:"serves"`
	Ingredients string    `json:"ingredients" bson:"ingredients" firestore:"ingredients"`
	Cost        Cost      `json:"cost" bson:"cost" firestore:"cost"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" firestore:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" firestore:"updated_at"`
}

// Clone returns a copy that shares no state with r.
func (r *Recipe) Clone() *Recipe {
	c := *r
	return &c
}

// Cost is stored as text. Clients may send either a JSON string or a JSON
// number; numbers keep their literal form ("12.50" stays "12.50"). A numeric
// zero decodes to the empty cost and so fails the required check, as does "".
type Cost string

func (c *Cost) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Cost(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("cost must be a string or a number: %w", err)
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		*c = ""
		return nil
	}
	*c = Cost(n.String())
	return nil
}

// CreateRequest carries the five fields accepted by the create operation.
type CreateRequest struct {
	Title       string `json:"title" validate:"required"`
	MakingTime  string `json:"making_time" validate:"required"`
	Serves      string `json:"serves" validate:"required"`
	Ingredients string `json:"ingredients" validate:"required"`
	Cost        Cost   `json:"cost" validate:"required"`
}

// Patch is the schema for partial updates. Absent fields are left untouched;
// present fields must be non-empty. Identity and timestamp fields are not part
// of the schema and are rejected by the decoder.
type Patch struct {
	Title       *string `json:"title,omitempty" validate:"omitnil,min=1"`
	MakingTime  *string `json:"making_time,omitempty" validate:"omitnil,min=1"`
	Serves      *string `json:"serves,omitempty" validate:"omitnil,min=1"`
	Ingredients *string `json:"ingredients,omitempty" validate:"omitnil,min=1"`
	Cost        *Cost   `json:"cost,omitempty" validate:"omitnil,min=1"`
}

// Fields returns the present patch fields keyed by store field name.
func (p *Patch) Fields() map[string]any {
	out := map[string]any{}
	if p == nil {
		return out
	}
	if p.Title != nil {
		out[FieldTitle] = *p.Title
	}
	if p.MakingTime != nil {
		out[FieldMakingTime] = *p.MakingTime
	}
	if p.Serves != nil {
		out[FieldServes] = *p.Serves
	}
	if p.Ingredients != nil {
		out[FieldIngredients] = *p.Ingredients
	}
	if p.Cost != nil {
		out[FieldCost] = string(*p.Cost)
	}
	return out
}

// Apply merges the patch fields into r and stamps updatedAt.
// updatedAt never moves backwards.
func (r *Recipe) Apply(fields map[string]any, updatedAt time.Time) {
	for k, v := range fields {
		s, _ := v.(string)
		switch k {
		case FieldTitle:
			r.Title = s
		case FieldMakingTime:
			r.MakingTime = s
		case FieldServes:
			r.Serves = s
		case FieldIngredients:
			r.Ingredients = s
		case FieldCost:
			r.Cost = Cost(s)
		}
	}
	if updatedAt.After(r.UpdatedAt) {
		r.UpdatedAt = updatedAt
	}
}

// UpdateResult is what a successful update reports: the fields that were
// applied (including the new updated_at) and the merged record.
type UpdateResult struct {
	Changes map[string]any
	Recipe  *Recipe
}

// Now returns the current time in the precision used for stored timestamps.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// MarshalJSON renders timestamps with millisecond precision in UTC.
func (r Recipe) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		MakingTime  string `json:"making_time"`
		Serves      string `json:"serves"`
		Ingredients string `json:"ingredients"`
		Cost        Cost   `json:"cost"`
		CreatedAt   string `json:"created_at"`
		UpdatedAt   string `json:"updated_at"`
	}
	return json.Marshal(wire{
		ID:          r.ID,
		Title:       r.Title,
		MakingTime:  r.MakingTime,
		Serves:      r.Serves,
		Ingredients: r.Ingredients,
		Cost:        r.Cost,
		CreatedAt:   FormatTime(r.CreatedAt),
		UpdatedAt:   FormatTime(r.UpdatedAt),
	})
}

// TimeLayout is ISO-8601 with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTime formats t using TimeLayout in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

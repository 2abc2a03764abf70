// Package seed loads recipe fixtures from YAML or JSON files.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/recipebox/recipe-service/internal/recipe"
	"github.com/recipebox/recipe-service/internal/recipe/service"
)

// Entry is one fixture. Numeric costs in YAML are read as their literal text.
type Entry struct {
	Title       string `yaml:"title"`
	MakingTime  string `yaml:"making_time"`
	Serves      string `yaml:"serves"`
	Ingredients string `yaml:"ingredients"`
	Cost        string `yaml:"cost"`
}

// File is either a bare list of entries or {recipes: [...]}.
type File struct {
	Recipes []Entry `yaml:"recipes"`
}

// Parse reads fixtures from r. JSON input works as well since JSON is valid YAML.
func Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var entries []Entry
		if err := root.Decode(&entries); err != nil {
			return nil, fmt.Errorf("decode recipes: %w", err)
		}
		return entries, nil
	case yaml.MappingNode:
		var f File
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("decode recipes: %w", err)
		}
		return f.Recipes, nil
	}
	return nil, fmt.Errorf("seed file must be a list or a mapping with a recipes key")
}

// ParseFile opens path and calls Parse.
func ParseFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Result counts what Load did.
type Result struct {
	Created int
	Skipped int
}

// Load creates every entry through svc. Invalid entries are skipped and
// reported through onSkip; store errors stop the load.
func Load(ctx context.Context, svc service.Service, entries []Entry, onSkip func(i int, err error)) (Result, error) {
	var res Result
	for i, e := range entries {
		_, err := svc.Create(ctx, &recipe.CreateRequest{
			Title:       e.Title,
			MakingTime:  e.MakingTime,
			Serves:      e.Serves,
			Ingredients: e.Ingredients,
			Cost:        recipe.Cost(e.Cost),
		})
		if err != nil {
			if errors.Is(err, service.ErrInvalidRecipe) {
				res.Skipped++
				if onSkip != nil {
					onSkip(i, err)
				}
				continue
			}
			return res, fmt.Errorf("entry %d: %w", i, err)
		}
		res.Created++
	}
	return res, nil
}

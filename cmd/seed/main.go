package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/recipebox/recipe-service/internal/app"
	"github.com/recipebox/recipe-service/internal/config"
	"github.com/recipebox/recipe-service/internal/recipe/service"
	"github.com/recipebox/recipe-service/internal/seed"
	"github.com/recipebox/recipe-service/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "recipe-seed",
		Usage: "Load recipe fixtures into the configured document store",
		Description: `Reads a YAML or JSON file of recipes and creates each one through the
same validation as POST /recipes. The store is selected with STORE_BACKEND and
the usual MONGODB_* / FIRESTORE_* variables.

The file is either a list of recipes or a mapping with a "recipes" key:

  recipes:
    - title: Chicken Curry
      making_time: 45 min
      serves: 4 people
      ingredients: onion, chicken, seasoning
      cost: 1000

# Examples

  recipe-seed --file fixtures/recipes.yaml
  recipe-seed -f recipes.json --dry-run`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Required: true,
				Usage:    "Path to the YAML or JSON fixture file",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Parse and validate the file without touching the store",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level: debug, info, warn, error",
			},
		},
		Action: run,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "recipe-seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger.Init(cmd.String("log-level"))
	defer logger.Sync()

	entries, err := seed.ParseFile(cmd.String("file"))
	if err != nil {
		return err
	}
	logger.Infof("seed: %d entries in %s", len(entries), cmd.String("file"))

	var svc service.Service
	if cmd.Bool("dry-run") {
		svc = service.NewMemoryService()
	} else {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		st, err := app.OpenStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = st.Close(context.Background()) }()
		svc = service.New(st.Repo)
	}

	res, err := seed.Load(ctx, svc, entries, func(i int, err error) {
		logger.Warnf("seed: skipping entry %d: %v", i, err)
	})
	if err != nil {
		return err
	}
	logger.Infof("seed: created=%d skipped=%d dry_run=%v", res.Created, res.Skipped, cmd.Bool("dry-run"))
	return nil
}

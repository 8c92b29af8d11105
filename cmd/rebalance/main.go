package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/andresuchdata/rebalancer/internal/cache"
	"github.com/andresuchdata/rebalancer/internal/config"
	"github.com/andresuchdata/rebalancer/internal/repository/postgres"
	"github.com/andresuchdata/rebalancer/internal/service"
	"github.com/andresuchdata/rebalancer/internal/storage"
	"github.com/andresuchdata/rebalancer/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "rebalance",
		Usage: "Move stock from surplus outlets toward outlets running low",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Execute one rebalancing pass (simulated unless --live)",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.BoolFlag{
						Name:  "live",
						Usage: "Persist planned transfers instead of simulating them",
					},
				},
				Action: runRebalance,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runRebalance(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	db, err := postgres.NewDBFromURL(c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	locker, err := cache.NewRunLocker(cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to initialize run lock: %w", err)
	}
	summaries, err := cache.NewSummaryCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("summary cache unavailable, continuing without it")
		summaries = cache.NewNoopSummaryCache()
	}

	var objectStore storage.ObjectStorage
	if cfg.Insights.Enabled && cfg.Insights.Bucket != "" {
		store, err := storage.NewMinioClient(cfg.Insights)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("insights object storage unavailable, writing locally only")
		} else {
			objectStore = store
		}
	}

	executor := service.NewExecutor(postgres.NewExecutionRepository(db))
	insights := service.NewInsightsService(cfg.Insights, objectStore)
	rebalancer := service.NewRebalancer(
		cfg,
		postgres.NewOutletRepository(db),
		postgres.NewSalesRepository(db),
		executor,
		insights,
		locker,
		summaries,
	)

	dryRun := !c.Bool("live")
	summary, err := rebalancer.Run(c.Context, dryRun)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	fmt.Println(string(out))

	return nil
}

// Command main runs a one-shot bulk import of a JSON dataset file.
//
// The dataset file holds the three raw collections:
//
//	{"users": [...], "recipes": [...], "reviews": [...]}
//
// The whole import runs in a single transaction: existing rows are cleared,
// the dataset is normalized and loaded, and every recipe's derived rating
// columns are recomputed before commit.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"tastebase/internal/cache"
	"tastebase/internal/config"
	"tastebase/internal/database"
	"tastebase/internal/importer"
)

func main() {
	file := flag.String("file", "dataset.json", "Path to the JSON dataset file")
	timeout := flag.Duration("timeout", 30*time.Minute, "Overall import timeout")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Failed to read dataset file %s: %v", *file, err)
	}

	var dataset importer.Dataset
	if err := json.Unmarshal(raw, &dataset); err != nil {
		log.Fatalf("Failed to parse dataset file %s: %v", *file, err)
	}
	log.Printf("Dataset parsed: %d users, %d recipes, %d reviews",
		len(dataset.Users), len(dataset.Recipes), len(dataset.Reviews))

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	cache.InitRedis(cfg.RedisURL)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	im := importer.NewImporter(database.DB, cfg.ImportBatchSize)
	start := time.Now()
	if err := im.Run(ctx, dataset.Users, dataset.Recipes, dataset.Reviews); err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import finished in %s", time.Since(start).Round(time.Millisecond))
}

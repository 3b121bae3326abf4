package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jerseylab/jerseylab-backend/config"
	"github.com/jerseylab/jerseylab-backend/internal/app/repository"
	"github.com/jerseylab/jerseylab-backend/internal/app/service"
	"github.com/jerseylab/jerseylab-backend/internal/cache"
	"github.com/jerseylab/jerseylab-backend/internal/catalogimport"
	"github.com/jerseylab/jerseylab-backend/internal/db"
	"github.com/jerseylab/jerseylab-backend/pkg/redis"
)

func main() {
	promos := flag.Bool("promos", false, "also insert the demo promo codes")
	assumeYes := flag.Bool("y", false, "skip the confirmation prompt")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: go run cmd/seed/main.go [-promos] [-y] [catalog.xlsx]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 && !*promos {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	var result *catalogimport.Result
	if flag.NArg() > 0 {
		filePath := flag.Arg(0)
		fmt.Printf("Reading XLSX file: %s\n", filePath)

		f, err := os.Open(filePath)
		if err != nil {
			log.Fatal("Failed to open XLSX:", err)
		}
		result, err = catalogimport.ReadXLSX(f)
		f.Close()
		if err != nil {
			log.Fatal("Failed to read XLSX:", err)
		}

		products := 0
		for _, category := range result.Categories {
			products += len(category.Products)
		}
		fmt.Printf("Rows read: %d, categories: %d, products: %d\n", result.Rows, len(result.Categories), products)
		for _, reason := range result.Skipped {
			fmt.Printf("  skipped %s\n", reason)
		}
	}

	if !*assumeYes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	if result != nil {
		// Cached catalog reads in a running server must see the import
		var store cache.Store = cache.NewMemoryStore()
		if cfg.Redis.Enabled() {
			if err := redis.Init(&cfg.Redis); err != nil {
				log.Fatal("Failed to connect to redis:", err)
			}
			defer redis.Close()
			store = cache.NewRedisStore(redis.GetClient())
		}

		catalog := service.NewCatalogService(repository.NewCategoryRepository(db.GetDB()), store, cfg.Cache.CatalogTTL)
		summary := catalogimport.Apply(context.Background(), catalog, result.Categories)

		fmt.Printf("Categories created: %d, updated: %d\n", summary.Created, summary.Updated)
		for key, err := range summary.Failed {
			fmt.Printf("  failed %s: %v\n", key, err)
		}
		if len(summary.Failed) > 0 {
			os.Exit(1)
		}
	}

	if *promos {
		if err := db.SeedDemoPromoCodes(db.GetDB(), time.Now()); err != nil {
			log.Fatal("Failed to seed promo codes:", err)
		}
		fmt.Println("Demo promo codes seeded.")
	}

	fmt.Println("Import completed successfully!")
}

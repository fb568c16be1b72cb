// Command seed fills a development database with demo users, recipes,
// favorites, carts and subscriptions.
package main

import (
	"context"
	"flag"
	"log"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/middleware"
	"foodgram/internal/seed"
	"foodgram/internal/storage"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "Number of users to create")
	flag.IntVar(&opts.RecipesPerUser, "recipes", opts.RecipesPerUser, "Recipes per user")
	flag.IntVar(&opts.Ingredients, "ingredients", opts.Ingredients, "Random ingredients to add to the catalogue")
	flag.IntVar(&opts.FavoritesPerUser, "favorites", opts.FavoritesPerUser, "Favorites per user")
	flag.IntVar(&opts.CartPerUser, "cart", opts.CartPerUser, "Shopping cart recipes per user")
	flag.IntVar(&opts.SubscriptionsPer, "subscriptions", opts.SubscriptionsPer, "Subscriptions per user")
	flag.StringVar(&opts.Password, "password", opts.Password, "Password for every seeded user")
	flag.Int64Var(&opts.Seed, "seed", 0, "Random seed (0 picks one)")
	flag.BoolVar(&opts.ShouldClean, "clean", opts.ShouldClean, "Remove users and recipes before seeding")
	fixture := flag.String("fixture", "", "Ingredient fixture (json, csv or yaml) to import first")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitLogger(cfg.Env, cfg.LogLevel)
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up object store: %v", err)
	}

	if *fixture != "" {
		if err := importFixture(ctx, db, *fixture); err != nil {
			log.Fatalf("Fixture import failed: %v", err)
		}
	}

	summary, err := seed.NewSeeder(db, store, opts).Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d recipes, %d favorites, %d cart items, %d subscriptions",
		summary.Users, summary.Recipes, summary.Favorites, summary.CartItems, summary.Subscriptions)
	log.Printf("All seeded users have the password: %s", opts.Password)
}

package seed

import (
	"context"
	"fmt"
	"log/slog"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/service"
	"foodgram/internal/storage"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded user signs in with.
const DefaultPassword = "password123"

// Options configures a seeding run.
type Options struct {
	Users            int
	RecipesPerUser   int
	Ingredients      int
	MaxLines         int
	FavoritesPerUser int
	CartPerUser      int
	SubscriptionsPer int
	Password         string
	Seed             int64
	BcryptCost       int
	ShouldClean      bool
}

// DefaultOptions is a small but fully connected demo dataset.
func DefaultOptions() Options {
	return Options{
		Users:            20,
		RecipesPerUser:   3,
		Ingredients:      60,
		MaxLines:         6,
		FavoritesPerUser: 5,
		CartPerUser:      3,
		SubscriptionsPer: 4,
		Password:         DefaultPassword,
		BcryptCost:       bcrypt.DefaultCost,
		ShouldClean:      true,
	}
}

// Summary counts what a run created.
type Summary struct {
	Users         int
	Ingredients   int64
	Recipes       int
	Favorites     int
	CartItems     int
	Subscriptions int
}

// Seeder fills a database with demo users, recipes and relations.
type Seeder struct {
	db            *gorm.DB
	opts          Options
	users         repository.UserRepository
	ingredientSvc *service.IngredientService
	recipeSvc     *service.RecipeService
	relationSvc   *service.RelationService
	subSvc        *service.SubscriptionService
}

// NewSeeder wires the repositories and services a run writes through.
// Recipe images are saved to store.
func NewSeeder(db *gorm.DB, store storage.BlobStore, opts Options) *Seeder {
	userRepo := repository.NewUserRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	images := service.NewImageService(store, nil)

	return &Seeder{
		db:            db,
		opts:          opts,
		users:         userRepo,
		ingredientSvc: service.NewIngredientService(ingredientRepo),
		recipeSvc:     service.NewRecipeService(recipeRepo, ingredientRepo, subRepo, images, nil),
		relationSvc:   service.NewRelationService(relationRepo, recipeRepo),
		subSvc:        service.NewSubscriptionService(subRepo, userRepo, recipeRepo),
	}
}

// ClearAll removes users, recipes and every relation. The ingredient
// catalogue is kept.
func (s *Seeder) ClearAll() error {
	tables := []any{
		&models.RecipeRelation{},
		&models.Subscription{},
		&models.RecipeIngredient{},
		&models.Recipe{},
		&models.User{},
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return fmt.Errorf("clear %T: %w", table, err)
			}
		}
		return nil
	})
}

// Run seeds the database and reports what it created.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	opts := s.opts
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	factory := NewFactory(s.users, string(hash), opts.Seed)
	summary := &Summary{}

	imported, err := s.ingredientSvc.Import(ctx, factory.BuildIngredients(opts.Ingredients))
	if err != nil {
		return nil, fmt.Errorf("import ingredients: %w", err)
	}
	summary.Ingredients = imported.Inserted
	catalogue, err := s.ingredientSvc.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}

	userIDs := make([]uint, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		user, err := factory.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		userIDs = append(userIDs, user.ID)
	}
	summary.Users = len(userIDs)

	var recipeIDs []uint
	if len(catalogue) > 0 {
		for _, authorID := range userIDs {
			for j := 0; j < opts.RecipesPerUser; j++ {
				in, err := factory.BuildRecipe(catalogue, opts.MaxLines)
				if err != nil {
					return nil, err
				}
				recipe, err := s.recipeSvc.Create(ctx, authorID, in)
				if err != nil {
					return nil, fmt.Errorf("create recipe: %w", err)
				}
				recipeIDs = append(recipeIDs, recipe.ID)
			}
		}
	}
	summary.Recipes = len(recipeIDs)

	for _, userID := range userIDs {
		n, err := s.relate(ctx, models.RelationFavorite, userID, factory.Pick(recipeIDs, opts.FavoritesPerUser))
		if err != nil {
			return nil, err
		}
		summary.Favorites += n

		n, err = s.relate(ctx, models.RelationShoppingCart, userID, factory.Pick(recipeIDs, opts.CartPerUser))
		if err != nil {
			return nil, err
		}
		summary.CartItems += n

		followed := 0
		for _, authorID := range factory.Pick(userIDs, opts.SubscriptionsPer+1) {
			if authorID == userID || followed == opts.SubscriptionsPer {
				continue
			}
			if _, err := s.subSvc.Subscribe(ctx, userID, authorID, 0); err != nil {
				return nil, fmt.Errorf("subscribe: %w", err)
			}
			followed++
		}
		summary.Subscriptions += followed
	}

	middleware.Logger.Info("seed complete",
		slog.Int("users", summary.Users),
		slog.Int64("ingredients", summary.Ingredients),
		slog.Int("recipes", summary.Recipes),
		slog.Int("favorites", summary.Favorites),
		slog.Int("cart_items", summary.CartItems),
		slog.Int("subscriptions", summary.Subscriptions),
	)
	return summary, nil
}

func (s *Seeder) relate(ctx context.Context, kind models.RelationKind, userID uint, recipeIDs []uint) (int, error) {
	added := 0
	for _, recipeID := range recipeIDs {
		if _, err := s.relationSvc.Add(ctx, kind, userID, recipeID); err != nil {
			if models.IsCode(err, models.CodeAlreadyExists) {
				continue
			}
			return added, fmt.Errorf("add %s: %w", kind, err)
		}
		added++
	}
	return added, nil
}

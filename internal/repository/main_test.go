package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

// newTestDB opens a private in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Env:          "test",
		DBDriver:     "sqlite",
		DBSQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: true})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "First",
		LastName:  "Last",
		Password:  "hash",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	i := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(i).Error)
	return i
}

var fixtureClock = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// seedRecipe creates a recipe through the repository. Each call publishes one
// minute later than the previous one so listings order deterministically.
func seedRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines ...models.RecipeIngredient) *models.Recipe {
	t.Helper()
	fixtureClock = fixtureClock.Add(time.Minute)
	r := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        name + " text",
		Image:       "recipes/images/" + name + ".png",
		CookingTime: 10,
		PubDate:     fixtureClock,
		Lines:       lines,
	}
	require.NoError(t, NewRecipeRepository(db).Create(context.Background(), r))
	return r
}

func line(ingredientID uint, amount int) models.RecipeIngredient {
	return models.RecipeIngredient{IngredientID: ingredientID, Amount: amount}
}

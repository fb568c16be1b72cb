package seed

import (
	"context"
	"fmt"
	"testing"

	"foodgram/internal/config"
	"foodgram/internal/database"
	"foodgram/internal/models"
	"foodgram/internal/service"
	"foodgram/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectWithOptions(&config.Config{
		Env:          "test",
		DBDriver:     "sqlite",
		DBSQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, database.ConnectOptions{ApplySchema: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func smallOptions() Options {
	return Options{
		Users:            4,
		RecipesPerUser:   2,
		Ingredients:      10,
		MaxLines:         3,
		FavoritesPerUser: 2,
		CartPerUser:      2,
		SubscriptionsPer: 2,
		Seed:             42,
		BcryptCost:       bcrypt.MinCost,
		ShouldClean:      true,
	}
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestSeeder_Run(t *testing.T) {
	db := newSeedTestDB(t)
	store := testutil.NewMemoryStore()

	summary, err := NewSeeder(db, store, smallOptions()).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Users)
	assert.Equal(t, 8, summary.Recipes)
	assert.Equal(t, 8, summary.Favorites)
	assert.Equal(t, 8, summary.CartItems)
	assert.Equal(t, 8, summary.Subscriptions)
	assert.Positive(t, summary.Ingredients)

	assert.EqualValues(t, 4, count(t, db, &models.User{}))
	assert.EqualValues(t, 8, count(t, db, &models.Recipe{}))
	assert.EqualValues(t, 16, count(t, db, &models.RecipeRelation{}))
	assert.EqualValues(t, 8, count(t, db, &models.Subscription{}))
	assert.Equal(t, 8, store.Len())

	var selfSubs int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("user_id = author_id").Count(&selfSubs).Error)
	assert.Zero(t, selfSubs)

	var lines int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).Count(&lines).Error)
	assert.GreaterOrEqual(t, lines, int64(8))
}

func TestSeeder_UsersCanSignIn(t *testing.T) {
	db := newSeedTestDB(t)
	opts := smallOptions()
	opts.Users = 1
	opts.RecipesPerUser = 0
	opts.Password = "Secret-pass1"

	_, err := NewSeeder(db, testutil.NewMemoryStore(), opts).Run(context.Background())
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Secret-pass1")))
	assert.Regexp(t, `^[\w.@+-]+$`, user.Username)
}

func TestSeeder_CleanKeepsIngredients(t *testing.T) {
	db := newSeedTestDB(t)
	seeder := NewSeeder(db, testutil.NewMemoryStore(), smallOptions())

	_, err := seeder.Run(context.Background())
	require.NoError(t, err)
	ingredients := count(t, db, &models.Ingredient{})

	require.NoError(t, seeder.ClearAll())
	assert.Zero(t, count(t, db, &models.User{}))
	assert.Zero(t, count(t, db, &models.Recipe{}))
	assert.Zero(t, count(t, db, &models.RecipeRelation{}))
	assert.Equal(t, ingredients, count(t, db, &models.Ingredient{}))
}

func TestFactory_BuildRecipe(t *testing.T) {
	f := NewFactory(nil, "hash", 7)
	catalogue := []models.Ingredient{{ID: 1}, {ID: 2}, {ID: 3}}

	in, err := f.BuildRecipe(catalogue, 5)
	require.NoError(t, err)

	assert.NotEmpty(t, in.Name)
	assert.NotEmpty(t, in.Text)
	assert.Contains(t, in.Image, "data:image/png;base64,")
	assert.GreaterOrEqual(t, in.CookingTime, models.MinCookingTime)
	require.NotEmpty(t, in.Ingredients)
	assert.LessOrEqual(t, len(in.Ingredients), 3)

	seen := map[uint]bool{}
	for _, line := range in.Ingredients {
		assert.False(t, seen[line.ID], "duplicate ingredient %d", line.ID)
		seen[line.ID] = true
		assert.GreaterOrEqual(t, line.Amount, models.MinIngredientAmount)
	}

	_, err = f.BuildRecipe(nil, 3)
	assert.Error(t, err)
}

func TestFactory_BuiltRecipeDecodes(t *testing.T) {
	f := NewFactory(nil, "hash", 1)
	in, err := f.BuildRecipe([]models.Ingredient{{ID: 1}}, 1)
	require.NoError(t, err)

	store := testutil.NewMemoryStore()
	key, err := service.NewImageService(store, nil).SaveDataURI(context.Background(), service.ImageKindRecipe, in.Image)
	require.NoError(t, err)
	assert.Contains(t, key, "recipes/")
}

func TestSanitizeUsername(t *testing.T) {
	assert.Equal(t, "Daniel.Smith", sanitizeUsername("Daniel.Smith"))
	assert.Equal(t, "ab", sanitizeUsername("a b!"))
	assert.Equal(t, "cook", sanitizeUsername("!!!"))
}

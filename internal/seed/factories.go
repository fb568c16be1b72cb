// Package seed builds demo data and parses ingredient fixtures. It is meant
// for development databases and tests.
package seed

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var measurementUnits = []string{"г", "кг", "мл", "л", "шт", "ст. л.", "ч. л.", "по вкусу"}

// Factory generates demo entities with gofakeit. Users are written through
// the user repository with a shared precomputed password hash; everything
// else goes through the services so seeded rows obey the same rules as API
// writes.
type Factory struct {
	faker        *gofakeit.Faker
	users        repository.UserRepository
	passwordHash string
	seq          int
}

// NewFactory creates a factory. A zero seed picks a random one.
func NewFactory(users repository.UserRepository, passwordHash string, seed int64) *Factory {
	return &Factory{
		faker:        gofakeit.New(seed),
		users:        users,
		passwordHash: passwordHash,
	}
}

// BuildUser returns an unsaved user with unique username and email.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	f.seq++
	username := fmt.Sprintf("%s%d", sanitizeUsername(f.faker.Username()), f.seq)
	user := &models.User{
		Username:  username,
		Email:     strings.ToLower(username) + "@" + f.faker.DomainName(),
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
		Password:  f.passwordHash,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser persists a generated user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildIngredients returns n random fruit and vegetable ingredients. The
// list may contain duplicates; Import drops them.
func (f *Factory) BuildIngredients(n int) []models.Ingredient {
	out := make([]models.Ingredient, 0, n)
	for i := 0; i < n; i++ {
		name := f.faker.Vegetable()
		if i%2 == 1 {
			name = f.faker.Fruit()
		}
		out = append(out, models.Ingredient{
			Name:            strings.ToLower(name),
			MeasurementUnit: measurementUnits[f.faker.Number(0, len(measurementUnits)-1)],
		})
	}
	return out
}

// BuildRecipe returns a create input using up to maxLines distinct
// ingredients from catalogue. The image is a small generated PNG.
func (f *Factory) BuildRecipe(catalogue []models.Ingredient, maxLines int) (service.RecipeInput, error) {
	if len(catalogue) == 0 {
		return service.RecipeInput{}, fmt.Errorf("ingredient catalogue is empty")
	}
	if maxLines <= 0 {
		maxLines = 1
	}
	ids := make([]uint, len(catalogue))
	for i, ing := range catalogue {
		ids[i] = ing.ID
	}
	picked := f.Pick(ids, f.faker.Number(1, min(maxLines, len(catalogue))))

	ingredients := make([]service.IngredientAmountInput, 0, len(picked))
	for _, id := range picked {
		ingredients = append(ingredients, service.IngredientAmountInput{
			ID:     id,
			Amount: f.faker.Number(models.MinIngredientAmount, 500),
		})
	}

	img, err := f.placeholderImage()
	if err != nil {
		return service.RecipeInput{}, err
	}

	name := f.faker.Dinner()
	if f.faker.Bool() {
		name = f.faker.Lunch()
	}
	if len(name) > 200 {
		name = name[:200]
	}

	return service.RecipeInput{
		Ingredients: ingredients,
		Image:       img,
		Name:        name,
		Text:        f.faker.Paragraph(1, 3, 12, " "),
		CookingTime: f.faker.Number(5, 240),
	}, nil
}

// Pick returns up to n distinct elements of ids in random order.
func (f *Factory) Pick(ids []uint, n int) []uint {
	shuffled := append([]uint(nil), ids...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := f.faker.Number(0, i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	if n < len(shuffled) {
		shuffled = shuffled[:n]
	}
	return shuffled
}

func (f *Factory) placeholderImage() (string, error) {
	const size = 64
	fill := color.RGBA{
		R: uint8(f.faker.Number(0, 255)),
		G: uint8(f.faker.Number(0, 255)),
		B: uint8(f.faker.Number(0, 255)),
		A: 255,
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// sanitizeUsername keeps the characters a username may contain.
func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', strings.ContainsRune("._-", r):
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "cook"
	}
	out := b.String()
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}

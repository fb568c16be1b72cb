package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodgram/internal/config"
	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHumanizeParam(t *testing.T) {
	tests := []struct {
		param    string
		expected string
	}{
		{"id", "ID"},
		{"userId", "user ID"},
		{"recipeId", "recipe ID"},
		{"ingredientLineId", "ingredient line ID"},
		{"token", "token"},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			assert.Equal(t, tt.expected, humanizeParam(tt.param))
		})
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query string
		want  Pagination
	}{
		{"", Pagination{Page: 1, Limit: 6, Offset: 0}},
		{"?page=3", Pagination{Page: 3, Limit: 6, Offset: 12}},
		{"?page=2&limit=10", Pagination{Page: 2, Limit: 10, Offset: 10}},
		{"?page=-4&limit=0", Pagination{Page: 1, Limit: 6, Offset: 0}},
		{"?limit=500", Pagination{Page: 1, Limit: 100, Offset: 0}},
		{"?page=abc", Pagination{Page: 1, Limit: 6, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			app.Get("/items", func(c *fiber.Ctx) error {
				return c.JSON(parsePagination(c, 6))
			})
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			require.NoError(t, err)

			var got Pagination
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPageLinks(t *testing.T) {
	s := &Server{config: &config.Config{PublicBaseURL: "https://foodgram.example"}}
	app := fiber.New()
	app.Get("/api/recipes", func(c *fiber.Ctx) error {
		p := parsePagination(c, 2)
		return c.JSON(newPage(s, c, p, 5, []int{1, 2}))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/recipes?page=2&limit=2&author=7", nil))
	require.NoError(t, err)
	var page Page[int]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))

	assert.EqualValues(t, 5, page.Count)
	require.NotNil(t, page.Next)
	assert.Equal(t, "https://foodgram.example/api/recipes?author=7&limit=2&page=3", *page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, "https://foodgram.example/api/recipes?author=7&limit=2", *page.Previous)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/recipes?page=3&limit=2", nil))
	require.NoError(t, err)
	page = Page[int]{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Nil(t, page.Next, "offset 4 + 2 results reaches the total")
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", models.NewFieldValidationError("name", "required"), http.StatusBadRequest, models.CodeValidation},
		{"already exists", models.NewAlreadyExistsError("dup"), http.StatusBadRequest, models.CodeAlreadyExists},
		{"self subscription", models.NewSelfSubscriptionError(), http.StatusBadRequest, models.CodeSelfSubscription},
		{"not found", models.NewNotFoundError("Recipe", 1), http.StatusNotFound, models.CodeNotFound},
		{"permission", models.NewPermissionDeniedError("no"), http.StatusForbidden, models.CodePermissionDenied},
		{"unauthorized", models.NewUnauthorizedError("no"), http.StatusUnauthorized, models.CodeUnauthorized},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, models.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return mapServiceError(c, tt.err) })
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var body models.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.code, body.Code)
			assert.Empty(t, body.Details, "internal causes are not leaked")
		})
	}
}

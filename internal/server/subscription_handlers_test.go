package server

import (
	"fmt"
	"net/http"
	"testing"

	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptions_Flow(t *testing.T) {
	env := newTestEnv(t, false)
	authorID, author := env.signUp(t, "author")
	readerID, reader := env.signUp(t, "reader")
	salt := env.ingredient(t, "salt", "g")
	env.createRecipe(t, author, "Soup", salt, 1)
	env.createRecipe(t, author, "Stew", salt, 2)

	subscribe := fmt.Sprintf("/api/users/%d/subscribe/", authorID)

	resp := env.do(t, http.MethodPost, subscribe+"?recipes_limit=1", reader, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	got := decode[AuthorResponse](t, resp)
	assert.Equal(t, authorID, got.ID)
	assert.True(t, got.IsSubscribed)
	assert.Len(t, got.Recipes, 1)
	assert.EqualValues(t, 2, got.RecipesCount)

	resp = env.do(t, http.MethodPost, subscribe, reader, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeAlreadyExists, decode[models.ErrorResponse](t, resp).Code)

	resp = env.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/subscribe/", readerID), reader, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, models.CodeSelfSubscription, decode[models.ErrorResponse](t, resp).Code)

	resp = env.do(t, http.MethodPost, "/api/users/999/subscribe/", reader, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/", authorID), reader, nil)
	assert.True(t, decode[UserResponse](t, resp).IsSubscribed)

	resp = env.do(t, http.MethodGet, "/api/users/subscriptions/", reader, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[Page[AuthorResponse]](t, resp)
	require.EqualValues(t, 1, page.Count)
	assert.Len(t, page.Results[0].Recipes, 2, "no recipes_limit embeds every recipe")
	assert.EqualValues(t, 2, page.Results[0].RecipesCount)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, subscribe, reader, nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, subscribe, reader, nil).StatusCode,
		"removing an absent subscription succeeds")
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/users/999/subscribe/", reader, nil).StatusCode)

	resp = env.do(t, http.MethodGet, "/api/users/subscriptions/", reader, nil)
	assert.Zero(t, decode[Page[AuthorResponse]](t, resp).Count)
}

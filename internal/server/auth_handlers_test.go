package server

import (
	"net/http"
	"testing"

	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_LoginMeLogout(t *testing.T) {
	env := newTestEnv(t, true)
	id, token := env.signUp(t, "vasya")

	resp := env.do(t, http.MethodGet, "/api/users/me/", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[UserResponse](t, resp)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, "vasya", me.Username)
	assert.Nil(t, me.Avatar)

	resp = env.do(t, http.MethodPost, "/api/auth/token/logout/", token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.NotEmpty(t, env.redis.Keys(), "the token id is blacklisted")

	resp = env.do(t, http.MethodGet, "/api/users/me/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuth_BearerSchemeAccepted(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.signUp(t, "bearer.user")

	req := env.do(t, http.MethodGet, "/api/users/me/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, req.StatusCode)

	resp := env.doWithHeader(t, http.MethodGet, "/api/users/me/", "Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_LoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t, false)
	env.signUp(t, "petya")

	for _, body := range []map[string]string{
		{"email": "petya@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": "Qwerty123!"},
		{"email": "", "password": ""},
	} {
		resp := env.do(t, http.MethodPost, "/api/auth/token/login/", "", body)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errBody := decode[models.ErrorResponse](t, resp)
		assert.Equal(t, models.CodeValidation, errBody.Code)
		assert.Contains(t, errBody.Fields, "non_field_errors")
	}
}

func TestAuth_ProtectedRoutesNeedToken(t *testing.T) {
	env := newTestEnv(t, false)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/recipes/"},
		{http.MethodGet, "/api/users/me/"},
		{http.MethodGet, "/api/users/subscriptions/"},
		{http.MethodGet, "/api/recipes/download_shopping_cart/"},
		{http.MethodPost, "/api/recipes/1/favorite/"},
		{http.MethodPost, "/api/auth/token/logout/"},
	} {
		resp := env.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", tc.method, tc.path)
	}

	resp := env.do(t, http.MethodGet, "/api/users/me/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

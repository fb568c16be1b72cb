// Package docs registers the Swagger document served at /api/swagger.
// Regenerate with: swag init -g cmd/server/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "TokenAuth": {
            "description": "Token <auth_token> or Bearer <auth_token>",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "paths": {
        "/auth/token/login/": {"post": {"tags": ["auth"], "summary": "Obtain an auth token", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/auth/token/logout/": {"post": {"tags": ["auth"], "summary": "Revoke the current token", "security": [{"TokenAuth": []}], "responses": {"204": {"description": "No Content"}}}},
        "/users/": {
            "get": {"tags": ["users"], "summary": "List users", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["users"], "summary": "Register a user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/users/me/": {"get": {"tags": ["users"], "summary": "Current user profile", "security": [{"TokenAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/users/me/avatar/": {
            "put": {"tags": ["users"], "summary": "Upload an avatar", "security": [{"TokenAuth": []}], "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}},
            "delete": {"tags": ["users"], "summary": "Remove the avatar", "security": [{"TokenAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/users/set_password/": {"post": {"tags": ["users"], "summary": "Change password", "security": [{"TokenAuth": []}], "responses": {"204": {"description": "No Content"}}}},
        "/users/subscriptions/": {"get": {"tags": ["subscriptions"], "summary": "Authors the current user follows", "security": [{"TokenAuth": []}], "responses": {"200": {"description": "OK"}}}},
        "/users/{id}/": {"get": {"tags": ["users"], "summary": "Get a user profile", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/users/{id}/subscribe/": {
            "post": {"tags": ["subscriptions"], "summary": "Follow an author", "security": [{"TokenAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}},
            "delete": {"tags": ["subscriptions"], "summary": "Unfollow an author", "security": [{"TokenAuth": []}], "responses": {"204": {"description": "No Content"}}}
        },
        "/ingredients/": {"get": {"tags": ["ingredients"], "summary": "List ingredients", "responses": {"200": {"description": "OK"}}}},
        "/ingredients/{id}/": {"get": {"tags": ["ingredients"], "summary": "Get an ingredient", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/recipes/": {
            "get": {"tags": ["recipes"], "summary": "List recipes", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["recipes"], "summary": "Create a recipe", "security": [{"TokenAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/recipes/{id}/": {
            "get": {"tags": ["recipes"], "summary": "Get a recipe", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "patch": {"tags": ["recipes"], "summary": "Update a recipe", "security": [{"TokenAuth": []}], "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}},
            "delete": {"tags": ["recipes"], "summary": "Delete a recipe", "security": [{"TokenAuth": []}], "responses": {"204": {"description": "No Content"}, "403": {"description": "Forbidden"}}}
        },
        "/recipes/{id}/favorite/": {
            "post": {"tags": ["relations"], "summary": "Add to favorites", "security": [{"TokenAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}},
            "delete": {"tags": ["relations"], "summary": "Remove from favorites", "security": [{"TokenAuth": []}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/recipes/{id}/shopping_cart/": {
            "post": {"tags": ["relations"], "summary": "Add to the shopping cart", "security": [{"TokenAuth": []}], "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}},
            "delete": {"tags": ["relations"], "summary": "Remove from the shopping cart", "security": [{"TokenAuth": []}], "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/recipes/{id}/get-link/": {"get": {"tags": ["recipes"], "summary": "Short link for a recipe", "responses": {"200": {"description": "OK"}}}},
        "/recipes/download_shopping_cart/": {"get": {"tags": ["relations"], "summary": "Download the shopping list", "produces": ["text/plain"], "security": [{"TokenAuth": []}], "responses": {"200": {"description": "OK"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Foodgram API",
	Description:      "Recipes, favorites, shopping lists and author subscriptions.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

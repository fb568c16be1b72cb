package models

import "time"

// IngredientTotal is the summed amount of one (name, unit) pair across a cart.
type IngredientTotal struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	TotalAmount     int64  `json:"total_amount"`
}

// CartRecipe names a carted recipe and its author.
type CartRecipe struct {
	Name           string `json:"name"`
	AuthorUsername string `json:"author_username"`
}

// ShoppingList is the aggregated cart for a single user.
type ShoppingList struct {
	Username         string            `json:"username"`
	GeneratedAt      time.Time         `json:"generated_at"`
	IngredientTotals []IngredientTotal `json:"ingredient_totals"`
	Recipes          []CartRecipe      `json:"recipes"`
}

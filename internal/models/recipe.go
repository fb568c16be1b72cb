package models

import (
	"time"
)

// Cooking time bounds in minutes.
const (
	MinCookingTime = 1
	MaxCookingTime = 365 * 24 * 60
)

// Ingredient amount bounds per recipe line.
const (
	MinIngredientAmount = 1
	MaxIngredientAmount = 32000
)

// Recipe is the aggregate root owning its ingredient lines.
type Recipe struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	AuthorID    uint               `gorm:"not null;index" json:"author_id"`
	Author      User               `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Name        string             `gorm:"size:200;not null;index" json:"name"`
	Text        string             `gorm:"type:text;not null" json:"text"`
	Image       string             `gorm:"size:512;not null" json:"image"`
	CookingTime int                `gorm:"not null;check:chk_recipes_cooking_time,cooking_time BETWEEN 1 AND 525600" json:"cooking_time"`
	PubDate     time.Time          `gorm:"autoCreateTime;<-:create;index" json:"pub_date"`
	Lines       []RecipeIngredient `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"ingredients"`

	// IsFavorited indicates whether the viewing user favorited this recipe (computed)
	IsFavorited bool `gorm:"->;-:migration" json:"is_favorited"`
	// IsInShoppingCart indicates whether the recipe is in the viewing user's cart (computed)
	IsInShoppingCart bool `gorm:"->;-:migration" json:"is_in_shopping_cart"`
}

// TableName specifies the table name for GORM
func (Recipe) TableName() string {
	return "recipes"
}

// RecipeIngredient is one (ingredient, amount) line of a recipe.
// An ingredient appears at most once per recipe.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey" json:"-"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient" json:"-"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredient;index" json:"id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE" json:"ingredient"`
	Amount       int        `gorm:"not null;check:chk_recipe_ingredients_amount,amount BETWEEN 1 AND 32000" json:"amount"`
}

// TableName specifies the table name for GORM
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

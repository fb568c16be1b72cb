package models

import (
	"fmt"
	"time"
)

// RelationKind discriminates the user/recipe relations sharing one table.
type RelationKind string

const (
	// RelationFavorite marks a recipe as one of the user's favorites.
	RelationFavorite RelationKind = "favorite"
	// RelationShoppingCart puts a recipe's ingredients on the user's shopping list.
	RelationShoppingCart RelationKind = "shopping_cart"
)

// Valid reports whether k is a known relation kind.
func (k RelationKind) Valid() bool {
	return k == RelationFavorite || k == RelationShoppingCart
}

// Label returns the human-readable collection name used in messages.
func (k RelationKind) Label() string {
	switch k {
	case RelationFavorite:
		return "favorites"
	case RelationShoppingCart:
		return "shopping cart"
	default:
		return string(k)
	}
}

// ParseRelationKind converts a route segment into a RelationKind.
func ParseRelationKind(s string) (RelationKind, error) {
	k := RelationKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown relation kind %q", s)
	}
	return k, nil
}

// RecipeRelation links a user to a recipe. At most one row exists per
// (kind, user, recipe).
type RecipeRelation struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Kind      RelationKind `gorm:"type:varchar(20);not null;uniqueIndex:idx_recipe_relation_unique" json:"kind"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_recipe_relation_unique" json:"user_id"`
	RecipeID  uint         `gorm:"not null;uniqueIndex:idx_recipe_relation_unique;index" json:"recipe_id"`
	CreatedAt time.Time    `json:"created_at"`

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (RecipeRelation) TableName() string {
	return "recipe_relations"
}

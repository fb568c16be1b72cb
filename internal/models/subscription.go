package models

import (
	"time"
)

// Subscription records that User follows Author. Self-subscription is
// rejected by a check constraint.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;check:chk_subscription_not_self,user_id <> author_id" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_subscription_pair;index" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`

	User   User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Author User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}

// AuthorWithRecipes is a user profile enriched with a capped recipe list
// and the author's total recipe count.
type AuthorWithRecipes struct {
	User
	Recipes      []Recipe `json:"recipes"`
	RecipesCount int64    `json:"recipes_count"`
}

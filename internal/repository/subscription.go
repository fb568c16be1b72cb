package repository

import (
	"context"

	"foodgram/internal/models"
	"foodgram/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository stores who follows whom.
type SubscriptionRepository interface {
	Create(ctx context.Context, userID, authorID uint) error
	Delete(ctx context.Context, userID, authorID uint) error
	SubscribedTo(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error)
	ListAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create subscribes userID to authorID. Duplicates report ALREADY_EXISTS and
// the self-subscription check constraint reports SELF_SUBSCRIPTION.
func (r *subscriptionRepository) Create(ctx context.Context, userID, authorID uint) error {
	defer observability.TrackQuery("insert", "subscriptions")()

	sub := &models.Subscription{UserID: userID, AuthorID: authorID}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
			DoNothing: true,
		}).
		Create(sub)
	if res.Error != nil {
		switch {
		case isCheckConstraintError(res.Error):
			return models.NewSelfSubscriptionError()
		case isUniqueConstraintError(res.Error):
			return models.NewAlreadyExistsError("You are already subscribed to this user")
		case isForeignKeyError(res.Error):
			return models.NewNotFoundError("User", authorID)
		default:
			return models.NewInternalError(res.Error)
		}
	}
	if res.RowsAffected == 0 {
		return models.NewAlreadyExistsError("You are already subscribed to this user")
	}
	return nil
}

// Delete removes the subscription; NOT_FOUND when there was none.
func (r *subscriptionRepository) Delete(ctx context.Context, userID, authorID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundMessage("You are not subscribed to this user")
	}
	return nil
}

// SubscribedTo reports, for each of authorIDs, whether userID follows them.
func (r *subscriptionRepository) SubscribedTo(ctx context.Context, userID uint, authorIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(authorIDs))
	if userID == 0 || len(authorIDs) == 0 {
		return out, nil
	}

	var followed []uint
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &followed).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, id := range followed {
		out[id] = true
	}
	return out, nil
}

// ListAuthors returns one page of the users userID follows, ordered by username.
func (r *subscriptionRepository) ListAuthors(ctx context.Context, userID uint, limit, offset int) ([]models.User, int64, error) {
	defer observability.TrackQuery("select", "subscriptions")()

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.User{}).
			Joins("JOIN subscriptions s ON s.author_id = users.id").
			Where("s.user_id = ?", userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var authors []models.User
	if err := base().
		Order("users.username ASC").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&authors).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return authors, total, nil
}

package service

import (
	"context"
	"strings"

	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the body of POST /api/users/.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,max=254,email"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,password"`
}

// SetPasswordInput is the body of POST /api/users/set_password/.
type SetPasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,password"`
}

type UserService struct {
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
	images   *ImageService
	hashCost int
}

func NewUserService(userRepo repository.UserRepository, subRepo repository.SubscriptionRepository, images *ImageService) *UserService {
	return &UserService{
		userRepo: userRepo,
		subRepo:  subRepo,
		images:   images,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register validates the input, checks that the username and email are free
// and stores the user with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	appErr := models.NewValidationError("Validation failed")
	if err := validation.ValidatePersonName(in.FirstName); err != nil {
		appErr.AddField("first_name", "This field may not be blank.")
	}
	if err := validation.ValidatePersonName(in.LastName); err != nil {
		appErr.AddField("last_name", "This field may not be blank.")
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		appErr.AddField("email", "A user with that email already exists.")
	}
	existing, err = s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		appErr.AddField("username", "A user with that username already exists.")
	}
	if appErr.HasFields() {
		return nil, appErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks an email/password pair.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	invalid := models.NewFieldValidationError("non_field_errors", "Unable to log in with provided credentials.")
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalid
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, invalid
	}
	return user, nil
}

// GetProfile returns a user with is_subscribed set for viewerID.
func (s *UserService) GetProfile(ctx context.Context, id, viewerID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	users := []models.User{*user}
	if err := markSubscribed(ctx, s.subRepo, viewerID, users); err != nil {
		return nil, err
	}
	return &users[0], nil
}

// ListUsers returns one page of users ordered by username.
func (s *UserService) ListUsers(ctx context.Context, viewerID uint, limit, offset int) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := markSubscribed(ctx, s.subRepo, viewerID, users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SetPassword replaces the password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID uint, in SetPasswordInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return models.NewFieldValidationError("current_password", "Invalid password.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.hashCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

// SetAvatar stores a new avatar image and drops the previous one.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, payload string) (*models.User, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, models.NewFieldValidationError("avatar", "This field is required.")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key, err := s.images.SaveDataURI(ctx, ImageKindAvatar, payload)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateAvatar(ctx, userID, key); err != nil {
		s.images.Delete(ctx, key)
		return nil, err
	}

	s.images.Delete(ctx, user.Avatar)
	user.Avatar = key
	return user, nil
}

// DeleteAvatar clears the avatar. Clearing an absent avatar succeeds.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Avatar == "" {
		return nil
	}
	if err := s.userRepo.UpdateAvatar(ctx, userID, ""); err != nil {
		return err
	}
	s.images.Delete(ctx, user.Avatar)
	return nil
}

// ImageURL maps a stored image key to its public URL.
func (s *UserService) ImageURL(key string) string {
	if key == "" {
		return ""
	}
	return s.images.URL(key)
}

// markSubscribed sets IsSubscribed on users for an authenticated viewer.
func markSubscribed(ctx context.Context, subs repository.SubscriptionRepository, viewerID uint, users []models.User) error {
	if viewerID == 0 || len(users) == 0 {
		return nil
	}
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	followed, err := subs.SubscribedTo(ctx, viewerID, ids)
	if err != nil {
		return err
	}
	for i := range users {
		users[i].IsSubscribed = followed[users[i].ID]
	}
	return nil
}

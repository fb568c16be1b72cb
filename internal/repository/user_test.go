package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"foodgram/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		expectedUser *models.User
		expectedCode string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username", "email"}).
					AddRow(1, "cook", "cook@example.com")
				mock.ExpectQuery(query).WithArgs(1, 1).WillReturnRows(rows)
			},
			expectedUser: &models.User{ID: 1, Username: "cook", Email: "cook@example.com"},
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(query).WithArgs(99, 1).WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
		{
			name:   "Driver Error",
			userID: 7,
			mockBehavior: func() {
				mock.ExpectQuery(query).WithArgs(7, 1).WillReturnError(errors.New("connection reset"))
			},
			expectedCode: models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedCode != "" {
				assert.True(t, models.IsCode(err, tt.expectedCode), "got %v", err)
			} else if assert.NotNil(t, user) {
				assert.Equal(t, tt.expectedUser.Username, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &models.User{Email: "a@example.com", Username: "alice", FirstName: "A", LastName: "L", Password: "x"}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotZero(t, first.ID)

	dupName := &models.User{Email: "other@example.com", Username: "alice", FirstName: "A", LastName: "L", Password: "x"}
	err := repo.Create(ctx, dupName)
	assert.True(t, models.IsCode(err, models.CodeAlreadyExists), "got %v", err)

	dupEmail := &models.User{Email: "a@example.com", Username: "alice2", FirstName: "A", LastName: "L", Password: "x"}
	err = repo.Create(ctx, dupEmail)
	assert.True(t, models.IsCode(err, models.CodeAlreadyExists), "got %v", err)
}

func TestUserRepository_Lookups(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seeded := seedUser(t, db, "bob")

	u, err := repo.GetByEmail(ctx, "BOB@Example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, seeded.ID, u.ID)

	u, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.NoError(t, err)
	assert.Nil(t, u)

	u, err = repo.GetByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "hash", u.Password)

	u, err = repo.GetByUsername(ctx, "ghost")
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepository_UpdateColumns(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "carol")

	require.NoError(t, repo.UpdateAvatar(ctx, u.ID, "users/avatars/carol.png"))
	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "newhash"))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "users/avatars/carol.png", got.Avatar)
	assert.Equal(t, "newhash", got.Password)

	err = repo.UpdateAvatar(ctx, 9999, "")
	assert.True(t, models.IsCode(err, models.CodeNotFound), "got %v", err)
}

func TestUserRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	for _, name := range []string{"zed", "amy", "mia"} {
		seedUser(t, db, name)
	}

	users, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 2)
	assert.Equal(t, "amy", users[0].Username)
	assert.Equal(t, "mia", users[1].Username)

	users, _, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "zed", users[0].Username)
}

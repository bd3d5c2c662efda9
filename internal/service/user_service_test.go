package service

import (
	"context"
	"testing"

	"tastebase/internal/config"
	"tastebase/internal/database"
	"tastebase/internal/middleware"
	"tastebase/internal/models"
	"tastebase/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.EnsureSchema(db))
	return db
}

func newUserService(t *testing.T) (*UserService, *gorm.DB) {
	db := setupTestDB(t)
	middleware.InitMiddleware(&config.Config{JWTSecret: "test-secret"})
	return NewUserService(repository.NewUserRepository(db)), db
}

func registerUser(t *testing.T, s *UserService, name string) int64 {
	id, err := s.Register(context.Background(), RegisterInput{
		Name: name, Password: "pw", Gender: "female", Birthday: "1990-04-15",
	})
	require.NoError(t, err)
	return id
}

func TestUserService_Register(t *testing.T) {
	s, db := newUserService(t)
	ctx := context.Background()

	id := registerUser(t, s, "alice")
	assert.Equal(t, int64(1), id)

	var user models.User
	require.NoError(t, db.First(&user, "author_id = ?", id).Error)
	assert.Equal(t, "alice", user.AuthorName)
	assert.Equal(t, models.GenderFemale, user.Gender)
	assert.Greater(t, user.Age, 30)

	t.Run("duplicate name", func(t *testing.T) {
		_, err := s.Register(ctx, RegisterInput{
			Name: "alice", Password: "pw", Gender: "female", Birthday: "1990-04-15",
		})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("invalid input", func(t *testing.T) {
		cases := []RegisterInput{
			{Name: "", Password: "pw", Gender: "female", Birthday: "1990-04-15"},
			{Name: "bob", Password: "", Gender: "female", Birthday: "1990-04-15"},
			{Name: "bob", Password: "pw", Gender: "other", Birthday: "1990-04-15"},
			{Name: "bob", Password: "pw", Gender: "male", Birthday: "not-a-date"},
			{Name: "bob", Password: "pw", Gender: "male", Birthday: "2999-01-01"},
		}
		for _, input := range cases {
			_, err := s.Register(ctx, input)
			require.Error(t, err, "input %+v", input)
			assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
		}
	})
}

func TestUserService_Login(t *testing.T) {
	s, db := newUserService(t)
	ctx := context.Background()
	id := registerUser(t, s, "alice")

	token, err := s.Login(ctx, id, "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = s.Login(ctx, id, "wrong")
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	_, err = s.Login(ctx, 404, "pw")
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	require.NoError(t, db.Model(&models.User{}).
		Where("author_id = ?", id).Update("is_deleted", true).Error)
	_, err = s.Login(ctx, id, "pw")
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
}

func TestUserService_DeleteAccount(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")

	err := s.DeleteAccount(ctx, alice, bob)
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	require.NoError(t, s.DeleteAccount(ctx, alice, alice))

	err = s.DeleteAccount(ctx, alice, alice)
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestUserService_ToggleFollow(t *testing.T) {
	s, db := newUserService(t)
	ctx := context.Background()
	alice := registerUser(t, s, "alice")
	bob := registerUser(t, s, "bob")

	_, err := s.ToggleFollow(ctx, alice, alice)
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))

	following, err := s.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, following)

	following, err = s.ToggleFollow(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, db.Model(&models.User{}).
		Where("author_id = ?", bob).Update("is_deleted", true).Error)
	_, err = s.ToggleFollow(ctx, alice, bob)
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestUserService_UpdateProfile(t *testing.T) {
	s, db := newUserService(t)
	ctx := context.Background()
	id := registerUser(t, s, "alice")

	gender := "male"
	age := 33
	require.NoError(t, s.UpdateProfile(ctx, id, UpdateProfileInput{Gender: &gender, Age: &age}))

	var user models.User
	require.NoError(t, db.First(&user, "author_id = ?", id).Error)
	assert.Equal(t, models.GenderMale, user.Gender)
	assert.Equal(t, 33, user.Age)

	bad := -1
	err := s.UpdateProfile(ctx, id, UpdateProfileInput{Age: &bad})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

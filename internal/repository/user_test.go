package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"tastebase/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByName_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"author_id", "author_name"}).AddRow(1, "alice")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE author_name = $1`)).
			WithArgs("alice", 1).
			WillReturnRows(rows)

		user, err := repo.GetByName(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, int64(1), user.AuthorID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE author_name = $1`)).
			WithArgs("ghost", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.GetByName(ctx, "ghost")
		assert.NoError(t, err) // not-found is (nil, nil) here
		assert.Nil(t, user)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("assigns next ID", func(t *testing.T) {
		createUser(t, db, 7, "existing")

		user := &models.User{AuthorName: "alice", Password: "pw"}
		require.NoError(t, repo.Create(ctx, user))
		assert.Equal(t, int64(8), user.AuthorID)
	})

	t.Run("keeps caller-assigned ID", func(t *testing.T) {
		user := &models.User{AuthorID: 42, AuthorName: "bob", Password: "pw"}
		require.NoError(t, repo.Create(ctx, user))
		assert.Equal(t, int64(42), user.AuthorID)
	})

	t.Run("duplicate name", func(t *testing.T) {
		user := &models.User{AuthorName: "alice", Password: "pw"}
		err := repo.Create(ctx, user)
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})
}

func TestUserRepository_GetByID_DerivedCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// Snapshot counts in the row are stale on purpose; the edges win.
	alice := &models.User{AuthorID: 1, AuthorName: "alice", Followers: 99, Following: 99}
	require.NoError(t, db.Create(alice).Error)
	createUser(t, db, 2, "bob")
	createUser(t, db, 3, "carol")

	require.NoError(t, db.Create(&models.UserFollow{FollowerID: 2, FollowingID: 1}).Error)
	require.NoError(t, db.Create(&models.UserFollow{FollowerID: 3, FollowingID: 1}).Error)
	require.NoError(t, db.Create(&models.UserFollow{FollowerID: 1, FollowingID: 2}).Error)

	user, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, user.Followers)
	assert.Equal(t, 1, user.Following)

	_, err = repo.GetByID(ctx, 404)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestUserRepository_ToggleFollow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")
	createUser(t, db, 2, "bob")

	following, err := repo.ToggleFollow(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, following)

	var count int64
	require.NoError(t, db.Model(&models.UserFollow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	following, err = repo.ToggleFollow(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, db.Model(&models.UserFollow{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUserRepository_SoftDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")
	createUser(t, db, 2, "bob")
	require.NoError(t, db.Create(&models.UserFollow{FollowerID: 1, FollowingID: 2}).Error)
	require.NoError(t, db.Create(&models.UserFollow{FollowerID: 2, FollowingID: 1}).Error)

	require.NoError(t, repo.SoftDelete(ctx, 1))

	var user models.User
	require.NoError(t, db.First(&user, "author_id = ?", 1).Error)
	assert.True(t, user.IsDeleted)

	var count int64
	require.NoError(t, db.Model(&models.UserFollow{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUserRepository_Feed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")
	createUser(t, db, 2, "bob")
	createUser(t, db, 3, "carol")
	require.NoError(t, db.Create(&models.UserFollow{FollowerID: 1, FollowingID: 2}).Error)

	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.Recipe{
		RecipeID: 10, AuthorID: 2, Name: "Old Soup", RecipeCategory: "Soup", DatePublished: &older,
	}).Error)
	require.NoError(t, db.Create(&models.Recipe{
		RecipeID: 11, AuthorID: 2, Name: "New Salad", RecipeCategory: "Salad", DatePublished: &newer,
	}).Error)
	// Not followed, must not show up.
	require.NoError(t, db.Create(&models.Recipe{
		RecipeID: 12, AuthorID: 3, Name: "Strangers Dish", DatePublished: &newer,
	}).Error)

	feed, err := repo.Feed(ctx, 1, 1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), feed.Total)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, int64(11), feed.Items[0].RecipeID)
	assert.Equal(t, int64(10), feed.Items[1].RecipeID)

	filtered, err := repo.Feed(ctx, 1, 1, 10, "Soup")
	require.NoError(t, err)
	assert.Equal(t, int64(1), filtered.Total)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, int64(10), filtered.Items[0].RecipeID)
}

func TestUserRepository_HighestFollowRatio(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("no edges", func(t *testing.T) {
		ratio, err := repo.HighestFollowRatio(ctx)
		require.NoError(t, err)
		assert.Nil(t, ratio)
	})

	createUser(t, db, 1, "alice")
	createUser(t, db, 2, "bob")
	createUser(t, db, 3, "carol")

	// alice: 2 followers, follows 1 -> ratio 2.0
	// bob: 1 follower, follows 2 -> ratio 0.5
	// carol: 1 follower, follows 1 -> ratio 1.0
	require.NoError(t, db.Create(&models.UserFollow{FollowerID: 2, FollowingID: 1}).Error)
	require.NoError(t, db.Create(&models.UserFollow{FollowerID: 3, FollowingID: 1}).Error)
	require.NoError(t, db.Create(&models.UserFollow{FollowerID: 1, FollowingID: 2}).Error)
	require.NoError(t, db.Create(&models.UserFollow{FollowerID: 2, FollowingID: 3}).Error)

	ratio, err := repo.HighestFollowRatio(ctx)
	require.NoError(t, err)
	require.NotNil(t, ratio)
	assert.Equal(t, int64(1), ratio.AuthorID)
	assert.Equal(t, "alice", ratio.AuthorName)
	assert.Equal(t, 2.0, ratio.Ratio)
}

func TestUserRepository_Feed_CachedPages(t *testing.T) {
	db := setupTestDB(t)
	setupCache(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")
	createUser(t, db, 2, "bob")
	following, err := repo.ToggleFollow(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, following)
	createRecipe(t, db, 10, 2, "Soup")

	first, err := repo.Feed(ctx, 1, 1, 20, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), first.Total)

	// New recipes surface after the TTL; until then the page is served as
	// cached.
	createRecipe(t, db, 11, 2, "Stew")
	cached, err := repo.Feed(ctx, 1, 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Total)

	// A follow change drops the follower's cached feed at once.
	_, err = repo.ToggleFollow(ctx, 1, 2)
	require.NoError(t, err)
	_, err = repo.ToggleFollow(ctx, 1, 2)
	require.NoError(t, err)

	fresh, err := repo.Feed(ctx, 1, 1, 20, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fresh.Total)
}

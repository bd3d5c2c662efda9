package seed

import (
	"testing"

	"tastebase/internal/database"
	"tastebase/internal/models"

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

func TestFactory_CreateUser(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db)

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.AuthorID)
	assert.NotEmpty(t, user.AuthorName)

	second, err := f.CreateUser(func(u *models.User) { u.Gender = models.GenderMale })
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.AuthorID)
	assert.Equal(t, models.GenderMale, second.Gender)
}

func TestFactory_CreateRecipe(t *testing.T) {
	db := setupTestDB(t)
	f := NewFactory(db)

	author, err := f.CreateUser()
	require.NoError(t, err)
	recipe, err := f.CreateRecipe(author)
	require.NoError(t, err)

	assert.Equal(t, author.AuthorID, recipe.AuthorID)
	assert.NotEmpty(t, recipe.Name)
	assert.NotNil(t, recipe.DatePublished)

	var nutrition models.Nutrition
	require.NoError(t, db.First(&nutrition, "recipe_id = ?", recipe.RecipeID).Error)
	assert.Greater(t, nutrition.Calories, 0.0)

	var ingredientCount int64
	require.NoError(t, db.Model(&models.RecipeIngredient{}).
		Where("recipe_id = ?", recipe.RecipeID).Count(&ingredientCount).Error)
	assert.GreaterOrEqual(t, ingredientCount, int64(3))
}

func TestSeeder_Seed(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Seed(Options{NumUsers: 5, NumRecipes: 8, NumReviews: 15}))

	var userCount, recipeCount, reviewCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Recipe{}).Count(&recipeCount).Error)
	require.NoError(t, db.Model(&models.Review{}).Count(&reviewCount).Error)
	assert.Equal(t, int64(5), userCount)
	assert.Equal(t, int64(8), recipeCount)
	assert.Equal(t, int64(15), reviewCount)

	// No self-follows, ever.
	var selfFollows int64
	require.NoError(t, db.Model(&models.UserFollow{}).
		Where("follower_id = following_id").Count(&selfFollows).Error)
	assert.Equal(t, int64(0), selfFollows)

	// Derived columns match the review rows they summarize.
	var recipes []models.Recipe
	require.NoError(t, db.Find(&recipes).Error)
	for _, recipe := range recipes {
		var rated int64
		require.NoError(t, db.Model(&models.Review{}).
			Where("recipe_id = ? AND rating > 0", recipe.RecipeID).Count(&rated).Error)
		assert.Equal(t, int(rated), recipe.ReviewCount, "recipe %d", recipe.RecipeID)
	}
}

func TestSeeder_ClearAll(t *testing.T) {
	db := setupTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Seed(Options{NumUsers: 3, NumRecipes: 3, NumReviews: 5}))
	require.NoError(t, s.ClearAll())

	for _, model := range []interface{}{
		&models.User{}, &models.Recipe{}, &models.Review{},
		&models.ReviewLike{}, &models.UserFollow{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	}
}

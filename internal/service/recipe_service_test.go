package service

import (
	"context"
	"testing"

	"tastebase/internal/models"
	"tastebase/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRecipeService(t *testing.T) (*RecipeService, *UserService, *gorm.DB) {
	db := setupTestDB(t)
	users := repository.NewUserRepository(db)
	recipes := repository.NewRecipeRepository(db)
	return NewRecipeService(recipes, users), NewUserService(users), db
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		iso     string
		want    int64
		wantErr bool
	}{
		{iso: "PT30M", want: 1800},
		{iso: "PT1H", want: 3600},
		{iso: "PT1H30M", want: 5400},
		{iso: "PT45S", want: 45},
		{iso: "P1D", want: 86400},
		{iso: "P1DT2H", want: 93600},
		{iso: "PT0S", want: 0},
		{iso: "", wantErr: true},
		{iso: "30M", wantErr: true},
		{iso: "PT", want: 0},
		{iso: "PTM", wantErr: true},
		{iso: "P1H", wantErr: true},  // hours need the T marker
		{iso: "PT1D", wantErr: true}, // days before the T marker
		{iso: "PT1X", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseISODuration(tt.iso)
		if tt.wantErr {
			require.Error(t, err, "parseISODuration(%q)", tt.iso)
			continue
		}
		require.NoError(t, err, "parseISODuration(%q)", tt.iso)
		assert.Equal(t, tt.want, got, "parseISODuration(%q)", tt.iso)
	}
}

func TestFormatISODuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "PT0S"},
		{-5, "PT0S"},
		{45, "PT45S"},
		{1800, "PT30M"},
		{3600, "PT1H"},
		{5445, "PT1H30M45S"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatISODuration(tt.seconds))
	}
}

func TestRecipeService_Create(t *testing.T) {
	s, users, db := newRecipeService(t)
	ctx := context.Background()
	alice := registerUser(t, users, "alice")

	id, err := s.Create(ctx, alice, CreateRecipeInput{
		Name:            "  Stew  ",
		RecipeCategory:  "Dinner",
		Calories:        420,
		IngredientParts: []string{"Beef", "Beef", " Carrot "},
	})
	require.NoError(t, err)

	var recipe models.Recipe
	require.NoError(t, db.First(&recipe, "recipe_id = ?", id).Error)
	assert.Equal(t, "Stew", recipe.Name)
	assert.NotNil(t, recipe.DatePublished)

	var parts []string
	require.NoError(t, db.Model(&models.RecipeIngredient{}).
		Where("recipe_id = ?", id).Order("ingredient_part").
		Pluck("ingredient_part", &parts).Error)
	assert.Equal(t, []string{"Beef", "Carrot"}, parts)

	t.Run("name required", func(t *testing.T) {
		_, err := s.Create(ctx, alice, CreateRecipeInput{Name: "   "})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})

	t.Run("no nutrition without calories", func(t *testing.T) {
		id, err := s.Create(ctx, alice, CreateRecipeInput{Name: "Water"})
		require.NoError(t, err)
		var count int64
		require.NoError(t, db.Model(&models.Nutrition{}).
			Where("recipe_id = ?", id).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})
}

func TestRecipeService_Delete_AuthorOnly(t *testing.T) {
	s, users, _ := newRecipeService(t)
	ctx := context.Background()
	alice := registerUser(t, users, "alice")
	bob := registerUser(t, users, "bob")

	id, err := s.Create(ctx, alice, CreateRecipeInput{Name: "Stew"})
	require.NoError(t, err)

	err = s.Delete(ctx, bob, id)
	require.Error(t, err)
	assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))

	require.NoError(t, s.Delete(ctx, alice, id))
}

func TestRecipeService_UpdateTimes(t *testing.T) {
	s, users, db := newRecipeService(t)
	ctx := context.Background()
	alice := registerUser(t, users, "alice")
	bob := registerUser(t, users, "bob")

	id, err := s.Create(ctx, alice, CreateRecipeInput{
		Name: "Stew", CookTime: "PT1H", PrepTime: "PT15M",
	})
	require.NoError(t, err)

	t.Run("author only", func(t *testing.T) {
		cook := "PT30M"
		err := s.UpdateTimes(ctx, bob, id, UpdateTimesInput{CookTime: &cook})
		require.Error(t, err)
		assert.Equal(t, models.CodeUnauthorized, models.ErrorCode(err))
	})

	t.Run("total derives from both sides", func(t *testing.T) {
		cook := "PT30M"
		prep := "PT20M"
		require.NoError(t, s.UpdateTimes(ctx, alice, id, UpdateTimesInput{CookTime: &cook, PrepTime: &prep}))

		var recipe models.Recipe
		require.NoError(t, db.First(&recipe, "recipe_id = ?", id).Error)
		assert.Equal(t, "PT30M", recipe.CookTime)
		assert.Equal(t, "PT20M", recipe.PrepTime)
		assert.Equal(t, "PT50M", recipe.TotalTime)
	})

	t.Run("missing side falls back to stored value", func(t *testing.T) {
		cook := "PT1H"
		require.NoError(t, s.UpdateTimes(ctx, alice, id, UpdateTimesInput{CookTime: &cook}))

		var recipe models.Recipe
		require.NoError(t, db.First(&recipe, "recipe_id = ?", id).Error)
		assert.Equal(t, "PT1H", recipe.CookTime)
		assert.Equal(t, "PT20M", recipe.PrepTime)
		assert.Equal(t, "PT1H20M", recipe.TotalTime)
	})

	t.Run("malformed duration", func(t *testing.T) {
		bad := "90 minutes"
		err := s.UpdateTimes(ctx, alice, id, UpdateTimesInput{CookTime: &bad})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})
}

package repository

import (
	"context"
	"testing"
	"time"

	"tastebase/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeRepository_GetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")
	createRecipe(t, db, 10, 1, "Soup")
	require.NoError(t, db.Create(&models.Nutrition{RecipeID: 10, Calories: 250}).Error)
	require.NoError(t, db.Create(&models.RecipeIngredient{RecipeID: 10, IngredientPart: "Tomato"}).Error)
	require.NoError(t, db.Create(&models.RecipeIngredient{RecipeID: 10, IngredientPart: "Basil"}).Error)

	recipe, err := repo.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "Soup", recipe.Name)
	assert.Equal(t, "alice", recipe.AuthorName)
	require.NotNil(t, recipe.Nutrition)
	assert.Equal(t, 250.0, recipe.Nutrition.Calories)
	assert.Equal(t, []string{"Basil", "Tomato"}, recipe.IngredientParts)

	_, err = repo.GetByID(ctx, 404)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestRecipeRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")
	older := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&models.Recipe{
		RecipeID: 10, AuthorID: 1, Name: "Tomato Soup", RecipeCategory: "Soup",
		DatePublished: &older, AggregatedRating: 4.5,
	}).Error)
	require.NoError(t, db.Create(&models.Recipe{
		RecipeID: 11, AuthorID: 1, Name: "Green Salad", RecipeCategory: "Salad",
		DatePublished: &newer, AggregatedRating: 3.0,
	}).Error)
	require.NoError(t, db.Create(&models.Recipe{
		RecipeID: 12, AuthorID: 1, Name: "Tomato Salad", RecipeCategory: "Salad",
		DatePublished: &newer, AggregatedRating: 5.0,
	}).Error)
	require.NoError(t, db.Create(&models.Nutrition{RecipeID: 10, Calories: 300}).Error)
	require.NoError(t, db.Create(&models.Nutrition{RecipeID: 11, Calories: 100}).Error)
	require.NoError(t, db.Create(&models.Nutrition{RecipeID: 12, Calories: 200}).Error)

	t.Run("keyword is case-insensitive", func(t *testing.T) {
		result, err := repo.Search(ctx, RecipeSearchParams{Keyword: "tomato", Page: 1, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("category filter", func(t *testing.T) {
		result, err := repo.Search(ctx, RecipeSearchParams{Category: "Salad", Page: 1, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("min rating", func(t *testing.T) {
		min := 4.0
		result, err := repo.Search(ctx, RecipeSearchParams{MinRating: &min, Page: 1, Size: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("sort by rating", func(t *testing.T) {
		result, err := repo.Search(ctx, RecipeSearchParams{Page: 1, Size: 10, Sort: "rating_desc"})
		require.NoError(t, err)
		require.Len(t, result.Items, 3)
		assert.Equal(t, int64(12), result.Items[0].RecipeID)
		assert.Equal(t, int64(10), result.Items[1].RecipeID)
	})

	t.Run("sort by calories", func(t *testing.T) {
		result, err := repo.Search(ctx, RecipeSearchParams{Page: 1, Size: 10, Sort: "calories_asc"})
		require.NoError(t, err)
		require.Len(t, result.Items, 3)
		assert.Equal(t, int64(11), result.Items[0].RecipeID)
		assert.Equal(t, int64(12), result.Items[1].RecipeID)
		assert.Equal(t, int64(10), result.Items[2].RecipeID)
	})

	t.Run("pagination", func(t *testing.T) {
		result, err := repo.Search(ctx, RecipeSearchParams{Page: 2, Size: 2, Sort: "rating_desc"})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)
		require.Len(t, result.Items, 1)
	})

	t.Run("invalid page", func(t *testing.T) {
		_, err := repo.Search(ctx, RecipeSearchParams{Page: 0, Size: 10})
		require.Error(t, err)
		assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
	})
}

func TestRecipeRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")
	createRecipe(t, db, 30, 1, "Existing")

	now := time.Now()
	recipe := &models.Recipe{AuthorID: 1, Name: "Stew", DatePublished: &now}
	nutrition := &models.Nutrition{Calories: 400}

	id, err := repo.Create(ctx, recipe, nutrition, []string{"Beef", "Carrot"})
	require.NoError(t, err)
	assert.Equal(t, int64(31), id)

	var storedNutrition models.Nutrition
	require.NoError(t, db.First(&storedNutrition, "recipe_id = ?", id).Error)
	assert.Equal(t, 400.0, storedNutrition.Calories)

	var parts []string
	require.NoError(t, db.Model(&models.RecipeIngredient{}).
		Where("recipe_id = ?", id).Order("ingredient_part").
		Pluck("ingredient_part", &parts).Error)
	assert.Equal(t, []string{"Beef", "Carrot"}, parts)
}

func TestRecipeRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")
	createRecipe(t, db, 10, 1, "Soup")
	require.NoError(t, db.Create(&models.Nutrition{RecipeID: 10, Calories: 100}).Error)
	require.NoError(t, db.Create(&models.RecipeIngredient{RecipeID: 10, IngredientPart: "Tomato"}).Error)
	createReview(t, db, 100, 10, 1, 5)
	require.NoError(t, db.Create(&models.ReviewLike{ReviewID: 100, AuthorID: 1}).Error)

	require.NoError(t, repo.Delete(ctx, 10))

	for _, model := range []interface{}{
		&models.Recipe{}, &models.Nutrition{}, &models.RecipeIngredient{},
		&models.Review{}, &models.ReviewLike{},
	} {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	}

	err := repo.Delete(ctx, 10)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}

func TestRecipeRepository_UpdateTimes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")
	recipe := createRecipe(t, db, 10, 1, "Soup")
	recipe.CookTime = "PT1H"
	require.NoError(t, db.Save(recipe).Error)

	cook := "PT30M"
	total := "PT45M"
	require.NoError(t, repo.UpdateTimes(ctx, 10, &cook, nil, &total))

	var stored models.Recipe
	require.NoError(t, db.First(&stored, "recipe_id = ?", 10).Error)
	assert.Equal(t, "PT30M", stored.CookTime)
	assert.Equal(t, "PT45M", stored.TotalTime)
}

func TestRecipeRepository_ClosestCaloriePair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")

	t.Run("fewer than two rows", func(t *testing.T) {
		pair, err := repo.ClosestCaloriePair(ctx)
		require.NoError(t, err)
		assert.Nil(t, pair)
	})

	createRecipe(t, db, 10, 1, "A")
	createRecipe(t, db, 11, 1, "B")
	createRecipe(t, db, 12, 1, "C")
	require.NoError(t, db.Create(&models.Nutrition{RecipeID: 10, Calories: 100}).Error)
	require.NoError(t, db.Create(&models.Nutrition{RecipeID: 11, Calories: 240}).Error)
	require.NoError(t, db.Create(&models.Nutrition{RecipeID: 12, Calories: 250}).Error)

	pair, err := repo.ClosestCaloriePair(ctx)
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, int64(11), pair.RecipeA)
	assert.Equal(t, int64(12), pair.RecipeB)
	assert.Equal(t, 10.0, pair.Difference)
}

func TestRecipeRepository_Top3MostComplex(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRecipeRepository(db)
	ctx := context.Background()

	createUser(t, db, 1, "alice")
	parts := map[int64][]string{
		10: {"a", "b", "c", "d"},
		11: {"a", "b"},
		12: {"a", "b", "c"},
		13: {"a"},
	}
	for id, ingredients := range parts {
		createRecipe(t, db, id, 1, "Recipe")
		for _, part := range ingredients {
			require.NoError(t, db.Create(&models.RecipeIngredient{RecipeID: id, IngredientPart: part}).Error)
		}
	}

	results, err := repo.Top3MostComplex(ctx)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, int64(10), results[0].RecipeID)
	assert.Equal(t, 4, results[0].IngredientCount)
	assert.Equal(t, int64(12), results[1].RecipeID)
	assert.Equal(t, int64(11), results[2].RecipeID)
}

package repository

import (
	"context"
	"errors"

	"tastebase/internal/cache"
	"tastebase/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeSearchParams filters and orders a recipe search.
type RecipeSearchParams struct {
	Keyword   string
	Category  string
	MinRating *float64
	Page      int
	Size      int
	Sort      string // "rating_desc", "date_desc", "calories_asc", or empty
}

// RecipeRepository defines persistence operations for recipes.
type RecipeRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)
	Search(ctx context.Context, params RecipeSearchParams) (*models.PageResult[models.Recipe], error)
	Create(ctx context.Context, recipe *models.Recipe, nutrition *models.Nutrition, ingredients []string) (int64, error)
	Delete(ctx context.Context, id int64) error
	UpdateTimes(ctx context.Context, id int64, cookTime, prepTime, totalTime *string) error
	ClosestCaloriePair(ctx context.Context) (*models.CaloriePair, error)
	Top3MostComplex(ctx context.Context) ([]models.RecipeComplexity, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

func (r *recipeRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	var recipe models.Recipe
	key := cache.RecipeKey(id)

	err := cache.Aside(ctx, key, &recipe, cache.RecipeTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Nutrition").
			First(&recipe, "recipe_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Recipe", id)
			}
			return models.NewInternalError(err)
		}
		return r.fillViewFields(ctx, &recipe)
	})

	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) fillViewFields(ctx context.Context, recipe *models.Recipe) error {
	var authorName string
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("author_id = ?", recipe.AuthorID).
		Select("author_name").
		Scan(&authorName).Error; err != nil {
		return models.NewInternalError(err)
	}
	recipe.AuthorName = authorName

	var parts []string
	if err := r.db.WithContext(ctx).Model(&models.RecipeIngredient{}).
		Where("recipe_id = ?", recipe.RecipeID).
		Order("ingredient_part").
		Pluck("ingredient_part", &parts).Error; err != nil {
		return models.NewInternalError(err)
	}
	recipe.IngredientParts = parts
	return nil
}

func (r *recipeRepository) Search(ctx context.Context, params RecipeSearchParams) (*models.PageResult[models.Recipe], error) {
	if params.Page < 1 {
		return nil, models.NewValidationError("page must be >= 1")
	}
	if params.Size <= 0 {
		return nil, models.NewValidationError("size must be > 0")
	}

	base := r.db.WithContext(ctx).Model(&models.Recipe{})
	if params.Keyword != "" {
		pattern := "%" + params.Keyword + "%"
		base = base.Where("LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?)", pattern, pattern)
	}
	if params.Category != "" {
		base = base.Where("recipe_category = ?", params.Category)
	}
	if params.MinRating != nil {
		base = base.Where("aggregated_rating >= ?", *params.MinRating)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	q := base.Session(&gorm.Session{}).Preload("Nutrition")
	switch params.Sort {
	case "rating_desc":
		q = q.Order("aggregated_rating DESC").Order("recipe_id DESC")
	case "date_desc":
		q = q.Order("date_published DESC").Order("recipe_id DESC")
	case "calories_asc":
		q = q.Joins("LEFT JOIN nutrition n ON n.recipe_id = recipes.recipe_id").
			Order("n.calories ASC").Order("recipes.recipe_id ASC")
	default:
		q = q.Order("recipe_id DESC")
	}

	var recipes []models.Recipe
	if err := q.Limit(params.Size).Offset((params.Page - 1) * params.Size).Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	for i := range recipes {
		if err := r.fillViewFields(ctx, &recipes[i]); err != nil {
			return nil, err
		}
	}

	return &models.PageResult[models.Recipe]{
		Items: recipes,
		Page:  params.Page,
		Size:  params.Size,
		Total: total,
	}, nil
}

// Create inserts the recipe, its optional nutrition row, and its deduplicated
// ingredients in one transaction. The new recipe ID is assigned inside the
// transaction as max+1, matching the caller-assigned ID scheme of the bulk
// dataset.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe, nutrition *models.Nutrition, ingredients []string) (int64, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if recipe.RecipeID == 0 {
			var maxID int64
			if err := tx.Model(&models.Recipe{}).
				Select("COALESCE(MAX(recipe_id), 0)").Scan(&maxID).Error; err != nil {
				return models.NewInternalError(err)
			}
			recipe.RecipeID = maxID + 1
		}

		if err := tx.Create(recipe).Error; err != nil {
			return models.NewInternalError(err)
		}

		if nutrition != nil && nutrition.Calories > 0 {
			nutrition.RecipeID = recipe.RecipeID
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(nutrition).Error; err != nil {
				return models.NewInternalError(err)
			}
		}

		for _, part := range ingredients {
			row := models.RecipeIngredient{RecipeID: recipe.RecipeID, IngredientPart: part}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return models.NewInternalError(err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return recipe.RecipeID, nil
}

// Delete removes a recipe and everything hanging off it, children first.
func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM review_likes WHERE review_id IN (SELECT review_id FROM reviews WHERE recipe_id = ?)", id,
		).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Nutrition{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		res := tx.Where("recipe_id = ?", id).Delete(&models.Recipe{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Recipe", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateRecipe(ctx, id)
	return nil
}

func (r *recipeRepository) UpdateTimes(ctx context.Context, id int64, cookTime, prepTime, totalTime *string) error {
	updates := map[string]interface{}{}
	if cookTime != nil {
		updates["cook_time"] = *cookTime
	}
	if prepTime != nil {
		updates["prep_time"] = *prepTime
	}
	if totalTime != nil {
		updates["total_time"] = *totalTime
	}
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("recipe_id = ?", id).Updates(updates).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateRecipe(ctx, id)
	return nil
}

// ClosestCaloriePair finds the two distinct recipes with the smallest
// absolute calorie difference. Returns (nil, nil) with fewer than two
// nutrition rows.
func (r *recipeRepository) ClosestCaloriePair(ctx context.Context) (*models.CaloriePair, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Nutrition{}).Count(&count).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if count < 2 {
		return nil, nil
	}

	sql := `
		WITH ranked_pairs AS (
			SELECT n1.recipe_id AS recipe_a,
			       n2.recipe_id AS recipe_b,
			       n1.calories AS calories_a,
			       n2.calories AS calories_b,
			       ABS(n1.calories - n2.calories) AS difference
			FROM nutrition n1
			JOIN nutrition n2 ON n1.recipe_id < n2.recipe_id
		)
		SELECT recipe_a, recipe_b, calories_a, calories_b, difference
		FROM ranked_pairs
		WHERE difference = (SELECT MIN(difference) FROM ranked_pairs)
		ORDER BY recipe_a ASC, recipe_b ASC
		LIMIT 1`

	var pair models.CaloriePair
	rows := r.db.WithContext(ctx).Raw(sql).Scan(&pair)
	if rows.Error != nil {
		return nil, models.NewInternalError(rows.Error)
	}
	if rows.RowsAffected == 0 {
		return nil, nil
	}
	return &pair, nil
}

// Top3MostComplex returns the three recipes with the most ingredients.
func (r *recipeRepository) Top3MostComplex(ctx context.Context) ([]models.RecipeComplexity, error) {
	var results []models.RecipeComplexity
	err := r.db.WithContext(ctx).
		Table("recipes r").
		Select("r.recipe_id, r.name, COUNT(ri.ingredient_part) AS ingredient_count").
		Joins("JOIN recipe_ingredients ri ON r.recipe_id = ri.recipe_id").
		Group("r.recipe_id, r.name").
		Order("ingredient_count DESC").
		Order("r.recipe_id ASC").
		Limit(3).
		Scan(&results).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return results, nil
}

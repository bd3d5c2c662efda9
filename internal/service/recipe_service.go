package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tastebase/internal/importer"
	"tastebase/internal/models"
	"tastebase/internal/repository"
)

// CreateRecipeInput carries the fields needed to publish a recipe.
type CreateRecipeInput struct {
	Name            string   `json:"name"`
	CookTime        string   `json:"cook_time"`
	PrepTime        string   `json:"prep_time"`
	TotalTime       string   `json:"total_time"`
	Description     string   `json:"description"`
	RecipeCategory  string   `json:"recipe_category"`
	RecipeServings  *int     `json:"recipe_servings"`
	RecipeYield     string   `json:"recipe_yield"`
	Calories        float64  `json:"calories"`
	FatContent      *float64 `json:"fat_content"`
	SaturatedFat    *float64 `json:"saturated_fat_content"`
	Cholesterol     *float64 `json:"cholesterol_content"`
	Sodium          *float64 `json:"sodium_content"`
	Carbohydrate    *float64 `json:"carbohydrate_content"`
	Fiber           *float64 `json:"fiber_content"`
	Sugar           *float64 `json:"sugar_content"`
	Protein         *float64 `json:"protein_content"`
	IngredientParts []string `json:"ingredient_parts"`
}

// UpdateTimesInput carries ISO-8601 duration strings; nil fields are left alone.
type UpdateTimesInput struct {
	CookTime *string `json:"cook_time"`
	PrepTime *string `json:"prep_time"`
}

// RecipeService handles recipe lifecycle and read operations.
type RecipeService struct {
	recipes repository.RecipeRepository
	users   repository.UserRepository
}

// NewRecipeService creates a new RecipeService.
func NewRecipeService(recipes repository.RecipeRepository, users repository.UserRepository) *RecipeService {
	return &RecipeService{recipes: recipes, users: users}
}

func (s *RecipeService) requireActive(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Active() {
		return models.NewUnauthorizedError("user is inactive")
	}
	return nil
}

// Get returns one recipe with its nutrition, ingredients, and author name.
func (s *RecipeService) Get(ctx context.Context, recipeID int64) (*models.Recipe, error) {
	return s.recipes.GetByID(ctx, recipeID)
}

// Search returns a page of recipes matching the given filters.
func (s *RecipeService) Search(ctx context.Context, params repository.RecipeSearchParams) (*models.PageResult[models.Recipe], error) {
	return s.recipes.Search(ctx, params)
}

// Create publishes a new recipe owned by the caller and returns its ID.
func (s *RecipeService) Create(ctx context.Context, authorID int64, input CreateRecipeInput) (int64, error) {
	if err := s.requireActive(ctx, authorID); err != nil {
		return 0, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return 0, models.NewValidationError("recipe name is required")
	}

	now := time.Now()
	recipe := models.Recipe{
		AuthorID:       authorID,
		Name:           name,
		CookTime:       input.CookTime,
		PrepTime:       input.PrepTime,
		TotalTime:      input.TotalTime,
		DatePublished:  &now,
		Description:    input.Description,
		RecipeCategory: input.RecipeCategory,
		RecipeServings: input.RecipeServings,
		RecipeYield:    input.RecipeYield,
	}

	var nutrition *models.Nutrition
	if input.Calories > 0 {
		nutrition = &models.Nutrition{
			Calories:            input.Calories,
			FatContent:          input.FatContent,
			SaturatedFatContent: input.SaturatedFat,
			CholesterolContent:  input.Cholesterol,
			SodiumContent:       input.Sodium,
			CarbohydrateContent: input.Carbohydrate,
			FiberContent:        input.Fiber,
			SugarContent:        input.Sugar,
			ProteinContent:      input.Protein,
		}
	}

	return s.recipes.Create(ctx, &recipe, nutrition, importer.DedupeIngredients(input.IngredientParts))
}

// Delete removes a recipe; only its author may do so.
func (s *RecipeService) Delete(ctx context.Context, operatorID, recipeID int64) error {
	if err := s.requireActive(ctx, operatorID); err != nil {
		return err
	}

	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != operatorID {
		return models.NewUnauthorizedError("only the recipe author can delete it")
	}

	return s.recipes.Delete(ctx, recipeID)
}

// UpdateTimes updates the cook/prep times from ISO-8601 durations and derives
// the total time as their sum. Only the recipe author may update them.
func (s *RecipeService) UpdateTimes(ctx context.Context, operatorID, recipeID int64, input UpdateTimesInput) error {
	if err := s.requireActive(ctx, operatorID); err != nil {
		return err
	}

	recipe, err := s.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != operatorID {
		return models.NewUnauthorizedError("only the recipe author can update times")
	}

	var cookSeconds, prepSeconds int64
	if input.CookTime != nil {
		cookSeconds, err = parseISODuration(*input.CookTime)
		if err != nil {
			return err
		}
	}
	if input.PrepTime != nil {
		prepSeconds, err = parseISODuration(*input.PrepTime)
		if err != nil {
			return err
		}
	}

	var total *string
	if input.CookTime != nil || input.PrepTime != nil {
		// Missing side falls back to the recipe's stored value when parseable.
		if input.CookTime == nil {
			if secs, perr := parseISODuration(recipe.CookTime); perr == nil {
				cookSeconds = secs
			}
		}
		if input.PrepTime == nil {
			if secs, perr := parseISODuration(recipe.PrepTime); perr == nil {
				prepSeconds = secs
			}
		}
		iso := formatISODuration(cookSeconds + prepSeconds)
		total = &iso
	}

	return s.recipes.UpdateTimes(ctx, recipeID, input.CookTime, input.PrepTime, total)
}

// ClosestCaloriePair returns the pair of recipes with the nearest calorie
// values, or nil with fewer than two nutrition rows.
func (s *RecipeService) ClosestCaloriePair(ctx context.Context) (*models.CaloriePair, error) {
	return s.recipes.ClosestCaloriePair(ctx)
}

// Top3MostComplex returns the three recipes with the most ingredients.
func (s *RecipeService) Top3MostComplex(ctx context.Context) ([]models.RecipeComplexity, error) {
	return s.recipes.Top3MostComplex(ctx)
}

// parseISODuration parses a subset of ISO-8601 durations (P[nD][T[nH][nM][nS]])
// into seconds. Negative or malformed values are validation errors.
func parseISODuration(iso string) (int64, error) {
	s := strings.TrimSpace(iso)
	if s == "" || s[0] != 'P' {
		return 0, models.NewValidationError("invalid ISO 8601 duration: " + iso)
	}
	s = s[1:]

	var total int64
	inTime := false
	num := ""
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
			num += string(ch)
		case ch == 'T':
			if inTime || num != "" {
				return 0, models.NewValidationError("invalid ISO 8601 duration: " + iso)
			}
			inTime = true
		case ch == 'D' || ch == 'H' || ch == 'M' || ch == 'S':
			if num == "" {
				return 0, models.NewValidationError("invalid ISO 8601 duration: " + iso)
			}
			v, err := strconv.ParseInt(num, 10, 64)
			if err != nil {
				return 0, models.NewValidationError("invalid ISO 8601 duration: " + iso)
			}
			num = ""
			switch ch {
			case 'D':
				if inTime {
					return 0, models.NewValidationError("invalid ISO 8601 duration: " + iso)
				}
				total += v * 86400
			case 'H':
				if !inTime {
					return 0, models.NewValidationError("invalid ISO 8601 duration: " + iso)
				}
				total += v * 3600
			case 'M':
				if !inTime {
					return 0, models.NewValidationError("invalid ISO 8601 duration: " + iso)
				}
				total += v * 60
			case 'S':
				if !inTime {
					return 0, models.NewValidationError("invalid ISO 8601 duration: " + iso)
				}
				total += v
			}
		default:
			return 0, models.NewValidationError("invalid ISO 8601 duration: " + iso)
		}
	}
	if num != "" {
		return 0, models.NewValidationError("invalid ISO 8601 duration: " + iso)
	}
	return total, nil
}

// formatISODuration renders seconds as a compact ISO-8601 duration.
func formatISODuration(seconds int64) string {
	if seconds <= 0 {
		return "PT0S"
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	out := "PT"
	if hours > 0 {
		out += fmt.Sprintf("%dH", hours)
	}
	if minutes > 0 {
		out += fmt.Sprintf("%dM", minutes)
	}
	if secs > 0 {
		out += fmt.Sprintf("%dS", secs)
	}
	return out
}

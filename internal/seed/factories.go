// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"tastebase/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// Identifiers are caller-assigned in this schema, so the factory hands out
// sequential IDs from its own counters.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand

	nextUserID   int64
	nextRecipeID int64
	nextReviewID int64
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:           db,
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		nextUserID:   1,
		nextRecipeID: 1,
		nextReviewID: 1,
	}
}

var recipeCategories = []string{
	"Breakfast", "Lunch", "Dinner", "Dessert", "Snack",
	"Appetizer", "Soup", "Salad", "Beverage", "Side Dish",
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		AuthorID:   f.nextUserID,
		AuthorName: fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(100, 999)),
		Gender:     gofakeit.RandomString([]string{models.GenderMale, models.GenderFemale}),
		Age:        gofakeit.Number(18, 75),
		Password:   "password123",
	}
	f.nextUserID++

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateRecipe constructs and persists a recipe for the given author,
// including a nutrition row and a handful of ingredients.
func (f *Factory) CreateRecipe(author *models.User, overrides ...func(*models.Recipe)) (*models.Recipe, error) {
	published := gofakeit.DateRange(time.Now().AddDate(-2, 0, 0), time.Now())
	cookMins := gofakeit.Number(5, 120)
	prepMins := gofakeit.Number(5, 45)
	servings := gofakeit.Number(1, 12)

	recipe := &models.Recipe{
		RecipeID:       f.nextRecipeID,
		AuthorID:       author.AuthorID,
		Name:           f.dishName(),
		CookTime:       fmt.Sprintf("PT%dM", cookMins),
		PrepTime:       fmt.Sprintf("PT%dM", prepMins),
		TotalTime:      fmt.Sprintf("PT%dM", cookMins+prepMins),
		DatePublished:  &published,
		Description:    gofakeit.Paragraph(1, 3, 8, " "),
		RecipeCategory: gofakeit.RandomString(recipeCategories),
		RecipeServings: &servings,
		RecipeYield:    fmt.Sprintf("%d servings", servings),
	}
	f.nextRecipeID++

	for _, override := range overrides {
		override(recipe)
	}

	if err := f.db.Create(recipe).Error; err != nil {
		return nil, err
	}

	nutrition := &models.Nutrition{
		RecipeID:            recipe.RecipeID,
		Calories:            gofakeit.Float64Range(80, 1200),
		FatContent:          f.macro(0, 60),
		SaturatedFatContent: f.macro(0, 25),
		CholesterolContent:  f.macro(0, 300),
		SodiumContent:       f.macro(0, 2000),
		CarbohydrateContent: f.macro(0, 150),
		FiberContent:        f.macro(0, 20),
		SugarContent:        f.macro(0, 80),
		ProteinContent:      f.macro(0, 80),
	}
	if err := f.db.Create(nutrition).Error; err != nil {
		return nil, err
	}

	for _, part := range f.ingredientParts() {
		row := &models.RecipeIngredient{RecipeID: recipe.RecipeID, IngredientPart: part}
		if err := f.db.Create(row).Error; err != nil {
			return nil, err
		}
	}

	return recipe, nil
}

// CreateReview constructs and persists a review from `author` on `recipe`.
// Derived recipe columns are NOT refreshed here; the seeder sweeps aggregates
// once all reviews exist.
func (f *Factory) CreateReview(author *models.User, recipe *models.Recipe, overrides ...func(*models.Review)) (*models.Review, error) {
	submitted := gofakeit.DateRange(time.Now().AddDate(-1, 0, 0), time.Now())
	review := &models.Review{
		ReviewID:      f.nextReviewID,
		RecipeID:      recipe.RecipeID,
		AuthorID:      author.AuthorID,
		Rating:        gofakeit.Number(1, 5),
		Body:          gofakeit.Sentence(12),
		DateSubmitted: submitted,
		DateModified:  submitted,
	}
	f.nextReviewID++

	for _, override := range overrides {
		override(review)
	}

	if err := f.db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// CreateFollow persists a directed follow edge between two users.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	edge := &models.UserFollow{
		FollowerID:  follower.AuthorID,
		FollowingID: following.AuthorID,
	}
	return f.db.Create(edge).Error
}

// CreateLike persists a like from `user` on `review`.
func (f *Factory) CreateLike(user *models.User, review *models.Review) error {
	like := &models.ReviewLike{
		ReviewID: review.ReviewID,
		AuthorID: user.AuthorID,
	}
	return f.db.Create(like).Error
}

func (f *Factory) macro(lo, hi float64) *float64 {
	v := gofakeit.Float64Range(lo, hi)
	return &v
}

func (f *Factory) dishName() string {
	return gofakeit.RandomString([]string{
		gofakeit.Dinner(), gofakeit.Lunch(), gofakeit.Breakfast(), gofakeit.Dessert(),
	})
}

func (f *Factory) ingredientParts() []string {
	count := f.rand.Intn(8) + 3
	seen := make(map[string]bool, count)
	parts := make([]string, 0, count)
	for len(parts) < count {
		part := gofakeit.RandomString([]string{
			gofakeit.Vegetable(), gofakeit.Fruit(), gofakeit.Snack(),
		})
		if seen[part] {
			continue
		}
		seen[part] = true
		parts = append(parts, part)
	}
	return parts
}

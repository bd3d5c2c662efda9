package service

import (
	"context"
	"time"

	"tastebase/internal/models"
	"tastebase/internal/repository"
)

// ReviewService handles review mutations. Every rating-affecting mutation
// leaves the owning recipe's aggregate already refreshed when it returns.
type ReviewService struct {
	reviews    repository.ReviewRepository
	recipes    repository.RecipeRepository
	users      repository.UserRepository
	aggregates *repository.AggregateRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviews repository.ReviewRepository,
	recipes repository.RecipeRepository,
	users repository.UserRepository,
	aggregates *repository.AggregateRepository,
) *ReviewService {
	return &ReviewService{reviews: reviews, recipes: recipes, users: users, aggregates: aggregates}
}

func (s *ReviewService) requireActive(ctx context.Context, userID int64) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.Active() {
		return models.NewUnauthorizedError("user is inactive")
	}
	return nil
}

// Add creates a review for a recipe and returns the new review ID along with
// the recipe carrying its refreshed aggregate.
func (s *ReviewService) Add(ctx context.Context, authorID, recipeID int64, rating int, body string) (int64, *models.Recipe, error) {
	if err := s.requireActive(ctx, authorID); err != nil {
		return 0, nil, err
	}
	if rating < 1 || rating > 5 {
		return 0, nil, models.NewValidationError("rating must be between 1 and 5")
	}

	if _, err := s.recipes.GetByID(ctx, recipeID); err != nil {
		return 0, nil, err
	}

	now := time.Now()
	review := models.Review{
		RecipeID:      recipeID,
		AuthorID:      authorID,
		Rating:        rating,
		Body:          body,
		DateSubmitted: now,
		DateModified:  now,
	}
	recipe, err := s.reviews.Create(ctx, &review)
	if err != nil {
		return 0, nil, err
	}
	return review.ReviewID, recipe, nil
}

// Edit updates a review's rating and body; only its author may do so. The
// review must belong to the given recipe.
func (s *ReviewService) Edit(ctx context.Context, operatorID, recipeID, reviewID int64, rating int, body string) (*models.Recipe, error) {
	if err := s.requireActive(ctx, operatorID); err != nil {
		return nil, err
	}
	if rating < 1 || rating > 5 {
		return nil, models.NewValidationError("rating must be between 1 and 5")
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.RecipeID != recipeID {
		return nil, models.NewNotFoundError("Review", reviewID)
	}
	if review.AuthorID != operatorID {
		return nil, models.NewUnauthorizedError("only the review author can edit it")
	}

	return s.reviews.Update(ctx, reviewID, rating, body)
}

// Delete removes a review and its likes; only its author may do so.
func (s *ReviewService) Delete(ctx context.Context, operatorID, recipeID, reviewID int64) (*models.Recipe, error) {
	if err := s.requireActive(ctx, operatorID); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.RecipeID != recipeID {
		return nil, models.NewNotFoundError("Review", reviewID)
	}
	if review.AuthorID != operatorID {
		return nil, models.NewUnauthorizedError("only the review author can delete it")
	}

	return s.reviews.Delete(ctx, reviewID)
}

// Like records a like on someone else's review and returns the like count.
// Liking twice is a no-op.
func (s *ReviewService) Like(ctx context.Context, userID, reviewID int64) (int64, error) {
	if err := s.requireActive(ctx, userID); err != nil {
		return 0, err
	}

	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return 0, err
	}
	if review.AuthorID == userID {
		return 0, models.NewValidationError("cannot like your own review")
	}

	return s.reviews.Like(ctx, reviewID, userID)
}

// Unlike removes the caller's like, if any, and returns the like count.
func (s *ReviewService) Unlike(ctx context.Context, userID, reviewID int64) (int64, error) {
	if err := s.requireActive(ctx, userID); err != nil {
		return 0, err
	}

	if _, err := s.reviews.GetByID(ctx, reviewID); err != nil {
		return 0, err
	}

	return s.reviews.Unlike(ctx, reviewID, userID)
}

// List returns a page of a recipe's reviews with author names and like lists.
func (s *ReviewService) List(ctx context.Context, recipeID int64, page, size int, sort string) (*models.PageResult[models.Review], error) {
	return s.reviews.ListByRecipe(ctx, recipeID, page, size, sort)
}

// Recompute refreshes a recipe's aggregate on demand and returns the
// refreshed recipe.
func (s *ReviewService) Recompute(ctx context.Context, recipeID int64) (*models.Recipe, error) {
	return s.aggregates.Recompute(ctx, recipeID)
}

package repository

import (
	"context"
	"errors"

	"tastebase/internal/cache"
	"tastebase/internal/middleware"
	"tastebase/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReviewRepository defines persistence operations for reviews and likes.
// Every review mutation recomputes the owning recipe's aggregate inside the
// same transaction, so a review change and its aggregate update are never
// separately visible.
type ReviewRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	Create(ctx context.Context, review *models.Review) (*models.Recipe, error)
	Update(ctx context.Context, reviewID int64, rating int, body string) (*models.Recipe, error)
	Delete(ctx context.Context, reviewID int64) (*models.Recipe, error)
	Like(ctx context.Context, reviewID, userID int64) (int64, error)
	Unlike(ctx context.Context, reviewID, userID int64) (int64, error)
	ListByRecipe(ctx context.Context, recipeID int64, page, size int, sort string) (*models.PageResult[models.Review], error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository returns a new ReviewRepository implementation.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "review_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Review", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &review, nil
}

func (r *reviewRepository) Create(ctx context.Context, review *models.Review) (*models.Recipe, error) {
	var recipe *models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if review.ReviewID == 0 {
			var maxID int64
			if err := tx.Model(&models.Review{}).
				Select("COALESCE(MAX(review_id), 0)").Scan(&maxID).Error; err != nil {
				return models.NewInternalError(err)
			}
			review.ReviewID = maxID + 1
		}
		if err := tx.Create(review).Error; err != nil {
			return models.NewInternalError(err)
		}

		var txErr error
		recipe, txErr = RecomputeTx(tx, review.RecipeID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	middleware.AggregateRecomputes.WithLabelValues("mutation").Inc()
	cache.InvalidateRecipe(ctx, review.RecipeID)
	return recipe, nil
}

func (r *reviewRepository) Update(ctx context.Context, reviewID int64, rating int, body string) (*models.Recipe, error) {
	var recipe *models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "review_id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Review", reviewID)
			}
			return models.NewInternalError(err)
		}

		if err := tx.Model(&models.Review{}).
			Where("review_id = ?", reviewID).
			Updates(map[string]interface{}{
				"rating":        rating,
				"review":        body,
				"date_modified": tx.NowFunc(),
			}).Error; err != nil {
			return models.NewInternalError(err)
		}

		var txErr error
		recipe, txErr = RecomputeTx(tx, review.RecipeID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	middleware.AggregateRecomputes.WithLabelValues("mutation").Inc()
	cache.InvalidateRecipe(ctx, recipe.RecipeID)
	return recipe, nil
}

func (r *reviewRepository) Delete(ctx context.Context, reviewID int64) (*models.Recipe, error) {
	var recipe *models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "review_id = ?", reviewID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Review", reviewID)
			}
			return models.NewInternalError(err)
		}

		// Likes anchor to the review row, so they go first.
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.ReviewLike{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("review_id = ?", reviewID).Delete(&models.Review{}).Error; err != nil {
			return models.NewInternalError(err)
		}

		var txErr error
		recipe, txErr = RecomputeTx(tx, review.RecipeID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	middleware.AggregateRecomputes.WithLabelValues("mutation").Inc()
	cache.InvalidateRecipe(ctx, recipe.RecipeID)
	return recipe, nil
}

// Like records a like; liking twice is a no-op. Returns the like count.
func (r *reviewRepository) Like(ctx context.Context, reviewID, userID int64) (int64, error) {
	like := models.ReviewLike{ReviewID: reviewID, AuthorID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&like).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return r.likeCount(ctx, reviewID)
}

// Unlike removes a like if present. Returns the like count.
func (r *reviewRepository) Unlike(ctx context.Context, reviewID, userID int64) (int64, error) {
	if err := r.db.WithContext(ctx).
		Where("review_id = ? AND author_id = ?", reviewID, userID).
		Delete(&models.ReviewLike{}).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return r.likeCount(ctx, reviewID)
}

func (r *reviewRepository) likeCount(ctx context.Context, reviewID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ReviewLike{}).
		Where("review_id = ?", reviewID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// ListByRecipe returns one page of a recipe's reviews. Pages are served
// through the cache; every review mutation on the recipe drops them.
func (r *reviewRepository) ListByRecipe(ctx context.Context, recipeID int64, page, size int, sort string) (*models.PageResult[models.Review], error) {
	if page < 1 {
		return nil, models.NewValidationError("page must be >= 1")
	}
	if size <= 0 {
		return nil, models.NewValidationError("size must be > 0")
	}

	key := cache.RecipeReviewsKey(recipeID, page, size, sort)

	var result models.PageResult[models.Review]
	err := cache.Aside(ctx, key, &result, cache.ReviewListTTL, func() error {
		fetched, err := r.listByRecipe(ctx, recipeID, page, size, sort)
		if err != nil {
			return err
		}
		result = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *reviewRepository) listByRecipe(ctx context.Context, recipeID int64, page, size int, sort string) (*models.PageResult[models.Review], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("recipe_id = ?", recipeID).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	q := r.db.WithContext(ctx).Model(&models.Review{}).
		Where("reviews.recipe_id = ?", recipeID)

	if sort == "likes_desc" {
		q = q.Joins("LEFT JOIN review_likes rl ON rl.review_id = reviews.review_id").
			Group("reviews.review_id").
			Order("COUNT(rl.author_id) DESC").
			Order("reviews.date_modified DESC")
	} else {
		q = q.Order("reviews.date_modified DESC")
	}

	var reviews []models.Review
	if err := q.Limit(size).Offset((page - 1) * size).Find(&reviews).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	for i := range reviews {
		var authorName string
		if err := r.db.WithContext(ctx).Model(&models.User{}).
			Where("author_id = ?", reviews[i].AuthorID).
			Select("author_name").
			Scan(&authorName).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		reviews[i].AuthorName = authorName

		var likes []int64
		if err := r.db.WithContext(ctx).Model(&models.ReviewLike{}).
			Where("review_id = ?", reviews[i].ReviewID).
			Pluck("author_id", &likes).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		reviews[i].Likes = likes
	}

	return &models.PageResult[models.Review]{
		Items: reviews,
		Page:  page,
		Size:  size,
		Total: total,
	}, nil
}

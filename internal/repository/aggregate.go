// Package repository contains the data access layer.
package repository

import (
	"context"
	"errors"
	"math"

	"tastebase/internal/cache"
	"tastebase/internal/middleware"
	"tastebase/internal/models"
	"tastebase/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AggregateRepository keeps each recipe's AggregatedRating and ReviewCount
// equal to the defined function of its review rows: the count and the
// two-decimal round-half-up mean of ratings strictly greater than zero.
type AggregateRepository struct {
	db *gorm.DB
}

// NewAggregateRepository creates a new aggregate repository.
func NewAggregateRepository(db *gorm.DB) *AggregateRepository {
	return &AggregateRepository{db: db}
}

// Recompute refreshes the derived fields for one recipe in its own
// transaction and returns the refreshed recipe. The cached recipe view is
// dropped afterwards so reads never serve the pre-recompute aggregate.
func (r *AggregateRepository) Recompute(ctx context.Context, recipeID int64) (*models.Recipe, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "RecomputeAggregate", "recipes")
	defer span.End()

	var recipe *models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		recipe, txErr = RecomputeTx(tx, recipeID)
		return txErr
	})
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		return nil, err
	}

	middleware.AggregateRecomputes.WithLabelValues("manual").Inc()
	cache.InvalidateRecipe(ctx, recipeID)
	return recipe, nil
}

// RecomputeTx refreshes the derived fields inside an existing transaction.
// The recipe row is locked for the duration on backends that support row
// locks, so concurrent recomputes for the same recipe serialize; recomputes
// for different recipes never contend.
func RecomputeTx(tx *gorm.DB, recipeID int64) (*models.Recipe, error) {
	var recipe models.Recipe

	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&recipe, "recipe_id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Recipe", recipeID)
		}
		return nil, models.NewUnavailableError(err)
	}

	var ratings []int
	if err := tx.Model(&models.Review{}).
		Where("recipe_id = ? AND rating > 0", recipeID).
		Pluck("rating", &ratings).Error; err != nil {
		return nil, models.NewUnavailableError(err)
	}

	count := len(ratings)
	aggregated := 0.0
	if count > 0 {
		sum := 0
		for _, rating := range ratings {
			sum += rating
		}
		aggregated = RoundHalfUp2(float64(sum) / float64(count))
	}

	if err := tx.Model(&models.Recipe{}).
		Where("recipe_id = ?", recipeID).
		Updates(map[string]interface{}{
			"aggregated_rating": aggregated,
			"review_count":      count,
		}).Error; err != nil {
		return nil, models.NewUnavailableError(err)
	}

	recipe.AggregatedRating = aggregated
	recipe.ReviewCount = count
	return &recipe, nil
}

// RoundHalfUp2 rounds to two decimal places with ties going up, matching the
// numeric policy of the stored aggregate.
func RoundHalfUp2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}

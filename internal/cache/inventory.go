package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	RecipeKeyPrefix     = "recipe:%d"
	RecipeReviewsPrefix = "recipe:%d:reviews"
	UserFeedPrefix      = "user:%d:feed"
)

const (
	UserTTL       = 5 * time.Minute
	RecipeTTL     = 30 * time.Minute
	ReviewListTTL = 2 * time.Minute
	FeedTTL       = 2 * time.Minute
)

func UserKey(userID int64) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func RecipeKey(recipeID int64) string {
	return fmt.Sprintf(RecipeKeyPrefix, recipeID)
}

// RecipeReviewsKey names one page of a recipe's review list. The paging
// parameters are part of the key; invalidation goes through the prefix.
func RecipeReviewsKey(recipeID int64, page, size int, sort string) string {
	return fmt.Sprintf(RecipeReviewsPrefix+":%d:%d:%s", recipeID, page, size, sort)
}

// UserFeedKey names one page of a user's follow feed.
func UserFeedKey(userID int64, page, size int, category string) string {
	return fmt.Sprintf(UserFeedPrefix+":%d:%d:%s", userID, page, size, category)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePrefix removes every key under prefix. Paged entries (review
// lists, feeds) carry their paging parameters in the key, so dropping them
// all is the only safe invalidation.
func InvalidatePrefix(ctx context.Context, prefix string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

func InvalidateUser(ctx context.Context, userID int64) {
	Invalidate(ctx, UserKey(userID))
	InvalidatePrefix(ctx, fmt.Sprintf(UserFeedPrefix, userID))
}

// InvalidateRecipe drops the recipe and every cached page of its review
// list. Called after any mutation that touches the recipe row or its
// aggregate fields.
func InvalidateRecipe(ctx context.Context, recipeID int64) {
	Invalidate(ctx, RecipeKey(recipeID))
	InvalidatePrefix(ctx, fmt.Sprintf(RecipeReviewsPrefix, recipeID))
}

// FlushAll clears the entire cache. Used after a bulk import replaces the
// dataset wholesale.
func FlushAll(ctx context.Context) {
	if client != nil {
		client.FlushAll(ctx)
	}
}

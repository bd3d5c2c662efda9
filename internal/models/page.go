package models

import "time"

// PageResult is one page of items plus paging metadata.
type PageResult[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

// FeedItem is one entry in a user's follow feed.
type FeedItem struct {
	RecipeID         int64      `json:"recipe_id"`
	Name             string     `json:"name"`
	AuthorID         int64      `json:"author_id"`
	AuthorName       string     `json:"author_name"`
	DatePublished    *time.Time `json:"date_published"`
	AggregatedRating float64    `json:"aggregated_rating"`
	ReviewCount      int        `json:"review_count"`
}

// CaloriePair is the pair of distinct recipes whose calorie values are
// closest to each other.
type CaloriePair struct {
	RecipeA    int64   `json:"recipe_a"`
	RecipeB    int64   `json:"recipe_b"`
	CaloriesA  float64 `json:"calories_a"`
	CaloriesB  float64 `json:"calories_b"`
	Difference float64 `json:"difference"`
}

// RecipeComplexity ranks a recipe by its distinct ingredient count.
type RecipeComplexity struct {
	RecipeID        int64  `json:"recipe_id"`
	Name            string `json:"name"`
	IngredientCount int    `json:"ingredient_count"`
}

// FollowRatio is a user's follower-to-following ratio.
type FollowRatio struct {
	AuthorID   int64   `json:"author_id"`
	AuthorName string  `json:"author_name"`
	Ratio      float64 `json:"ratio"`
}

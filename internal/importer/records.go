// Package importer implements bulk dataset ingestion: normalization of raw
// denormalized records, dependency-ordered batch loading, and the post-load
// aggregate sweep.
package importer

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// OptionalNumber is a numeric field that may arrive as a JSON number, a
// numeric string, or be absent entirely. It is resolved once during
// normalization; consumers never re-interpret the raw form.
type OptionalNumber struct {
	Valid bool
	Value float64
}

// UnmarshalJSON accepts numbers, numeric strings, and null.
func (n *OptionalNumber) UnmarshalJSON(b []byte) error {
	n.Valid = false
	n.Value = 0

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			// Free-form text like "4-6 servings" is treated as absent.
			return nil
		}
		n.Valid = true
		n.Value = v
		return nil
	}

	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	n.Valid = true
	n.Value = v
	return nil
}

// MarshalJSON renders the number, or null when absent.
func (n OptionalNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Int returns the value rounded down to an int and whether it was present.
func (n OptionalNumber) Int() (int, bool) {
	if !n.Valid {
		return 0, false
	}
	return int(n.Value), true
}

// RawUserRecord is one denormalized user entry from the external dataset.
// The embedded follower/following ID lists are flattened into directed
// follow edges during normalization.
type RawUserRecord struct {
	AuthorID       int64   `json:"authorId"`
	AuthorName     string  `json:"authorName"`
	Gender         string  `json:"gender"`
	Age            int     `json:"age"`
	Followers      int     `json:"followers"`
	Following      int     `json:"following"`
	Password       string  `json:"password"`
	IsDeleted      bool    `json:"isDeleted"`
	FollowerUsers  []int64 `json:"followerUsers"`
	FollowingUsers []int64 `json:"followingUsers"`
}

// RawRecipeRecord is one denormalized recipe entry, carrying embedded
// nutrition fields and an ingredient list that normalization splits into
// their own tables.
type RawRecipeRecord struct {
	RecipeID              int64          `json:"recipeId"`
	Name                  string         `json:"name"`
	AuthorID              int64          `json:"authorId"`
	CookTime              string         `json:"cookTime"`
	PrepTime              string         `json:"prepTime"`
	TotalTime             string         `json:"totalTime"`
	DatePublished         *time.Time     `json:"datePublished"`
	Description           string         `json:"description"`
	RecipeCategory        string         `json:"recipeCategory"`
	Calories              OptionalNumber `json:"calories"`
	FatContent            OptionalNumber `json:"fatContent"`
	SaturatedFatContent   OptionalNumber `json:"saturatedFatContent"`
	CholesterolContent    OptionalNumber `json:"cholesterolContent"`
	SodiumContent         OptionalNumber `json:"sodiumContent"`
	CarbohydrateContent   OptionalNumber `json:"carbohydrateContent"`
	FiberContent          OptionalNumber `json:"fiberContent"`
	SugarContent          OptionalNumber `json:"sugarContent"`
	ProteinContent        OptionalNumber `json:"proteinContent"`
	RecipeServings        OptionalNumber `json:"recipeServings"`
	RecipeYield           string         `json:"recipeYield"`
	RecipeIngredientParts []string       `json:"recipeIngredientParts"`
}

// RawReviewRecord is one denormalized review entry. The embedded likes list
// becomes review_likes rows during normalization.
type RawReviewRecord struct {
	ReviewID      int64          `json:"reviewId"`
	RecipeID      int64          `json:"recipeId"`
	AuthorID      int64          `json:"authorId"`
	Rating        OptionalNumber `json:"rating"`
	Review        string         `json:"review"`
	DateSubmitted time.Time      `json:"dateSubmitted"`
	DateModified  time.Time      `json:"dateModified"`
	Likes         []int64        `json:"likes"`
}

// Dataset bundles the three raw input collections for one import invocation.
type Dataset struct {
	Users   []RawUserRecord   `json:"users"`
	Recipes []RawRecipeRecord `json:"recipes"`
	Reviews []RawReviewRecord `json:"reviews"`
}

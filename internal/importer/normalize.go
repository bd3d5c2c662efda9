package importer

import (
	"log/slog"
	"math"
	"strings"

	"tastebase/internal/middleware"
	"tastebase/internal/models"
)

// RowSet holds the typed, normalized rows for every table the bulk loader
// writes, in the shape the loader persists them.
type RowSet struct {
	Users       []models.User
	Recipes     []models.Recipe
	Nutrition   []models.Nutrition
	Ingredients []models.RecipeIngredient
	Reviews     []models.Review
	ReviewLikes []models.ReviewLike
	Follows     []models.UserFollow
}

// Normalizer splits raw denormalized records into normalized row sets.
// Malformed rows are skipped with a warning; normalization never fails.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer returns a Normalizer logging skips to the given logger.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = middleware.Logger
	}
	return &Normalizer{logger: logger}
}

// Normalize converts the three raw collections into typed row sets.
func (n *Normalizer) Normalize(users []RawUserRecord, recipes []RawRecipeRecord, reviews []RawReviewRecord) *RowSet {
	rs := &RowSet{}
	n.normalizeUsers(rs, users)
	n.normalizeRecipes(rs, recipes)
	n.normalizeReviews(rs, reviews)
	return rs
}

func (n *Normalizer) normalizeUsers(rs *RowSet, users []RawUserRecord) {
	for _, u := range users {
		if u.AuthorID <= 0 {
			n.skip("users", "bad_id", slog.Int64("author_id", u.AuthorID))
			continue
		}
		if strings.TrimSpace(u.AuthorName) == "" {
			n.skip("users", "missing_name", slog.Int64("author_id", u.AuthorID))
			continue
		}

		rs.Users = append(rs.Users, models.User{
			AuthorID:   u.AuthorID,
			AuthorName: u.AuthorName,
			Gender:     u.Gender,
			Age:        u.Age,
			Password:   u.Password,
			IsDeleted:  u.IsDeleted,
			Followers:  u.Followers,
			Following:  u.Following,
		})

		// Both embedded lists become directed edges with self-loops removed.
		// Duplicate edges across the two lists collapse on the composite
		// primary key at write time.
		for _, fid := range u.FollowerUsers {
			if fid == u.AuthorID || fid <= 0 {
				continue
			}
			rs.Follows = append(rs.Follows, models.UserFollow{FollowerID: fid, FollowingID: u.AuthorID})
		}
		for _, fid := range u.FollowingUsers {
			if fid == u.AuthorID || fid <= 0 {
				continue
			}
			rs.Follows = append(rs.Follows, models.UserFollow{FollowerID: u.AuthorID, FollowingID: fid})
		}
	}
}

func (n *Normalizer) normalizeRecipes(rs *RowSet, recipes []RawRecipeRecord) {
	for _, r := range recipes {
		if r.RecipeID <= 0 {
			n.skip("recipes", "bad_id", slog.Int64("recipe_id", r.RecipeID))
			continue
		}
		if r.AuthorID <= 0 {
			n.skip("recipes", "bad_author", slog.Int64("recipe_id", r.RecipeID))
			continue
		}
		if strings.TrimSpace(r.Name) == "" {
			n.skip("recipes", "missing_name", slog.Int64("recipe_id", r.RecipeID))
			continue
		}

		recipe := models.Recipe{
			RecipeID:       r.RecipeID,
			AuthorID:       r.AuthorID,
			Name:           r.Name,
			CookTime:       r.CookTime,
			PrepTime:       r.PrepTime,
			TotalTime:      r.TotalTime,
			DatePublished:  r.DatePublished,
			Description:    r.Description,
			RecipeCategory: r.RecipeCategory,
			RecipeYield:    r.RecipeYield,
		}
		if v, ok := r.RecipeServings.Int(); ok && v > 0 {
			recipe.RecipeServings = &v
		}
		rs.Recipes = append(rs.Recipes, recipe)

		// A nutrition row exists only for strictly positive calories.
		if r.Calories.Valid && r.Calories.Value > 0 {
			rs.Nutrition = append(rs.Nutrition, models.Nutrition{
				RecipeID:            r.RecipeID,
				Calories:            r.Calories.Value,
				FatContent:          optFloat(r.FatContent),
				SaturatedFatContent: optFloat(r.SaturatedFatContent),
				CholesterolContent:  optFloat(r.CholesterolContent),
				SodiumContent:       optFloat(r.SodiumContent),
				CarbohydrateContent: optFloat(r.CarbohydrateContent),
				FiberContent:        optFloat(r.FiberContent),
				SugarContent:        optFloat(r.SugarContent),
				ProteinContent:      optFloat(r.ProteinContent),
			})
		}

		for _, part := range DedupeIngredients(r.RecipeIngredientParts) {
			rs.Ingredients = append(rs.Ingredients, models.RecipeIngredient{
				RecipeID:       r.RecipeID,
				IngredientPart: part,
			})
		}
	}
}

func (n *Normalizer) normalizeReviews(rs *RowSet, reviews []RawReviewRecord) {
	for _, r := range reviews {
		if r.ReviewID <= 0 {
			n.skip("reviews", "bad_id", slog.Int64("review_id", r.ReviewID))
			continue
		}
		if r.RecipeID <= 0 || r.AuthorID <= 0 {
			n.skip("reviews", "bad_reference", slog.Int64("review_id", r.ReviewID))
			continue
		}

		rs.Reviews = append(rs.Reviews, models.Review{
			ReviewID:      r.ReviewID,
			RecipeID:      r.RecipeID,
			AuthorID:      r.AuthorID,
			Rating:        ClampRating(r.Rating.Value),
			Body:          r.Review,
			DateSubmitted: r.DateSubmitted,
			DateModified:  r.DateModified,
		})

		for _, uid := range r.Likes {
			if uid <= 0 {
				continue
			}
			rs.ReviewLikes = append(rs.ReviewLikes, models.ReviewLike{
				ReviewID: r.ReviewID,
				AuthorID: uid,
			})
		}
	}
}

func (n *Normalizer) skip(table, reason string, attrs ...any) {
	middleware.ImportRowsSkipped.WithLabelValues(table, reason).Inc()
	args := append([]any{slog.String("table", table), slog.String("reason", reason)}, attrs...)
	n.logger.Warn("skipping malformed record", args...)
}

// ClampRating clamps a raw rating into [0,5] and rounds it to the nearest
// integer. Zero is a valid stored rating; it anchors likes but never counts
// toward the aggregate.
func ClampRating(raw float64) int {
	if raw < 0 {
		return 0
	}
	if raw > 5 {
		return 5
	}
	return int(math.Round(raw))
}

// DedupeIngredients trims each entry, drops empties, and removes duplicates
// case-sensitively while preserving first-seen order and case.
func DedupeIngredients(parts []string) []string {
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func optFloat(n OptionalNumber) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

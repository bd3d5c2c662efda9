package importer

import (
	"log/slog"

	"tastebase/internal/database"
	"tastebase/internal/middleware"
	"tastebase/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Loader persists normalized row sets in dependency order, in bounded-size
// chunks, with ignore-on-conflict semantics so re-running the same import is
// a no-op on rows that already exist.
type Loader struct {
	batchSize int
	logger    *slog.Logger
}

// NewLoader returns a Loader writing chunks of at most batchSize rows.
func NewLoader(batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Loader{batchSize: batchSize, logger: middleware.Logger}
}

// Clear removes all rows in reverse dependency order so no foreign key is
// ever left dangling mid-operation. Tables that do not exist yet are
// tolerated as a no-op.
func (l *Loader) Clear(tx *gorm.DB) error {
	tables := database.TableNames()
	for i := len(tables) - 1; i >= 0; i-- {
		name := tables[i]
		if !tx.Migrator().HasTable(name) {
			continue
		}
		if err := tx.Exec("DELETE FROM " + name).Error; err != nil {
			return models.NewUnavailableError(err)
		}
	}
	return nil
}

// Load writes the row sets in dependency order: users, recipes, nutrition,
// ingredients, reviews, review likes, follows. Rows whose parent was skipped
// or rejected earlier in the same pass are filtered out before any insert is
// attempted, so a dangling reference never reaches the store.
func (l *Loader) Load(tx *gorm.DB, rs *RowSet) error {
	acceptedUsers := make(map[int64]struct{}, len(rs.Users))
	for _, u := range rs.Users {
		acceptedUsers[u.AuthorID] = struct{}{}
	}
	insertChunks(l, tx, "users", rs.Users)

	acceptedRecipes := make(map[int64]struct{}, len(rs.Recipes))
	recipes := make([]models.Recipe, 0, len(rs.Recipes))
	for _, r := range rs.Recipes {
		if _, ok := acceptedUsers[r.AuthorID]; !ok {
			l.drop("recipes", "unknown_author", slog.Int64("recipe_id", r.RecipeID))
			continue
		}
		acceptedRecipes[r.RecipeID] = struct{}{}
		recipes = append(recipes, r)
	}
	insertChunks(l, tx, "recipes", recipes)

	nutrition := make([]models.Nutrition, 0, len(rs.Nutrition))
	for _, nu := range rs.Nutrition {
		if _, ok := acceptedRecipes[nu.RecipeID]; !ok {
			l.drop("nutrition", "unknown_recipe", slog.Int64("recipe_id", nu.RecipeID))
			continue
		}
		nutrition = append(nutrition, nu)
	}
	insertChunks(l, tx, "nutrition", nutrition)

	ingredients := make([]models.RecipeIngredient, 0, len(rs.Ingredients))
	for _, ing := range rs.Ingredients {
		if _, ok := acceptedRecipes[ing.RecipeID]; !ok {
			l.drop("recipe_ingredients", "unknown_recipe", slog.Int64("recipe_id", ing.RecipeID))
			continue
		}
		ingredients = append(ingredients, ing)
	}
	insertChunks(l, tx, "recipe_ingredients", ingredients)

	acceptedReviews := make(map[int64]struct{}, len(rs.Reviews))
	reviews := make([]models.Review, 0, len(rs.Reviews))
	for _, rv := range rs.Reviews {
		if _, ok := acceptedRecipes[rv.RecipeID]; !ok {
			l.drop("reviews", "unknown_recipe", slog.Int64("review_id", rv.ReviewID))
			continue
		}
		if _, ok := acceptedUsers[rv.AuthorID]; !ok {
			l.drop("reviews", "unknown_author", slog.Int64("review_id", rv.ReviewID))
			continue
		}
		acceptedReviews[rv.ReviewID] = struct{}{}
		reviews = append(reviews, rv)
	}
	insertChunks(l, tx, "reviews", reviews)

	likes := make([]models.ReviewLike, 0, len(rs.ReviewLikes))
	for _, lk := range rs.ReviewLikes {
		if _, ok := acceptedReviews[lk.ReviewID]; !ok {
			l.drop("review_likes", "unknown_review", slog.Int64("review_id", lk.ReviewID))
			continue
		}
		if _, ok := acceptedUsers[lk.AuthorID]; !ok {
			l.drop("review_likes", "unknown_author", slog.Int64("author_id", lk.AuthorID))
			continue
		}
		likes = append(likes, lk)
	}
	insertChunks(l, tx, "review_likes", likes)

	follows := make([]models.UserFollow, 0, len(rs.Follows))
	for _, f := range rs.Follows {
		if _, ok := acceptedUsers[f.FollowerID]; !ok {
			l.drop("user_follows", "unknown_follower", slog.Int64("follower_id", f.FollowerID))
			continue
		}
		if _, ok := acceptedUsers[f.FollowingID]; !ok {
			l.drop("user_follows", "unknown_following", slog.Int64("following_id", f.FollowingID))
			continue
		}
		follows = append(follows, f)
	}
	insertChunks(l, tx, "user_follows", follows)

	return nil
}

func (l *Loader) drop(table, reason string, attrs ...any) {
	middleware.ImportRowsSkipped.WithLabelValues(table, reason).Inc()
	args := append([]any{slog.String("table", table), slog.String("reason", reason)}, attrs...)
	l.logger.Warn("dropping row with dangling reference", args...)
}

// insertChunks writes rows in fixed-size chunks with ON CONFLICT DO NOTHING.
// A rejected chunk is logged and skipped; it never aborts the pass.
func insertChunks[T any](l *Loader, tx *gorm.DB, table string, rows []T) {
	for start := 0; start < len(rows); start += l.batchSize {
		end := start + l.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]
		res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&chunk)
		if res.Error != nil {
			l.logger.Error("chunk insert failed",
				slog.String("table", table),
				slog.Int("rows", len(chunk)),
				slog.String("error", res.Error.Error()),
			)
			middleware.ImportRowsSkipped.WithLabelValues(table, "chunk_error").Add(float64(len(chunk)))
			continue
		}
		middleware.ImportRowsLoaded.WithLabelValues(table).Add(float64(res.RowsAffected))
	}
}

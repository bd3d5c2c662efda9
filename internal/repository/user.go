package repository

import (
	"context"
	"errors"
	"strings"

	"tastebase/internal/cache"
	"tastebase/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users and follow edges.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id int64, gender *string, age *int) error
	SoftDelete(ctx context.Context, id int64) error
	ToggleFollow(ctx context.Context, followerID, followeeID int64) (bool, error)
	Feed(ctx context.Context, userID int64, page, size int, category string) (*models.PageResult[models.FeedItem], error)
	HighestFollowRatio(ctx context.Context) (*models.FollowRatio, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	key := cache.UserKey(id)

	err := cache.Aside(ctx, key, &user, cache.UserTTL, func() error {
		if err := r.db.WithContext(ctx).First(&user, "author_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("User", id)
			}
			return models.NewInternalError(err)
		}
		// The persisted counts are an import snapshot; the follow edges
		// are authoritative.
		return r.fillDerivedCounts(ctx, &user)
	})

	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) fillDerivedCounts(ctx context.Context, user *models.User) error {
	var followers, following int64
	if err := r.db.WithContext(ctx).Model(&models.UserFollow{}).
		Where("following_id = ?", user.AuthorID).Count(&followers).Error; err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).Model(&models.UserFollow{}).
		Where("follower_id = ?", user.AuthorID).Count(&following).Error; err != nil {
		return models.NewInternalError(err)
	}
	user.Followers = int(followers)
	user.Following = int(following)
	return nil
}

func (r *userRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("author_name = ?", name).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if user.AuthorID == 0 {
			var maxID int64
			if err := tx.Model(&models.User{}).
				Select("COALESCE(MAX(author_id), 0)").Scan(&maxID).Error; err != nil {
				return models.NewInternalError(err)
			}
			user.AuthorID = maxID + 1
		}
		if err := tx.Create(user).Error; err != nil {
			if isUniqueConstraintError(err) {
				return models.NewValidationError("User already exists")
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	return err
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505; SQLite reports "UNIQUE constraint failed"
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, gender *string, age *int) error {
	updates := map[string]interface{}{}
	if gender != nil {
		updates["gender"] = *gender
	}
	if age != nil {
		updates["age"] = *age
	}
	if len(updates) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("author_id = ?", id).Updates(updates).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// SoftDelete marks the user deleted and removes every follow edge touching
// them, in one transaction. Users are never hard-deleted.
func (r *userRepository) SoftDelete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("author_id = ?", id).
			Update("is_deleted", true).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("follower_id = ? OR following_id = ?", id, id).
			Delete(&models.UserFollow{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidateUser(ctx, id)
	return nil
}

// ToggleFollow follows the followee if no edge exists, unfollows otherwise.
// Returns true when the caller is following afterwards.
func (r *userRepository) ToggleFollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.UserFollow{}).
			Where("follower_id = ? AND following_id = ?", followerID, followeeID).
			Count(&count).Error; err != nil {
			return models.NewInternalError(err)
		}

		if count > 0 {
			if err := tx.Where("follower_id = ? AND following_id = ?", followerID, followeeID).
				Delete(&models.UserFollow{}).Error; err != nil {
				return models.NewInternalError(err)
			}
			following = false
			return nil
		}

		edge := models.UserFollow{FollowerID: followerID, FollowingID: followeeID}
		if err := tx.Create(&edge).Error; err != nil {
			return models.NewInternalError(err)
		}
		following = true
		return nil
	})
	if err != nil {
		return false, err
	}
	cache.InvalidateUser(ctx, followerID)
	cache.InvalidateUser(ctx, followeeID)
	return following, nil
}

// Feed returns one page of recipes by followed authors, newest first. Pages
// are cached briefly; a follow change drops them, while a followed author
// publishing shows up at the latest after the TTL.
func (r *userRepository) Feed(ctx context.Context, userID int64, page, size int, category string) (*models.PageResult[models.FeedItem], error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 1
	}
	if size > 200 {
		size = 200
	}

	key := cache.UserFeedKey(userID, page, size, category)

	var result models.PageResult[models.FeedItem]
	err := cache.Aside(ctx, key, &result, cache.FeedTTL, func() error {
		fetched, err := r.feed(ctx, userID, page, size, category)
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

func (r *userRepository) feed(ctx context.Context, userID int64, page, size int, category string) (*models.PageResult[models.FeedItem], error) {
	base := r.db.WithContext(ctx).Table("recipes r").
		Joins("JOIN user_follows uf ON uf.following_id = r.author_id").
		Joins("JOIN users u ON u.author_id = r.author_id").
		Where("uf.follower_id = ? AND u.is_deleted = ?", userID, false)
	if category != "" {
		base = base.Where("r.recipe_category = ?", category)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	var items []models.FeedItem
	err := base.Session(&gorm.Session{}).
		Select("r.recipe_id, r.name, r.author_id, u.author_name, r.date_published, r.aggregated_rating, r.review_count").
		Order("r.date_published DESC").
		Order("r.recipe_id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Scan(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &models.PageResult[models.FeedItem]{
		Items: items,
		Page:  page,
		Size:  size,
		Total: total,
	}, nil
}

// HighestFollowRatio returns the active user with the highest ratio of
// followers to accounts they follow. Users following nobody are excluded
// since their ratio is undefined. Returns (nil, nil) when no user qualifies.
func (r *userRepository) HighestFollowRatio(ctx context.Context) (*models.FollowRatio, error) {
	var result models.FollowRatio
	sql := `
		SELECT u.author_id, u.author_name,
		       (COALESCE(fc.follower_count, 0) * 1.0 / fo.following_count) AS ratio
		FROM users u
		INNER JOIN (
			SELECT follower_id AS author_id, COUNT(*) AS following_count
			FROM user_follows
			GROUP BY follower_id
		) fo ON fo.author_id = u.author_id
		LEFT JOIN (
			SELECT following_id AS author_id, COUNT(*) AS follower_count
			FROM user_follows
			GROUP BY following_id
		) fc ON fc.author_id = u.author_id
		WHERE u.is_deleted = ?
		ORDER BY ratio DESC, u.author_id ASC
		LIMIT 1`

	rows := r.db.WithContext(ctx).Raw(sql, false).Scan(&result)
	if rows.Error != nil {
		return nil, models.NewInternalError(rows.Error)
	}
	if rows.RowsAffected == 0 {
		return nil, nil
	}
	return &result, nil
}

package database

import (
	"tastebase/internal/models"

	"gorm.io/gorm"
)

// PersistentModels lists every persisted entity in dependency order:
// parents precede children so creation can walk it forward and
// destructive operations can walk it backward.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Recipe{},
		&models.Nutrition{},
		&models.RecipeIngredient{},
		&models.Review{},
		&models.ReviewLike{},
		&models.UserFollow{},
	}
}

// TableNames returns the table names of all persisted entities in the
// same dependency order as PersistentModels.
func TableNames() []string {
	return []string{
		"users",
		"recipes",
		"nutrition",
		"recipe_ingredients",
		"reviews",
		"review_likes",
		"user_follows",
	}
}

// EnsureSchema creates any missing tables and indexes. It is idempotent
// and safe to call repeatedly; existing tables and their data are left
// untouched. It must run outside of the import transaction since DDL is
// not transactional on every backend.
func EnsureSchema(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

package models

import "time"

// Recipe is a published recipe. AggregatedRating and ReviewCount are derived
// columns: they must always equal the value computed by the aggregate
// maintainer from the recipe's review rows (ratings > 0 only). Nobody else
// writes them.
type Recipe struct {
	RecipeID       int64      `gorm:"primaryKey;autoIncrement:false" json:"recipe_id"`
	AuthorID       int64      `gorm:"not null;index" json:"author_id"`
	Name           string     `gorm:"size:500;not null" json:"name"`
	CookTime       string     `gorm:"size:50" json:"cook_time"`
	PrepTime       string     `gorm:"size:50" json:"prep_time"`
	TotalTime      string     `gorm:"size:50" json:"total_time"`
	DatePublished  *time.Time `json:"date_published"`
	Description    string     `gorm:"type:text" json:"description"`
	RecipeCategory string     `gorm:"size:255;index" json:"recipe_category"`
	// RecipeServings is absent when the source value was missing or unparseable.
	RecipeServings   *int    `json:"recipe_servings"`
	RecipeYield      string  `gorm:"size:100" json:"recipe_yield"`
	AggregatedRating float64 `gorm:"not null;default:0" json:"aggregated_rating"`
	ReviewCount      int     `gorm:"not null;default:0" json:"review_count"`

	Author      User               `gorm:"foreignKey:AuthorID;references:AuthorID" json:"-"`
	Nutrition   *Nutrition         `gorm:"foreignKey:RecipeID;references:RecipeID" json:"nutrition,omitempty"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID;references:RecipeID" json:"-"`

	// AuthorName and IngredientParts are view fields populated at query time.
	AuthorName      string   `gorm:"-" json:"author_name,omitempty"`
	IngredientParts []string `gorm:"-" json:"ingredient_parts"`
}

// TableName specifies the table name for GORM
func (Recipe) TableName() string {
	return "recipes"
}

// Nutrition holds the per-recipe nutrition facts. A row exists only when the
// source data reported strictly positive calories.
type Nutrition struct {
	RecipeID            int64    `gorm:"primaryKey;autoIncrement:false" json:"recipe_id"`
	Calories            float64  `json:"calories"`
	FatContent          *float64 `json:"fat_content"`
	SaturatedFatContent *float64 `json:"saturated_fat_content"`
	CholesterolContent  *float64 `json:"cholesterol_content"`
	SodiumContent       *float64 `json:"sodium_content"`
	CarbohydrateContent *float64 `json:"carbohydrate_content"`
	FiberContent        *float64 `json:"fiber_content"`
	SugarContent        *float64 `json:"sugar_content"`
	ProteinContent      *float64 `json:"protein_content"`
}

// TableName specifies the table name for GORM
func (Nutrition) TableName() string {
	return "nutrition"
}

// RecipeIngredient is one (recipe, ingredient text) pair. The composite
// primary key is what enforces per-recipe ingredient uniqueness; the text is
// stored trimmed and case-preserved.
type RecipeIngredient struct {
	RecipeID       int64  `gorm:"primaryKey;autoIncrement:false" json:"recipe_id"`
	IngredientPart string `gorm:"primaryKey;size:500" json:"ingredient_part"`
}

// TableName specifies the table name for GORM
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}

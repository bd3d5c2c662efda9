package models

import "time"

// Review is a user's review of a recipe. Rating is an integer in [0,5] after
// import-time clamping; a rating of 0 is a valid row (likes anchor to it) but
// contributes nothing to the recipe aggregate.
type Review struct {
	ReviewID      int64     `gorm:"primaryKey;autoIncrement:false" json:"review_id"`
	RecipeID      int64     `gorm:"not null;index" json:"recipe_id"`
	AuthorID      int64     `gorm:"not null;index" json:"author_id"`
	Rating        int       `gorm:"not null;default:0" json:"rating"`
	Body          string    `gorm:"column:review;type:text" json:"review"`
	DateSubmitted time.Time `json:"date_submitted"`
	DateModified  time.Time `json:"date_modified"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;references:RecipeID" json:"-"`
	Author User   `gorm:"foreignKey:AuthorID;references:AuthorID" json:"-"`

	// View fields populated at query time.
	AuthorName string  `gorm:"-" json:"author_name,omitempty"`
	Likes      []int64 `gorm:"-" json:"likes"`
}

// TableName specifies the table name for GORM
func (Review) TableName() string {
	return "reviews"
}

// ReviewLike is a user's like on a review. The composite primary key forbids
// duplicate likes; likes never influence the rating aggregate.
type ReviewLike struct {
	ReviewID int64 `gorm:"primaryKey;autoIncrement:false" json:"review_id"`
	AuthorID int64 `gorm:"primaryKey;autoIncrement:false" json:"author_id"`

	Review Review `gorm:"foreignKey:ReviewID;references:ReviewID" json:"-"`
	Author User   `gorm:"foreignKey:AuthorID;references:AuthorID" json:"-"`
}

// TableName specifies the table name for GORM
func (ReviewLike) TableName() string {
	return "review_likes"
}

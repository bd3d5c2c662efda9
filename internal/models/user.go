// Package models contains data structures for the application's domain models.
package models

// Gender values accepted for a user profile.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
)

// User represents a community member. AuthorID is caller-assigned (the bulk
// dataset carries its own identifiers) so autoIncrement is disabled.
//
// The followers/following columns hold the snapshot carried by the imported
// dataset; the authoritative values are always derived from user_follows and
// repositories overwrite them on read.
type User struct {
	AuthorID   int64  `gorm:"primaryKey;autoIncrement:false" json:"author_id"`
	AuthorName string `gorm:"size:255;not null;uniqueIndex" json:"author_name"`
	Gender     string `gorm:"size:10" json:"gender"`
	Age        int    `json:"age"`
	Password   string `gorm:"size:255" json:"-"`
	IsDeleted  bool   `gorm:"not null;default:false" json:"is_deleted"`
	Followers  int    `gorm:"not null;default:0" json:"followers"`
	Following  int    `gorm:"not null;default:0" json:"following"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// Active reports whether the user exists in a usable state.
func (u *User) Active() bool {
	return u != nil && !u.IsDeleted
}

// UserFollow is a directed follow edge between two users.
// Self-loops are rejected before the row is ever written.
type UserFollow struct {
	FollowerID  int64 `gorm:"primaryKey;autoIncrement:false" json:"follower_id"`
	FollowingID int64 `gorm:"primaryKey;autoIncrement:false" json:"following_id"`

	Follower  User `gorm:"foreignKey:FollowerID;references:AuthorID" json:"-"`
	Following User `gorm:"foreignKey:FollowingID;references:AuthorID" json:"-"`
}

// TableName specifies the table name for GORM
func (UserFollow) TableName() string {
	return "user_follows"
}

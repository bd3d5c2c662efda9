// Package service implements business logic on top of the repositories.
package service

import (
	"context"
	"strings"
	"time"

	"tastebase/internal/middleware"
	"tastebase/internal/models"
	"tastebase/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
	Birthday string `json:"birthday"` // YYYY-MM-DD
}

// UpdateProfileInput carries optional profile changes; nil fields are left alone.
type UpdateProfileInput struct {
	Gender *string `json:"gender"`
	Age    *int    `json:"age"`
}

// UserService handles user accounts, sessions, and the follow graph.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// requireActive loads the user and rejects missing or soft-deleted accounts.
func (s *UserService) requireActive(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Active() {
		return nil, models.NewUnauthorizedError("user is inactive")
	}
	return user, nil
}

// Register creates a new account and returns its ID.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (int64, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return 0, models.NewValidationError("name is required")
	}
	if input.Password == "" {
		return 0, models.NewValidationError("password is required")
	}

	gender, err := normalizeGender(input.Gender)
	if err != nil {
		return 0, err
	}

	age, err := ageFromBirthday(input.Birthday)
	if err != nil {
		return 0, err
	}

	existing, err := s.users.GetByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, models.NewValidationError("name is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, models.NewInternalError(err)
	}

	user := models.User{
		AuthorName: name,
		Gender:     gender,
		Age:        age,
		Password:   string(hash),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return 0, err
	}
	return user.AuthorID, nil
}

// Login checks the credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, userID int64, password string) (string, error) {
	if password == "" {
		return "", models.NewValidationError("password is required")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if !user.Active() {
		return "", models.NewUnauthorizedError("user is inactive")
	}
	if !checkPassword(user.Password, password) {
		return "", models.NewUnauthorizedError("invalid credentials")
	}

	return middleware.GenerateToken(userID, 24*time.Hour)
}

// checkPassword verifies a bcrypt hash. Rows loaded by the bulk importer carry
// the source dataset's opaque password strings unhashed, so anything that is
// not a bcrypt hash is compared byte-for-byte.
func checkPassword(stored, password string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return stored == password
}

// GetProfile returns a user with derived follower/following counts.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes gender and/or age for the caller.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) error {
	if _, err := s.requireActive(ctx, userID); err != nil {
		return err
	}

	var gender *string
	if input.Gender != nil {
		g, err := normalizeGender(*input.Gender)
		if err != nil {
			return err
		}
		gender = &g
	}
	if input.Age != nil && *input.Age <= 0 {
		return models.NewValidationError("age must be positive")
	}

	return s.users.UpdateProfile(ctx, userID, gender, input.Age)
}

// DeleteAccount soft-deletes the caller's own account and removes all follow
// edges touching it. Deleting another user's account is rejected.
func (s *UserService) DeleteAccount(ctx context.Context, operatorID, targetID int64) error {
	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if operatorID != targetID {
		return models.NewUnauthorizedError("cannot delete another user's account")
	}
	if user.IsDeleted {
		return models.NewValidationError("account is already deleted")
	}
	return s.users.SoftDelete(ctx, targetID)
}

// ToggleFollow follows the target if not yet following, unfollows otherwise.
// Returns true when the caller follows the target afterwards.
func (s *UserService) ToggleFollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if followerID == followeeID {
		return false, models.NewValidationError("cannot follow yourself")
	}
	if _, err := s.requireActive(ctx, followerID); err != nil {
		return false, err
	}

	followee, err := s.users.GetByID(ctx, followeeID)
	if err != nil {
		return false, err
	}
	if !followee.Active() {
		return false, models.NewValidationError("followee is inactive")
	}

	return s.users.ToggleFollow(ctx, followerID, followeeID)
}

// Feed returns recipes published by the users the caller follows, newest first.
func (s *UserService) Feed(ctx context.Context, userID int64, page, size int, category string) (*models.PageResult[models.FeedItem], error) {
	if _, err := s.requireActive(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Feed(ctx, userID, page, size, category)
}

// HighestFollowRatio returns the active user with the best follower-to-following
// ratio, or nil when no user follows anybody.
func (s *UserService) HighestFollowRatio(ctx context.Context) (*models.FollowRatio, error) {
	return s.users.HighestFollowRatio(ctx)
}

func normalizeGender(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male":
		return models.GenderMale, nil
	case "female":
		return models.GenderFemale, nil
	default:
		return "", models.NewValidationError("gender must be Male or Female")
	}
}

func ageFromBirthday(birthday string) (int, error) {
	birth, err := time.Parse("2006-01-02", strings.TrimSpace(birthday))
	if err != nil {
		return 0, models.NewValidationError("birthday must be YYYY-MM-DD")
	}
	now := time.Now()
	if birth.After(now) {
		return 0, models.NewValidationError("birthday is in the future")
	}

	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	if age <= 0 {
		return 0, models.NewValidationError("age must be positive")
	}
	return age, nil
}

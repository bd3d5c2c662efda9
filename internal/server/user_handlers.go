package server

import (
	"tastebase/internal/models"
	"tastebase/internal/service"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	AuthorID int64  `json:"author_id"`
	Password string `json:"password"`
}

// Register creates a new user account.
func (s *Server) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	id, err := s.userService.Register(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"author_id": id})
}

// Login verifies credentials and returns a session token.
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if req.AuthorID <= 0 {
		return respondError(c, models.NewValidationError("author_id is required"))
	}

	token, err := s.userService.Login(c.UserContext(), req.AuthorID, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"token": token, "author_id": req.AuthorID})
}

// GetMyProfile returns the authenticated user's profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetUserProfile returns any user's profile with derived follow counts.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile changes the caller's gender and/or age.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var input service.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.userService.UpdateProfile(c.UserContext(), currentUserID(c), input); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteAccount soft-deletes the caller's account.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteAccount(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleFollow follows or unfollows the target user.
func (s *Server) ToggleFollow(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	following, err := s.userService.ToggleFollow(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"following": following})
}

// GetFeed returns recipes from followed users, newest first.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, size := parsePage(c, 20)
	category := c.Query("category")

	feed, err := s.userService.Feed(c.UserContext(), currentUserID(c), page, size, category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

// HighestFollowRatio returns the user with the best follower/following ratio.
func (s *Server) HighestFollowRatio(c *fiber.Ctx) error {
	ratio, err := s.userService.HighestFollowRatio(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if ratio == nil {
		return respondError(c, models.NewNotFoundError("FollowRatio", "any"))
	}
	return c.JSON(ratio)
}

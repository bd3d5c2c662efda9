package server

import (
	"tastebase/internal/models"

	"github.com/gofiber/fiber/v2"
)

type reviewRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// ListReviews returns a page of a recipe's reviews.
func (s *Server) ListReviews(c *fiber.Ctx) error {
	recipeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	page, size := parsePage(c, 20)

	result, err := s.reviewService.List(c.UserContext(), recipeID, page, size, c.Query("sort"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// AddReview creates a review and returns the recipe's refreshed aggregate.
func (s *Server) AddReview(c *fiber.Ctx) error {
	recipeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	reviewID, recipe, err := s.reviewService.Add(c.UserContext(), currentUserID(c), recipeID, req.Rating, req.Review)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"review_id": reviewID,
		"recipe":    recipe,
	})
}

// EditReview updates a review; author only.
func (s *Server) EditReview(c *fiber.Ctx) error {
	recipeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reviewID, err := s.parseID(c, "reviewId")
	if err != nil {
		return nil
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	recipe, err := s.reviewService.Edit(c.UserContext(), currentUserID(c), recipeID, reviewID, req.Rating, req.Review)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"recipe": recipe})
}

// DeleteReview removes a review and its likes; author only.
func (s *Server) DeleteReview(c *fiber.Ctx) error {
	recipeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	reviewID, err := s.parseID(c, "reviewId")
	if err != nil {
		return nil
	}

	recipe, err := s.reviewService.Delete(c.UserContext(), currentUserID(c), recipeID, reviewID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"recipe": recipe})
}

// LikeReview likes someone else's review and returns the like count.
func (s *Server) LikeReview(c *fiber.Ctx) error {
	reviewID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.reviewService.Like(c.UserContext(), currentUserID(c), reviewID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"likes": count})
}

// UnlikeReview removes the caller's like and returns the like count.
func (s *Server) UnlikeReview(c *fiber.Ctx) error {
	reviewID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	count, err := s.reviewService.Unlike(c.UserContext(), currentUserID(c), reviewID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"likes": count})
}

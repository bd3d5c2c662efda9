package server

import (
	"tastebase/internal/importer"
	"tastebase/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ImportDataset replaces the whole dataset with the posted one: schema ensure,
// clear, normalize, load, and aggregate sweep in one transaction.
func (s *Server) ImportDataset(c *fiber.Ctx) error {
	var dataset importer.Dataset
	if err := c.BodyParser(&dataset); err != nil {
		return respondError(c, models.NewValidationError("Invalid dataset body"))
	}

	if err := s.importer.Run(c.UserContext(), dataset.Users, dataset.Recipes, dataset.Reviews); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecomputeAggregate refreshes one recipe's derived rating fields on demand.
func (s *Server) RecomputeAggregate(c *fiber.Ctx) error {
	recipeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	recipe, err := s.reviewService.Recompute(c.UserContext(), recipeID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

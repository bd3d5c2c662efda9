package server

import (
	"tastebase/internal/models"
	"tastebase/internal/repository"
	"tastebase/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetRecipe returns one recipe with nutrition, ingredients, and author name.
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	recipe, err := s.recipeService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(recipe)
}

// SearchRecipes returns a page of recipes filtered by keyword, category, and
// minimum rating.
func (s *Server) SearchRecipes(c *fiber.Ctx) error {
	page, size := parsePage(c, 20)

	params := repository.RecipeSearchParams{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
		Page:     page,
		Size:     size,
		Sort:     c.Query("sort"),
	}
	if c.Query("min_rating") != "" {
		minRating := c.QueryFloat("min_rating")
		params.MinRating = &minRating
	}

	result, err := s.recipeService.Search(c.UserContext(), params)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// CreateRecipe publishes a recipe owned by the caller.
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	var input service.CreateRecipeInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	id, err := s.recipeService.Create(c.UserContext(), currentUserID(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"recipe_id": id})
}

// DeleteRecipe removes a recipe; author only.
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.recipeService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateRecipeTimes updates cook/prep times from ISO-8601 durations.
func (s *Server) UpdateRecipeTimes(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var input service.UpdateTimesInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.recipeService.UpdateTimes(c.UserContext(), currentUserID(c), id, input); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ClosestCaloriePair returns the two recipes with the nearest calorie values.
func (s *Server) ClosestCaloriePair(c *fiber.Ctx) error {
	pair, err := s.recipeService.ClosestCaloriePair(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	if pair == nil {
		return respondError(c, models.NewNotFoundError("CaloriePair", "any"))
	}
	return c.JSON(pair)
}

// MostComplexRecipes returns the three recipes with the most ingredients.
func (s *Server) MostComplexRecipes(c *fiber.Ctx) error {
	results, err := s.recipeService.Top3MostComplex(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(results)
}

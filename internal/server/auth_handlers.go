package server

import (
	"tidepool/internal/models"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register creates a new account and returns the user with a bearer token.
func (s *Server) Register(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	result, err := s.userService.Register(ctx, service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

// Login authenticates a user by email and password.
func (s *Server) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	result, err := s.userService.Login(ctx, service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

package server

import (
	"tidepool/internal/models"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost creates a new post (protected).
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var req struct {
		Content    string `json:"content"`
		ImageURL   string `json:"image_url"`
		Visibility string `json:"visibility"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID:     userID,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		Visibility: models.PostVisibility(req.Visibility),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost returns a single post (public, viewer-aware).
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(ctx, postID, viewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// UpdatePost updates a post (owner only).
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content    string `json:"content"`
		ImageURL   string `json:"image_url"`
		Visibility string `json:"visibility"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:     userID,
		PostID:     postID,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		Visibility: models.PostVisibility(req.Visibility),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost deletes a post with its comment forest and likes (owner only).
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(ctx, postID, userID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

package server

import (
	"tidepool/internal/models"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile returns the authenticated user's profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	user, err := s.userService.GetProfile(ctx, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile updates the authenticated user's bio and avatar.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	var req struct {
		Bio    string `json:"bio"`
		Avatar string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(ctx, service.UpdateProfileInput{
		UserID: userID,
		Bio:    req.Bio,
		Avatar: req.Avatar,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetUserProfile returns a user's public profile with follow counts.
// Authenticated viewers also learn whether they follow the user.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetProfile(ctx, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	followers, following, err := s.followService.Counts(ctx, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	resp := fiber.Map{
		"user":            user,
		"followers_count": followers,
		"following_count": following,
	}
	if vid := viewerID(c); vid != 0 && vid != userID {
		isFollowing, err := s.followService.IsFollowing(ctx, vid, userID)
		if err != nil {
			return respondServiceError(c, err)
		}
		resp["is_following"] = isFollowing
	}

	return c.JSON(resp)
}

// GetUserPosts returns a user's posts, newest first. Private posts appear
// only when the viewer is the author.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	ctx := c.UserContext()

	userID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	posts, err := s.postService.ListUserPosts(ctx, userID, p.Limit, p.Offset, viewerID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

package server

import (
	"tidepool/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowUser follows another user (protected). Following an
// already-followed user is 409; following yourself is 400.
func (s *Server) FollowUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	followeeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.followService.Follow(ctx, userID, followeeID); err != nil {
		return respondServiceError(c, err)
	}

	s.notificationService.Notify(ctx, &models.Notification{
		RecipientID: followeeID,
		ActorID:     userID,
		Type:        models.NotificationTypeFollow,
	})

	return c.SendStatus(fiber.StatusCreated)
}

// UnfollowUser removes a follow edge (protected).
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	followeeID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.followService.Unfollow(ctx, userID, followeeID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// BlockUser blocks another user, severing any follow edges between the
// two (protected).
func (s *Server) BlockUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	blockedID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.followService.Block(ctx, userID, blockedID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusCreated)
}

// UnblockUser removes a block (protected).
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	blockedID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.followService.Unblock(ctx, userID, blockedID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

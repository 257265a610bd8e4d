package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications returns the viewer's notifications, newest first (protected).
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	notifications, err := s.notificationService.List(ctx, userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(notifications)
}

// GetUnreadNotificationCount returns the viewer's unread notification count (protected).
func (s *Server) GetUnreadNotificationCount(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	count, err := s.notificationService.CountUnread(ctx, userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"unread_count": count})
}

// MarkNotificationRead marks one of the viewer's notifications read (protected).
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	notificationID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.notificationService.MarkRead(ctx, userID, notificationID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// MarkAllNotificationsRead marks all of the viewer's notifications read (protected).
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	if err := s.notificationService.MarkAllRead(ctx, userID); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

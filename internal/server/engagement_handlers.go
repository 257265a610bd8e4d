package server

import (
	"tidepool/internal/models"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LikePost likes a post (protected). Liking an already-liked post is 409.
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.like(c, models.LikeTargetPost)
}

// UnlikePost removes a like from a post (protected).
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.unlike(c, models.LikeTargetPost)
}

// LikeComment likes a comment (protected).
func (s *Server) LikeComment(c *fiber.Ctx) error {
	return s.like(c, models.LikeTargetComment)
}

// UnlikeComment removes a like from a comment (protected).
func (s *Server) UnlikeComment(c *fiber.Ctx) error {
	return s.unlike(c, models.LikeTargetComment)
}

func (s *Server) like(c *fiber.Ctx, targetType models.LikeTargetType) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.engagementService.Like(ctx, service.LikeInput{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
	}); err != nil {
		return respondServiceError(c, err)
	}

	s.notifyLike(c, userID, targetType, targetID)

	return c.SendStatus(fiber.StatusCreated)
}

func (s *Server) unlike(c *fiber.Ctx, targetType models.LikeTargetType) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	targetID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.engagementService.Unlike(ctx, service.LikeInput{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
	}); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// notifyLike records a like notification for the liked content's author.
func (s *Server) notifyLike(c *fiber.Ctx, actorID uint, targetType models.LikeTargetType, targetID uint) {
	ctx := c.UserContext()

	n := &models.Notification{
		ActorID: actorID,
		Type:    models.NotificationTypeLike,
	}
	switch targetType {
	case models.LikeTargetPost:
		post, err := s.postRepo.GetByID(ctx, targetID, 0)
		if err != nil {
			return
		}
		n.RecipientID = post.UserID
		n.PostID = &targetID
	case models.LikeTargetComment:
		comment, err := s.commentRepo.GetByID(ctx, targetID)
		if err != nil {
			return
		}
		n.RecipientID = comment.UserID
		n.PostID = &comment.PostID
		n.CommentID = &targetID
	}

	s.notificationService.Notify(ctx, n)
}

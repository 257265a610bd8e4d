package server

import (
	"tidepool/internal/models"
	"tidepool/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateComment creates a comment or reply on a post (protected).
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		ParentID *uint  `json:"parent_id"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	created, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		UserID:   userID,
		PostID:   postID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	if post, postErr := s.postRepo.GetByID(ctx, postID, 0); postErr == nil {
		s.notificationService.Notify(ctx, &models.Notification{
			RecipientID: post.UserID,
			ActorID:     userID,
			Type:        models.NotificationTypeComment,
			PostID:      &postID,
			CommentID:   &created.ID,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// GetComments returns one page of a post's comment tier (public).
// Query parameters: parent_id selects a reply tier (absent means top
// level), limit and offset page through it.
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.UserContext()

	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	var parentID *uint
	if raw := c.QueryInt("parent_id", 0); raw > 0 {
		pid := uint(raw)
		parentID = &pid
	}

	page, err := s.commentService.ListComments(ctx, service.ListCommentsInput{
		PostID:   postID,
		ParentID: parentID,
		Limit:    p.Limit,
		Offset:   p.Offset,
		ViewerID: viewerID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(page)
}

// UpdateComment updates a comment's content (owner only).
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	var req struct {
		Content string `json:"content"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
	}

	updated, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		UserID:    userID,
		CommentID: commentID,
		Content:   req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(updated)
}

// DeleteComment deletes a comment and its reply subtree (owner only).
// The response reports how many comments were removed in total.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)

	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	result, err := s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    userID,
		CommentID: commentID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

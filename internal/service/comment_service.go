// Package service implements the application's business rules on top of
// the repository layer.
package service

import (
	"context"

	"tidepool/internal/models"
	"tidepool/internal/repository"
	"tidepool/internal/validation"
)

// CommentService owns the comment forest: creation, edits, cascading
// deletion with subtree accounting, and the viewer-prioritized paginated
// read.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	policy      validation.ContentPolicy
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	policy validation.ContentPolicy,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		policy:      policy,
	}
}

type CreateCommentInput struct {
	UserID   uint
	PostID   uint
	ParentID *uint
	Content  string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

// DeleteCommentResult reports how many comments a cascading delete
// removed (the target plus its whole subtree), for caller auditing.
type DeleteCommentResult struct {
	DeletedCount int64 `json:"deleted_count"`
}

type ListCommentsInput struct {
	PostID   uint
	ParentID *uint
	Limit    int
	Offset   int
	// ViewerID activates viewer-prioritized interleaving; zero means an
	// anonymous read.
	ViewerID uint
}

// contentTier resolves the plan tier governing the actor's content limits.
func (s *CommentService) contentTier(ctx context.Context, userID uint) models.PlanTier {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.PlanTierFree
	}
	return user.PlanTier
}

// CreateComment validates and inserts a comment. The post and parent
// existence checks are repeated inside the repository transaction, so a
// parent deleted between the check and the insert fails the create rather
// than orphaning the reply.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		return nil, err
	}
	if err := s.policy.ValidateContent("Content", in.Content, s.contentTier(ctx, in.UserID)); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:  in.Content,
		UserID:   in.UserID,
		PostID:   in.PostID,
		ParentID: in.ParentID,
	}
	if err := s.commentRepo.CreateWithCount(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// UpdateComment replaces a comment's content in place. Only the author may
// edit; counters never change on edit.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	if err := s.policy.ValidateContent("Content", in.Content, s.contentTier(ctx, in.UserID)); err != nil {
		return nil, err
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes a comment and its entire descendant subtree. The
// subtree is sized by breadth-first traversal before the delete runs,
// because the cascading removal cannot report a count afterward; the
// owning post's comments_count then drops by the number of rows removed.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*DeleteCommentResult, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	ids, err := s.commentRepo.CollectSubtreeIDs(ctx, comment.ID)
	if err != nil {
		return nil, err
	}

	removed, err := s.commentRepo.DeleteSubtree(ctx, comment.PostID, ids)
	if err != nil {
		return nil, err
	}

	return &DeleteCommentResult{DeletedCount: removed}, nil
}

// ListComments returns one tier of a post's comment forest, newest first.
//
// When a viewer is present, their own comments are served ahead of
// everyone else's through an offset partition over two ordered sets: the
// first userCount offsets address the viewer's comments, every offset past
// that addresses the other-authors set shifted back by userCount. A page
// straddling the boundary takes the tail of the viewer's set and tops up
// from the head of the others. The mapping is a bijection: iterating
// offset by limit yields every comment in the tier exactly once, with no
// gaps or duplicates wherever the page boundaries fall.
func (s *CommentService) ListComments(ctx context.Context, in ListCommentsInput) (*models.CommentPage, error) {
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		return nil, err
	}

	total, err := s.commentRepo.CountTier(ctx, in.PostID, in.ParentID, repository.TierFilter{})
	if err != nil {
		return nil, err
	}

	page := &models.CommentPage{
		Comments: []*models.Comment{},
		Total:    total,
		Limit:    in.Limit,
		Offset:   in.Offset,
	}

	if in.ViewerID == 0 {
		comments, err := s.commentRepo.ListTier(ctx, in.PostID, in.ParentID, repository.TierFilter{}, in.Limit, in.Offset)
		if err != nil {
			return nil, err
		}
		page.Comments = comments
		return page, nil
	}

	own := repository.TierFilter{AuthorID: in.ViewerID}
	others := repository.TierFilter{AuthorID: in.ViewerID, Exclude: true}

	userCount64, err := s.commentRepo.CountTier(ctx, in.PostID, in.ParentID, own)
	if err != nil {
		return nil, err
	}
	userCount := int(userCount64)

	if in.Offset < userCount {
		viewerComments, err := s.commentRepo.ListTier(ctx, in.PostID, in.ParentID, own, in.Limit, in.Offset)
		if err != nil {
			return nil, err
		}
		page.Comments = viewerComments

		if remainder := in.Limit - len(viewerComments); remainder > 0 {
			rest, err := s.commentRepo.ListTier(ctx, in.PostID, in.ParentID, others, remainder, 0)
			if err != nil {
				return nil, err
			}
			page.Comments = append(page.Comments, rest...)
		}
		return page, nil
	}

	comments, err := s.commentRepo.ListTier(ctx, in.PostID, in.ParentID, others, in.Limit, in.Offset-userCount)
	if err != nil {
		return nil, err
	}
	page.Comments = comments
	return page, nil
}

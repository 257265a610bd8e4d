package service

import (
	"context"

	"tidepool/internal/models"
	"tidepool/internal/repository"
	"tidepool/internal/validation"
)

// PostService owns post creation, reads, edits, and deletion.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	policy   validation.ContentPolicy
}

// NewPostService creates a new PostService.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, policy validation.ContentPolicy) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo, policy: policy}
}

type CreatePostInput struct {
	UserID     uint
	Content    string
	ImageURL   string
	Visibility models.PostVisibility
}

type UpdatePostInput struct {
	UserID     uint
	PostID     uint
	Content    string
	ImageURL   string
	Visibility models.PostVisibility
}

func normalizeVisibility(v models.PostVisibility) (models.PostVisibility, error) {
	switch v {
	case "":
		return models.VisibilityPublic, nil
	case models.VisibilityPublic, models.VisibilityPrivate:
		return v, nil
	default:
		return "", models.NewValidationError("Visibility must be 'public' or 'private'")
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	visibility, err := normalizeVisibility(in.Visibility)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateContent("Content", in.Content, user.PlanTier); err != nil {
		return nil, err
	}

	post := &models.Post{
		Content:    in.Content,
		ImageURL:   in.ImageURL,
		UserID:     in.UserID,
		Visibility: visibility,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// GetPost returns a post. Private posts resolve only for their author;
// everyone else sees NOT_FOUND rather than a hint the post exists.
func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if post.Visibility == models.VisibilityPrivate && post.UserID != viewerID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}

	visibility, err := normalizeVisibility(in.Visibility)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.policy.ValidateContent("Content", in.Content, user.PlanTier); err != nil {
		return nil, err
	}

	post.Content = in.Content
	post.ImageURL = in.ImageURL
	post.Visibility = visibility
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// DeletePost removes a post along with its comment forest and likes.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// ListUserPosts returns a user's posts, restricted to public ones unless
// the viewer is the author.
func (s *PostService) ListUserPosts(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByUserID(ctx, userID, limit, offset, viewerID)
}

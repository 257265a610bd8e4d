package repository

import (
	"context"
	"errors"

	"tidepool/internal/cache"
	"tidepool/internal/models"
	"tidepool/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// applyLiked annotates posts with whether the current user liked them.
// The denormalized likes_count and comments_count columns are stored, so
// only the per-viewer flag needs computing.
func applyLiked(db *gorm.DB, currentUserID uint) *gorm.DB {
	if currentUserID != 0 {
		return db.Select(
			"posts.*, EXISTS(SELECT 1 FROM likes WHERE likes.target_type = 'post' AND likes.target_id = posts.id AND likes.user_id = ?) AS liked",
			currentUserID,
		)
	}
	return db.Select("posts.*, false AS liked")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	defer observability.TrackQuery("get", "posts")()

	var post models.Post
	var err error
	if currentUserID == 0 {
		// Anonymous reads share one cache entry; viewer-specific reads
		// bypass the cache because the liked flag differs per viewer.
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
			return applyLiked(r.db.WithContext(ctx), 0).Preload("User").First(&post, id).Error
		})
	} else {
		err = applyLiked(r.db.WithContext(ctx), currentUserID).Preload("User").First(&post, id).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	var posts []*models.Post
	q := applyLiked(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("user_id = ?", userID)
	if currentUserID != userID {
		q = q.Where("visibility = ?", models.VisibilityPublic)
	}
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListByAuthors returns public posts by any of the given authors, newest
// first. Both feed algorithms reduce to this query once their author sets
// are computed. The liked flag is left false here; the feed layer
// annotates it with one batch lookup instead of a per-row subquery.
func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return []*models.Post{}, nil
	}
	defer observability.TrackQuery("list_by_authors", "posts")()

	var posts []*models.Post
	err := applyLiked(r.db.WithContext(ctx), 0).
		Preload("User").
		Where("user_id IN ?", authorIDs).
		Where("visibility = ?", models.VisibilityPublic).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"content":    post.Content,
			"image_url":  post.ImageURL,
			"visibility": post.Visibility,
		}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete removes the post together with its whole comment forest and every
// like referencing the post or its comments. Deletion is physical.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, id); err != nil {
			return models.NewInternalError(err)
		}

		if err := tx.Where(
			"target_type = ? AND target_id IN (?)",
			models.LikeTargetComment,
			tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id),
		).Delete(&models.Like{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.LikeTargetPost, id).
			Delete(&models.Like{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return models.NewInternalError(err)
		}

		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, id)
	return nil
}

package repository

import (
	"context"
	"errors"

	"tidepool/internal/cache"
	"tidepool/internal/models"
	"tidepool/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// repliesCountSelect annotates each comment with the size of its direct
// reply tier. PostgreSQL and sqlite both allow the correlated subquery.
const repliesCountSelect = "comments.*, " +
	"(SELECT COUNT(*) FROM comments replies WHERE replies.parent_id = comments.id) AS replies_count"

// TierFilter restricts a tier query by author. The zero value applies no
// restriction; Exclude inverts the match.
type TierFilter struct {
	AuthorID uint
	Exclude  bool
}

// CommentRepository defines persistence operations for the comment forest.
type CommentRepository interface {
	CreateWithCount(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	ListTier(ctx context.Context, postID uint, parentID *uint, filter TierFilter, limit, offset int) ([]*models.Comment, error)
	CountTier(ctx context.Context, postID uint, parentID *uint, filter TierFilter) (int64, error)
	CollectSubtreeIDs(ctx context.Context, rootID uint) ([]uint, error)
	DeleteSubtree(ctx context.Context, postID uint, ids []uint) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository returns a new CommentRepository implementation.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// CreateWithCount inserts the comment and bumps the owning post's
// comments_count in the same transaction. The post and parent checks run
// inside the transaction so a reply to a comment deleted by a concurrent
// request is rejected instead of inserted into a vanished subtree.
func (r *commentRepository) CreateWithCount(ctx context.Context, comment *models.Comment) (err error) {
	defer observability.TrackQuery("create", "comments")()
	span, ctx := observability.NewSpan(ctx, "comments.create")
	defer func() {
		span.SetError(err)
		span.End()
	}()
	span.AddAttributes(attribute.Int("post.id", int(comment.PostID)))

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, comment.PostID); err != nil {
			return models.NewInternalError(err)
		}

		var post models.Post
		if err := tx.Select("id").First(&post, comment.PostID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", comment.PostID)
			}
			return models.NewInternalError(err)
		}

		if comment.ParentID != nil {
			var parent models.Comment
			if err := tx.Select("id", "post_id").First(&parent, *comment.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return models.NewNotFoundError("Comment", *comment.ParentID)
				}
				return models.NewInternalError(err)
			}
			// Cross-post parenting is rejected as if the parent did not exist.
			if parent.PostID != comment.PostID {
				return models.NewNotFoundError("Comment", *comment.ParentID)
			}
		}

		if err := tx.Create(comment).Error; err != nil {
			return models.NewInternalError(err)
		}

		if err := tx.Model(&models.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error; err != nil {
			return models.NewInternalError(err)
		}

		observability.CounterAdjustments.WithLabelValues("post_comments", "inc").Inc()
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidatePost(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Select(repliesCountSelect).
		Preload("User").
		First(&comment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", comment.ID).
		Update("content", comment.Content).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// applyTier narrows a comments query to one forest level of one post.
func applyTier(db *gorm.DB, postID uint, parentID *uint, filter TierFilter) *gorm.DB {
	db = db.Where("comments.post_id = ?", postID)
	if parentID == nil {
		db = db.Where("comments.parent_id IS NULL")
	} else {
		db = db.Where("comments.parent_id = ?", *parentID)
	}
	if filter.AuthorID != 0 {
		if filter.Exclude {
			db = db.Where("comments.user_id <> ?", filter.AuthorID)
		} else {
			db = db.Where("comments.user_id = ?", filter.AuthorID)
		}
	}
	return db
}

func (r *commentRepository) ListTier(ctx context.Context, postID uint, parentID *uint, filter TierFilter, limit, offset int) ([]*models.Comment, error) {
	defer observability.TrackQuery("list", "comments")()

	var comments []*models.Comment
	err := applyTier(r.db.WithContext(ctx).Model(&models.Comment{}), postID, parentID, filter).
		Select(repliesCountSelect).
		Preload("User").
		Order("comments.created_at DESC, comments.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}

func (r *commentRepository) CountTier(ctx context.Context, postID uint, parentID *uint, filter TierFilter) (int64, error) {
	var count int64
	err := applyTier(r.db.WithContext(ctx).Model(&models.Comment{}), postID, parentID, filter).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// CollectSubtreeIDs walks the "children of" relation breadth-first from
// rootID and returns the root plus every descendant. The iteration is
// batched per level and keeps a visited set, so it touches each comment at
// most once and handles arbitrarily deep or wide forests without recursion.
// The size must be known before the delete runs; cascade removal cannot
// report it afterward.
func (r *commentRepository) CollectSubtreeIDs(ctx context.Context, rootID uint) ([]uint, error) {
	defer observability.TrackQuery("collect_subtree", "comments")()
	span, ctx := observability.NewSpan(ctx, "comments.collect_subtree")
	defer span.End()

	visited := map[uint]struct{}{rootID: {}}
	ids := []uint{rootID}
	frontier := []uint{rootID}

	for len(frontier) > 0 {
		var children []uint
		err := r.db.WithContext(ctx).
			Model(&models.Comment{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &children).Error
		if err != nil {
			wrapped := models.NewInternalError(err)
			span.SetError(wrapped)
			return nil, wrapped
		}

		frontier = frontier[:0]
		for _, id := range children {
			if _, seen := visited[id]; seen {
				continue
			}
			visited[id] = struct{}{}
			ids = append(ids, id)
			frontier = append(frontier, id)
		}
	}

	span.AddAttributes(attribute.Int("comments.subtree_size", len(ids)))
	return ids, nil
}

// DeleteSubtree removes the given comment rows and decrements the owning
// post's comments_count by the number of rows actually deleted, all in one
// transaction. The decrement is a relative adjustment, never an absolute
// assignment, so concurrent non-overlapping deletes on the same post
// compose correctly. The per-post lock serializes overlapping-subtree
// deletes so the precomputed id set cannot double-decrement.
func (r *commentRepository) DeleteSubtree(ctx context.Context, postID uint, ids []uint) (removed int64, err error) {
	if len(ids) == 0 {
		return 0, nil
	}
	defer observability.TrackQuery("delete_subtree", "comments")()
	span, ctx := observability.NewSpan(ctx, "comments.delete_subtree")
	defer func() {
		span.SetError(err)
		span.End()
	}()
	span.AddAttributes(
		attribute.Int("post.id", int(postID)),
		attribute.Int("comments.subtree_size", len(ids)),
	)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID); err != nil {
			return models.NewInternalError(err)
		}

		if err := tx.Where("target_type = ? AND target_id IN ?", models.LikeTargetComment, ids).
			Delete(&models.Like{}).Error; err != nil {
			return models.NewInternalError(err)
		}

		res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		removed = res.RowsAffected
		if removed == 0 {
			return models.NewNotFoundError("Comment", ids[0])
		}

		if err := tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("comments_count", gorm.Expr("comments_count - ?", removed)).Error; err != nil {
			return models.NewInternalError(err)
		}

		observability.CounterAdjustments.WithLabelValues("post_comments", "dec").Inc()
		return nil
	})
	if err != nil {
		return 0, err
	}

	observability.SubtreeDeleteSize.Observe(float64(removed))
	cache.InvalidatePost(ctx, postID)
	return removed, nil
}

package repository

import (
	"context"
	"errors"

	"tidepool/internal/cache"
	"tidepool/internal/models"
	"tidepool/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository defines persistence operations for likes on posts and
// comments. Both mutations pair the relationship write with a relative
// adjustment of the target's denormalized likes_count inside one
// transaction.
type LikeRepository interface {
	Like(ctx context.Context, userID uint, targetType models.LikeTargetType, targetID uint) error
	Unlike(ctx context.Context, userID uint, targetType models.LikeTargetType, targetID uint) error
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// targetModel maps a like target to the table carrying its likes_count.
func targetModel(targetType models.LikeTargetType) (interface{}, string, error) {
	switch targetType {
	case models.LikeTargetPost:
		return &models.Post{}, "Post", nil
	case models.LikeTargetComment:
		return &models.Comment{}, "Comment", nil
	default:
		return nil, "", models.NewValidationError("Unknown like target type")
	}
}

func (r *likeRepository) Like(ctx context.Context, userID uint, targetType models.LikeTargetType, targetID uint) error {
	defer observability.TrackQuery("like", "likes")()

	model, resource, err := targetModel(targetType)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(model, targetID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError(resource, targetID)
			}
			return models.NewInternalError(err)
		}

		// Idempotency guard: a duplicate attempt is a conflict, never a
		// silent double count.
		var existing int64
		if err := tx.Model(&models.Like{}).
			Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
			Count(&existing).Error; err != nil {
			return models.NewInternalError(err)
		}
		if existing > 0 {
			return models.NewConflictError("Already liked")
		}

		like := &models.Like{UserID: userID, TargetType: targetType, TargetID: targetID}
		if err := tx.Create(like).Error; err != nil {
			// The unique index backs the guard under concurrent inserts.
			if isUniqueViolation(err) {
				return models.NewConflictError("Already liked")
			}
			return models.NewInternalError(err)
		}

		if err := tx.Model(model).
			Where("id = ?", targetID).
			UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
			return models.NewInternalError(err)
		}

		observability.CounterAdjustments.WithLabelValues(string(targetType)+"_likes", "inc").Inc()
		return nil
	})
	if err != nil {
		return err
	}

	if targetType == models.LikeTargetPost {
		cache.InvalidatePost(ctx, targetID)
	}
	return nil
}

func (r *likeRepository) Unlike(ctx context.Context, userID uint, targetType models.LikeTargetType, targetID uint) error {
	defer observability.TrackQuery("unlike", "likes")()

	model, resource, err := targetModel(targetType)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
			Delete(&models.Like{})
		if res.Error != nil {
			return models.NewInternalError(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError(resource+" like", targetID)
		}

		if err := tx.Model(model).
			Where("id = ?", targetID).
			UpdateColumn("likes_count", gorm.Expr("likes_count - ?", res.RowsAffected)).Error; err != nil {
			return models.NewInternalError(err)
		}

		observability.CounterAdjustments.WithLabelValues(string(targetType)+"_likes", "dec").Inc()
		return nil
	})
	if err != nil {
		return err
	}

	if targetType == models.LikeTargetPost {
		cache.InvalidatePost(ctx, targetID)
	}
	return nil
}

// LikedPostIDs returns which of the given posts the user liked, for batch
// liked-flag annotation on list reads.
func (r *likeRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if len(postIDs) == 0 {
		return nil, nil
	}
	var liked []uint
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", userID, models.LikeTargetPost, postIDs).
		Pluck("target_id", &liked).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return liked, nil
}

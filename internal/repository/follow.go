package repository

import (
	"context"
	"errors"

	"tidepool/internal/models"

	"gorm.io/gorm"
)

// FollowRepository defines persistence operations over the follow and
// block graphs. Feed composition reads the graph through the pluck
// helpers; no projection of the graph is cached anywhere.
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID uint) error
	Unfollow(ctx context.Context, followerID, followeeID uint) error
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error)
	FolloweeIDsOf(ctx context.Context, followerIDs []uint) ([]uint, error)
	FollowerIDs(ctx context.Context, followeeID uint) ([]uint, error)
	Block(ctx context.Context, blockerID, blockedID uint) error
	Unblock(ctx context.Context, blockerID, blockedID uint) error
	BlockedEitherWay(ctx context.Context, userID uint) ([]uint, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followeeID uint) error {
	var followee models.User
	if err := r.db.WithContext(ctx).Select("id").First(&followee, followeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", followeeID)
		}
		return models.NewInternalError(err)
	}

	edge := &models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Already following")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Follow", followeeID)
	}
	return nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// FolloweeIDs returns the viewer's direct-following set.
func (r *followRepository) FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// FolloweeIDsOf returns the distinct accounts followed by any member of
// followerIDs. Called with a direct-following set it yields the raw
// two-hop set.
func (r *followRepository) FolloweeIDsOf(ctx context.Context, followerIDs []uint) ([]uint, error) {
	if len(followerIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Distinct("followee_id").
		Where("follower_id IN ?", followerIDs).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, followeeID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", followeeID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) Block(ctx context.Context, blockerID, blockedID uint) error {
	var blocked models.User
	if err := r.db.WithContext(ctx).Select("id").First(&blocked, blockedID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("User", blockedID)
		}
		return models.NewInternalError(err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Block{BlockerID: blockerID, BlockedID: blockedID}).Error; err != nil {
			if isUniqueViolation(err) {
				return models.NewConflictError("Already blocked")
			}
			return models.NewInternalError(err)
		}

		// Blocking severs follow edges in both directions.
		if err := tx.Where(
			"(follower_id = ? AND followee_id = ?) OR (follower_id = ? AND followee_id = ?)",
			blockerID, blockedID, blockedID, blockerID,
		).Delete(&models.Follow{}).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	return err
}

func (r *followRepository) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Block", blockedID)
	}
	return nil
}

// BlockedEitherWay returns every user blocked by userID or blocking
// userID. Feeds subtract this set from their author candidates.
func (r *followRepository) BlockedEitherWay(ctx context.Context, userID uint) ([]uint, error) {
	var blocks []models.Block
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? OR blocked_id = ?", userID, userID).
		Find(&blocks).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	ids := make([]uint, 0, len(blocks))
	for _, b := range blocks {
		if b.BlockerID == userID {
			ids = append(ids, b.BlockedID)
		} else {
			ids = append(ids, b.BlockerID)
		}
	}
	return ids, nil
}

package service

import (
	"context"

	"tidepool/internal/models"
	"tidepool/internal/repository"
)

// EngagementService exposes like and unlike on posts and comments. The
// transactional pairing of the like row with the counter adjustment lives
// in the repository; this layer only validates the target kind.
type EngagementService struct {
	likeRepo repository.LikeRepository
}

// NewEngagementService creates a new EngagementService.
func NewEngagementService(likeRepo repository.LikeRepository) *EngagementService {
	return &EngagementService{likeRepo: likeRepo}
}

type LikeInput struct {
	UserID     uint
	TargetType models.LikeTargetType
	TargetID   uint
}

func (in LikeInput) validate() error {
	switch in.TargetType {
	case models.LikeTargetPost, models.LikeTargetComment:
		return nil
	default:
		return models.NewValidationError("Target type must be 'post' or 'comment'")
	}
}

// Like records a like. A duplicate attempt surfaces as CONFLICT.
func (s *EngagementService) Like(ctx context.Context, in LikeInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	return s.likeRepo.Like(ctx, in.UserID, in.TargetType, in.TargetID)
}

// Unlike removes a like. Unliking something never liked is NOT_FOUND.
func (s *EngagementService) Unlike(ctx context.Context, in LikeInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	return s.likeRepo.Unlike(ctx, in.UserID, in.TargetType, in.TargetID)
}

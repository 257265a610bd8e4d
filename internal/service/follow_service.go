package service

import (
	"context"

	"tidepool/internal/models"
	"tidepool/internal/repository"
)

// FollowService manages follow and block edges.
type FollowService struct {
	followRepo repository.FollowRepository
}

// NewFollowService creates a new FollowService.
func NewFollowService(followRepo repository.FollowRepository) *FollowService {
	return &FollowService{followRepo: followRepo}
}

func (s *FollowService) Follow(ctx context.Context, followerID, followeeID uint) error {
	if followerID == followeeID {
		return models.NewValidationError("You cannot follow yourself")
	}
	return s.followRepo.Follow(ctx, followerID, followeeID)
}

func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return s.followRepo.Unfollow(ctx, followerID, followeeID)
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.followRepo.IsFollowing(ctx, followerID, followeeID)
}

// Counts returns how many accounts follow the user and how many the user
// follows. Profiles surface both.
func (s *FollowService) Counts(ctx context.Context, userID uint) (followers, following int, err error) {
	followerIDs, err := s.followRepo.FollowerIDs(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	followeeIDs, err := s.followRepo.FolloweeIDs(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return len(followerIDs), len(followeeIDs), nil
}

func (s *FollowService) Block(ctx context.Context, blockerID, blockedID uint) error {
	if blockerID == blockedID {
		return models.NewValidationError("You cannot block yourself")
	}
	return s.followRepo.Block(ctx, blockerID, blockedID)
}

func (s *FollowService) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	return s.followRepo.Unblock(ctx, blockerID, blockedID)
}

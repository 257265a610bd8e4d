package service

import (
	"context"
	"errors"
	"testing"

	"tidepool/internal/models"
	"tidepool/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.Error(t, err)
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createWithCountFn   func(context.Context, *models.Comment) error
	getByIDFn           func(context.Context, uint) (*models.Comment, error)
	updateFn            func(context.Context, *models.Comment) error
	listTierFn          func(context.Context, uint, *uint, repository.TierFilter, int, int) ([]*models.Comment, error)
	countTierFn         func(context.Context, uint, *uint, repository.TierFilter) (int64, error)
	collectSubtreeIDsFn func(context.Context, uint) ([]uint, error)
	deleteSubtreeFn     func(context.Context, uint, []uint) (int64, error)
}

func (s *commentRepoStub) CreateWithCount(ctx context.Context, comment *models.Comment) error {
	return s.createWithCountFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) ListTier(ctx context.Context, postID uint, parentID *uint, filter repository.TierFilter, limit, offset int) ([]*models.Comment, error) {
	return s.listTierFn(ctx, postID, parentID, filter, limit, offset)
}
func (s *commentRepoStub) CountTier(ctx context.Context, postID uint, parentID *uint, filter repository.TierFilter) (int64, error) {
	return s.countTierFn(ctx, postID, parentID, filter)
}
func (s *commentRepoStub) CollectSubtreeIDs(ctx context.Context, rootID uint) ([]uint, error) {
	return s.collectSubtreeIDsFn(ctx, rootID)
}
func (s *commentRepoStub) DeleteSubtree(ctx context.Context, postID uint, ids []uint) (int64, error) {
	return s.deleteSubtreeFn(ctx, postID, ids)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createWithCountFn: func(_ context.Context, c *models.Comment) error {
			c.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id}, nil
		},
		updateFn: func(_ context.Context, _ *models.Comment) error { return nil },
		listTierFn: func(_ context.Context, _ uint, _ *uint, _ repository.TierFilter, _, _ int) ([]*models.Comment, error) {
			return nil, nil
		},
		countTierFn: func(_ context.Context, _ uint, _ *uint, _ repository.TierFilter) (int64, error) {
			return 0, nil
		},
		collectSubtreeIDsFn: func(_ context.Context, rootID uint) ([]uint, error) {
			return []uint{rootID}, nil
		},
		deleteSubtreeFn: func(_ context.Context, _ uint, ids []uint) (int64, error) {
			return int64(len(ids)), nil
		},
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint, uint) (*models.Post, error)
	getByUserIDFn   func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	listByAuthorsFn func(context.Context, []uint, int, int) ([]*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	deleteFn        func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) ListByAuthors(ctx context.Context, authorIDs []uint, limit, offset int) ([]*models.Post, error) {
	return s.listByAuthorsFn(ctx, authorIDs, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			return nil
		},
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, Visibility: models.VisibilityPublic}, nil
		},
		getByUserIDFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		listByAuthorsFn: func(_ context.Context, _ []uint, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn: func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, PlanTier: models.PlanTierFree}, nil
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", 0)
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", 0)
		},
		createFn: func(_ context.Context, u *models.User) error {
			u.ID = 1
			return nil
		},
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	likeFn         func(context.Context, uint, models.LikeTargetType, uint) error
	unlikeFn       func(context.Context, uint, models.LikeTargetType, uint) error
	likedPostIDsFn func(context.Context, uint, []uint) ([]uint, error)
}

func (s *likeRepoStub) Like(ctx context.Context, userID uint, targetType models.LikeTargetType, targetID uint) error {
	return s.likeFn(ctx, userID, targetType, targetID)
}
func (s *likeRepoStub) Unlike(ctx context.Context, userID uint, targetType models.LikeTargetType, targetID uint) error {
	return s.unlikeFn(ctx, userID, targetType, targetID)
}
func (s *likeRepoStub) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	return s.likedPostIDsFn(ctx, userID, postIDs)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		likeFn:         func(_ context.Context, _ uint, _ models.LikeTargetType, _ uint) error { return nil },
		unlikeFn:       func(_ context.Context, _ uint, _ models.LikeTargetType, _ uint) error { return nil },
		likedPostIDsFn: func(_ context.Context, _ uint, _ []uint) ([]uint, error) { return nil, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	followFn           func(context.Context, uint, uint) error
	unfollowFn         func(context.Context, uint, uint) error
	isFollowingFn      func(context.Context, uint, uint) (bool, error)
	followeeIDsFn      func(context.Context, uint) ([]uint, error)
	followeeIDsOfFn    func(context.Context, []uint) ([]uint, error)
	followerIDsFn      func(context.Context, uint) ([]uint, error)
	blockFn            func(context.Context, uint, uint) error
	unblockFn          func(context.Context, uint, uint) error
	blockedEitherWayFn func(context.Context, uint) ([]uint, error)
}

func (s *followRepoStub) Follow(ctx context.Context, followerID, followeeID uint) error {
	return s.followFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) Unfollow(ctx context.Context, followerID, followeeID uint) error {
	return s.unfollowFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error) {
	return s.followeeIDsFn(ctx, followerID)
}
func (s *followRepoStub) FolloweeIDsOf(ctx context.Context, followerIDs []uint) ([]uint, error) {
	return s.followeeIDsOfFn(ctx, followerIDs)
}
func (s *followRepoStub) FollowerIDs(ctx context.Context, followeeID uint) ([]uint, error) {
	return s.followerIDsFn(ctx, followeeID)
}
func (s *followRepoStub) Block(ctx context.Context, blockerID, blockedID uint) error {
	return s.blockFn(ctx, blockerID, blockedID)
}
func (s *followRepoStub) Unblock(ctx context.Context, blockerID, blockedID uint) error {
	return s.unblockFn(ctx, blockerID, blockedID)
}
func (s *followRepoStub) BlockedEitherWay(ctx context.Context, userID uint) ([]uint, error) {
	return s.blockedEitherWayFn(ctx, userID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		followFn:      func(_ context.Context, _, _ uint) error { return nil },
		unfollowFn:    func(_ context.Context, _, _ uint) error { return nil },
		isFollowingFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followeeIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		followeeIDsOfFn: func(_ context.Context, _ []uint) ([]uint, error) {
			return nil, nil
		},
		followerIDsFn:      func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		blockFn:            func(_ context.Context, _, _ uint) error { return nil },
		unblockFn:          func(_ context.Context, _, _ uint) error { return nil },
		blockedEitherWayFn: func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
	}
}

package service

import (
	"context"

	"tidepool/internal/models"
	"tidepool/internal/observability"
	"tidepool/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FeedService composes the two public feeds from the follow graph. Both
// algorithms are pure reads recomputed per request; no graph projection is
// cached anywhere.
type FeedService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	likeRepo   repository.LikeRepository
}

// NewFeedService creates a new FeedService.
func NewFeedService(postRepo repository.PostRepository, followRepo repository.FollowRepository, likeRepo repository.LikeRepository) *FeedService {
	return &FeedService{postRepo: postRepo, followRepo: followRepo, likeRepo: likeRepo}
}

// FollowingFeed returns public posts authored by accounts the viewer
// directly follows, never the viewer's own posts, newest first.
func (s *FeedService) FollowingFeed(ctx context.Context, viewerID uint, limit, offset int) (posts []*models.Post, err error) {
	defer observability.TrackFeed("following")()
	span, ctx := observability.NewSpan(ctx, "feed.following")
	defer func() {
		span.SetError(err)
		span.End()
	}()

	f1, err := s.followRepo.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(f1) == 0 {
		return []*models.Post{}, nil
	}

	excluded, err := s.excludedSet(ctx, viewerID, nil)
	if err != nil {
		return nil, err
	}

	authors := subtract(f1, excluded)
	if len(authors) == 0 {
		return []*models.Post{}, nil
	}
	span.AddAttributes(attribute.Int("feed.authors", len(authors)))

	posts, err = s.postRepo.ListByAuthors(ctx, authors, limit, offset)
	if err != nil {
		return nil, err
	}
	if err = s.annotateLiked(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DiscoveryFeed returns public posts from accounts two hops away: people
// followed by the viewer's followees, minus the viewer and everyone the
// viewer already follows. Already-followed authors belong in the
// following feed, not here.
func (s *FeedService) DiscoveryFeed(ctx context.Context, viewerID uint, limit, offset int) (posts []*models.Post, err error) {
	defer observability.TrackFeed("discovery")()
	span, ctx := observability.NewSpan(ctx, "feed.discovery")
	defer func() {
		span.SetError(err)
		span.End()
	}()

	f1, err := s.followRepo.FolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(f1) == 0 {
		// No direct follows means no basis for discovery.
		return []*models.Post{}, nil
	}

	f2raw, err := s.followRepo.FolloweeIDsOf(ctx, f1)
	if err != nil {
		return nil, err
	}
	if len(f2raw) == 0 {
		return []*models.Post{}, nil
	}

	excluded, err := s.excludedSet(ctx, viewerID, f1)
	if err != nil {
		return nil, err
	}

	f2 := subtract(f2raw, excluded)
	if len(f2) == 0 {
		return []*models.Post{}, nil
	}
	span.AddAttributes(attribute.Int("feed.authors", len(f2)))

	posts, err = s.postRepo.ListByAuthors(ctx, f2, limit, offset)
	if err != nil {
		return nil, err
	}
	if err = s.annotateLiked(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// annotateLiked marks the posts the viewer liked with one batch membership
// query instead of a per-row subquery in the list read.
func (s *FeedService) annotateLiked(ctx context.Context, viewerID uint, posts []*models.Post) error {
	if viewerID == 0 || len(posts) == 0 {
		return nil
	}

	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likedIDs, err := s.likeRepo.LikedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return err
	}

	liked := make(map[uint]struct{}, len(likedIDs))
	for _, id := range likedIDs {
		liked[id] = struct{}{}
	}
	for _, p := range posts {
		if _, ok := liked[p.ID]; ok {
			p.Liked = true
		}
	}
	return nil
}

// excludedSet collects the viewer, any extra ids, and every account
// blocked in either direction.
func (s *FeedService) excludedSet(ctx context.Context, viewerID uint, extra []uint) (map[uint]struct{}, error) {
	blocked, err := s.followRepo.BlockedEitherWay(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	excluded := make(map[uint]struct{}, len(extra)+len(blocked)+1)
	excluded[viewerID] = struct{}{}
	for _, id := range extra {
		excluded[id] = struct{}{}
	}
	for _, id := range blocked {
		excluded[id] = struct{}{}
	}
	return excluded, nil
}

// subtract returns the members of ids not present in excluded, keeping
// order and dropping duplicates.
func subtract(ids []uint, excluded map[uint]struct{}) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, skip := excluded[id]; skip {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFollowingFeed returns public posts from accounts the viewer follows,
// newest first (protected).
func (s *Server) GetFollowingFeed(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	posts, err := s.feedService.FollowingFeed(ctx, userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetDiscoveryFeed returns public posts from accounts two hops away in
// the follow graph (protected).
func (s *Server) GetDiscoveryFeed(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Locals("userID").(uint)
	p := parsePagination(c, 20)

	posts, err := s.feedService.DiscoveryFeed(ctx, userID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

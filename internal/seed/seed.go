// Package seed populates the database with demo data for development and
// testing.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"tidepool/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

// Seeder drives the full seeding pipeline through a Factory.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	rng     *rand.Rand
}

// NewSeeder creates a Seeder bound to the given DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll truncates every seeded table.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE notifications, likes, comments, posts, blocks, follows, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// Run seeds users, a follow mesh, posts, comment forests, and likes.
func (s *Seeder) Run(opts Options) error {
	log.Printf("🌱 Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	users, err := s.seedUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	follows, err := s.seedFollowMesh(users)
	if err != nil {
		return fmt.Errorf("failed to create follow mesh: %w", err)
	}
	log.Printf("✓ %d follow edges created", follows)

	posts, err := s.seedPosts(users, opts.NumPosts)
	if err != nil {
		return fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(posts))

	comments, err := s.seedCommentForests(users, posts)
	if err != nil {
		return fmt.Errorf("failed to create comments: %w", err)
	}
	log.Printf("✓ %d comments created", comments)

	likes, err := s.seedLikes(users, posts)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("✓ %d likes created", likes)

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func (s *Seeder) seedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		overrides := []func(*models.User){}
		// Roughly one in five users is on the plus tier.
		if s.rng.Intn(5) == 0 {
			overrides = append(overrides, func(u *models.User) {
				u.PlanTier = models.PlanTierPlus
			})
		}
		user, err := s.factory.CreateUser(overrides...)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// seedFollowMesh gives every user a handful of followees so the discovery
// feed has two-hop paths to traverse.
func (s *Seeder) seedFollowMesh(users []*models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	created := 0
	for _, follower := range users {
		targets := s.rng.Intn(6) + 2
		seen := map[uint]struct{}{follower.ID: {}}
		for t := 0; t < targets; t++ {
			followee := users[s.rng.Intn(len(users))]
			if _, dup := seen[followee.ID]; dup {
				continue
			}
			seen[followee.ID] = struct{}{}
			if err := s.factory.CreateFollow(follower, followee); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

func (s *Seeder) seedPosts(users []*models.User, n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.rng.Intn(len(users))]
		overrides := []func(*models.Post){}
		// A sprinkling of private posts exercises visibility filtering.
		if s.rng.Intn(10) == 0 {
			overrides = append(overrides, func(p *models.Post) {
				p.Visibility = models.VisibilityPrivate
			})
		}
		post, err := s.factory.CreatePost(author, overrides...)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// seedCommentForests grows a shallow reply tree under a subset of posts.
// Each comment may spawn replies with decaying probability, so some posts
// end up with multi-level forests and others stay bare.
func (s *Seeder) seedCommentForests(users []*models.User, posts []*models.Post) (int, error) {
	created := 0
	for _, post := range posts {
		if s.rng.Intn(3) == 0 {
			continue
		}
		top := s.rng.Intn(5) + 1
		for i := 0; i < top; i++ {
			author := users[s.rng.Intn(len(users))]
			comment, err := s.factory.CreateComment(author, post, nil)
			if err != nil {
				return created, err
			}
			created++
			n, err := s.growReplies(users, post, comment, 1)
			if err != nil {
				return created, err
			}
			created += n
		}
	}
	return created, nil
}

func (s *Seeder) growReplies(users []*models.User, post *models.Post, parent *models.Comment, depth int) (int, error) {
	if depth > 4 || s.rng.Intn(depth+1) != 0 {
		return 0, nil
	}
	created := 0
	replies := s.rng.Intn(3) + 1
	for i := 0; i < replies; i++ {
		author := users[s.rng.Intn(len(users))]
		reply, err := s.factory.CreateComment(author, post, &parent.ID)
		if err != nil {
			return created, err
		}
		created++
		n, err := s.growReplies(users, post, reply, depth+1)
		if err != nil {
			return created, err
		}
		created += n
	}
	return created, nil
}

func (s *Seeder) seedLikes(users []*models.User, posts []*models.Post) (int, error) {
	created := 0
	for _, post := range posts {
		likers := s.rng.Intn(len(users)/2 + 1)
		seen := map[uint]struct{}{}
		for i := 0; i < likers; i++ {
			user := users[s.rng.Intn(len(users))]
			if _, dup := seen[user.ID]; dup {
				continue
			}
			seen[user.ID] = struct{}{}
			if err := s.factory.CreatePostLike(user, post); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

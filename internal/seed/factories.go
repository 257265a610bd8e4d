package seed

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"tidepool/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db  *gorm.DB
	rng *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// CreateUser constructs and persists a sample user. Every seeded account
// shares the password "password123". Optional override functions may
// modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &models.User{
		Username: gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:    gofakeit.Email(),
		Password: string(hashed),
		Bio:      gofakeit.Sentence(10),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		PlanTier: models.PlanTierFree,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost constructs and persists a sample post for the given user with
// a realistic created_at spread over the past 90 days.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := &models.Post{
		Content:    gofakeit.Paragraph(1, 3, 5, "\n"),
		UserID:     user.ID,
		Visibility: models.VisibilityPublic,
	}
	if f.rng.Intn(3) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}

	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on the given post, optionally as a
// reply, and bumps the post's comment counter the way the write path does.
func (f *Factory) CreateComment(user *models.User, post *models.Post, parentID *uint) (*models.Comment, error) {
	comment := &models.Comment{
		Content:  gofakeit.Sentence(f.rng.Intn(15) + 3),
		UserID:   user.ID,
		PostID:   post.ID,
		ParentID: parentID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	err := f.db.Model(&models.Post{}).
		Where("id = ?", post.ID).
		UpdateColumn("comments_count", gorm.Expr("comments_count + ?", 1)).Error
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFollow persists a follow edge, ignoring duplicates.
func (f *Factory) CreateFollow(follower, followee *models.User) error {
	follow := &models.Follow{FollowerID: follower.ID, FolloweeID: followee.ID}
	err := f.db.Create(follow).Error
	if err != nil && isDuplicate(err) {
		return nil
	}
	return err
}

// CreatePostLike persists a like on a post and bumps its counter.
func (f *Factory) CreatePostLike(user *models.User, post *models.Post) error {
	like := &models.Like{
		UserID:     user.ID,
		TargetType: models.LikeTargetPost,
		TargetID:   post.ID,
	}
	if err := f.db.Create(like).Error; err != nil {
		if isDuplicate(err) {
			return nil
		}
		return err
	}
	return f.db.Model(&models.Post{}).
		Where("id = ?", post.ID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

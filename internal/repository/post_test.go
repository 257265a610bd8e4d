package repository

import (
	"context"
	"testing"

	"tidepool/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepositoryGetByID(t *testing.T) {
	db := setupTestDB(t)
	postRepo := NewPostRepository(db)
	likeRepo := NewLikeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")
	post := createTestPost(t, db, author.ID)

	require.NoError(t, likeRepo.Like(ctx, viewer.ID, models.LikeTargetPost, post.ID))

	t.Run("liked flag follows the viewer", func(t *testing.T) {
		forViewer, err := postRepo.GetByID(ctx, post.ID, viewer.ID)
		require.NoError(t, err)
		assert.True(t, forViewer.Liked)
		assert.Equal(t, 1, forViewer.LikesCount)

		forAuthor, err := postRepo.GetByID(ctx, post.ID, author.ID)
		require.NoError(t, err)
		assert.False(t, forAuthor.Liked)

		anonymous, err := postRepo.GetByID(ctx, post.ID, 0)
		require.NoError(t, err)
		assert.False(t, anonymous.Liked)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		_, err := postRepo.GetByID(ctx, 9999, viewer.ID)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestPostRepositoryGetByUserID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	viewer := createTestUser(t, db, "viewer")

	public := createTestPost(t, db, author.ID)
	private := &models.Post{Content: "secret", UserID: author.ID, Visibility: models.VisibilityPrivate}
	require.NoError(t, db.Create(private).Error)

	t.Run("other viewers see only public posts", func(t *testing.T) {
		posts, err := repo.GetByUserID(ctx, author.ID, 10, 0, viewer.ID)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, public.ID, posts[0].ID)
	})

	t.Run("the author sees private posts too", func(t *testing.T) {
		posts, err := repo.GetByUserID(ctx, author.ID, 10, 0, author.ID)
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	})
}

func TestPostRepositoryListByAuthors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	a := createTestUser(t, db, "a")
	b := createTestUser(t, db, "b")
	c := createTestUser(t, db, "c")

	pa := createTestPost(t, db, a.ID)
	pb := createTestPost(t, db, b.ID)
	createTestPost(t, db, c.ID)
	hidden := &models.Post{Content: "hidden", UserID: a.ID, Visibility: models.VisibilityPrivate}
	require.NoError(t, db.Create(hidden).Error)

	t.Run("only public posts by the given authors, newest first", func(t *testing.T) {
		posts, err := repo.ListByAuthors(ctx, []uint{a.ID, b.ID}, 10, 0)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, pb.ID, posts[0].ID)
		assert.Equal(t, pa.ID, posts[1].ID)
	})

	t.Run("empty author set returns an empty page", func(t *testing.T) {
		posts, err := repo.ListByAuthors(ctx, nil, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("pagination walks the merged list", func(t *testing.T) {
		first, err := repo.ListByAuthors(ctx, []uint{a.ID, b.ID, c.ID}, 2, 0)
		require.NoError(t, err)
		require.Len(t, first, 2)

		second, err := repo.ListByAuthors(ctx, []uint{a.ID, b.ID, c.ID}, 2, 2)
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.NotEqual(t, first[0].ID, second[0].ID)
		assert.NotEqual(t, first[1].ID, second[0].ID)
	})
}

func TestPostRepositoryDelete(t *testing.T) {
	db := setupTestDB(t)
	postRepo := NewPostRepository(db)
	commentRepo := NewCommentRepository(db)
	likeRepo := NewLikeRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	liker := createTestUser(t, db, "liker")
	post := createTestPost(t, db, author.ID)

	root := &models.Comment{Content: "root", UserID: author.ID, PostID: post.ID}
	require.NoError(t, commentRepo.CreateWithCount(ctx, root))
	reply := &models.Comment{Content: "reply", UserID: liker.ID, PostID: post.ID, ParentID: &root.ID}
	require.NoError(t, commentRepo.CreateWithCount(ctx, reply))
	require.NoError(t, likeRepo.Like(ctx, liker.ID, models.LikeTargetPost, post.ID))
	require.NoError(t, likeRepo.Like(ctx, liker.ID, models.LikeTargetComment, root.ID))

	require.NoError(t, postRepo.Delete(ctx, post.ID))

	_, err := postRepo.GetByID(ctx, post.ID, 0)
	assertAppErrorCode(t, err, models.CodeNotFound)

	assert.Zero(t, commentRows(t, db, post.ID))

	var likeCount int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likeCount).Error)
	assert.Zero(t, likeCount)

	err = postRepo.Delete(ctx, post.ID)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestPostRepositoryUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createTestUser(t, db, "author")
	post := createTestPost(t, db, author.ID)

	post.Content = "edited"
	post.Visibility = models.VisibilityPrivate
	require.NoError(t, repo.Update(ctx, post))

	reloaded, err := repo.GetByID(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", reloaded.Content)
	assert.Equal(t, models.VisibilityPrivate, reloaded.Visibility)
}

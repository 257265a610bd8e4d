package repository

import (
	"context"
	"errors"
	"testing"

	"tidepool/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.Error(t, err)
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestCommentRepositoryCreateWithCount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "author")
	post := createTestPost(t, db, user.ID)

	t.Run("root comment bumps the post counter", func(t *testing.T) {
		comment := &models.Comment{Content: "first", UserID: user.ID, PostID: post.ID}
		err := repo.CreateWithCount(ctx, comment)
		assert.NoError(t, err)
		assert.NotZero(t, comment.ID)
		assert.Equal(t, 1, postCommentsCount(t, db, post.ID))
	})

	t.Run("reply counts toward the same post counter", func(t *testing.T) {
		var root models.Comment
		require.NoError(t, db.Where("post_id = ?", post.ID).First(&root).Error)

		reply := &models.Comment{Content: "reply", UserID: user.ID, PostID: post.ID, ParentID: &root.ID}
		err := repo.CreateWithCount(ctx, reply)
		assert.NoError(t, err)
		assert.Equal(t, 2, postCommentsCount(t, db, post.ID))
	})

	t.Run("missing post is rejected", func(t *testing.T) {
		comment := &models.Comment{Content: "orphan", UserID: user.ID, PostID: 9999}
		err := repo.CreateWithCount(ctx, comment)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("missing parent is rejected", func(t *testing.T) {
		missing := uint(9999)
		comment := &models.Comment{Content: "reply", UserID: user.ID, PostID: post.ID, ParentID: &missing}
		err := repo.CreateWithCount(ctx, comment)
		assertAppErrorCode(t, err, models.CodeNotFound)
		assert.Equal(t, 2, postCommentsCount(t, db, post.ID))
	})

	t.Run("parent on a different post is rejected", func(t *testing.T) {
		other := createTestPost(t, db, user.ID)
		foreign := &models.Comment{Content: "elsewhere", UserID: user.ID, PostID: other.ID}
		require.NoError(t, repo.CreateWithCount(ctx, foreign))

		comment := &models.Comment{Content: "cross", UserID: user.ID, PostID: post.ID, ParentID: &foreign.ID}
		err := repo.CreateWithCount(ctx, comment)
		assertAppErrorCode(t, err, models.CodeNotFound)
		assert.Equal(t, 2, postCommentsCount(t, db, post.ID))
	})
}

func TestCommentRepositoryGetByID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "reader")
	post := createTestPost(t, db, user.ID)

	root := &models.Comment{Content: "root", UserID: user.ID, PostID: post.ID}
	require.NoError(t, repo.CreateWithCount(ctx, root))
	for i := 0; i < 3; i++ {
		reply := &models.Comment{Content: "reply", UserID: user.ID, PostID: post.ID, ParentID: &root.ID}
		require.NoError(t, repo.CreateWithCount(ctx, reply))
	}

	fetched, err := repo.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, fetched.RepliesCount)
	assert.Equal(t, user.ID, fetched.User.ID)

	_, err = repo.GetByID(ctx, 9999)
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func TestCommentRepositoryListTier(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID)

	// Three roots with one reply under the first root. Creation order gives
	// ascending ids, so newest-first means descending id.
	roots := make([]*models.Comment, 3)
	for i := range roots {
		author := alice
		if i == 1 {
			author = bob
		}
		roots[i] = &models.Comment{Content: "root", UserID: author.ID, PostID: post.ID}
		require.NoError(t, repo.CreateWithCount(ctx, roots[i]))
	}
	reply := &models.Comment{Content: "reply", UserID: bob.ID, PostID: post.ID, ParentID: &roots[0].ID}
	require.NoError(t, repo.CreateWithCount(ctx, reply))

	t.Run("top tier excludes replies and orders newest first", func(t *testing.T) {
		comments, err := repo.ListTier(ctx, post.ID, nil, TierFilter{}, 10, 0)
		require.NoError(t, err)
		require.Len(t, comments, 3)
		assert.Equal(t, roots[2].ID, comments[0].ID)
		assert.Equal(t, roots[1].ID, comments[1].ID)
		assert.Equal(t, roots[0].ID, comments[2].ID)
		assert.Equal(t, 1, comments[2].RepliesCount)
	})

	t.Run("reply tier is scoped to its parent", func(t *testing.T) {
		comments, err := repo.ListTier(ctx, post.ID, &roots[0].ID, TierFilter{}, 10, 0)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, reply.ID, comments[0].ID)
	})

	t.Run("author filter selects and excludes", func(t *testing.T) {
		own, err := repo.ListTier(ctx, post.ID, nil, TierFilter{AuthorID: bob.ID}, 10, 0)
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.Equal(t, roots[1].ID, own[0].ID)

		others, err := repo.ListTier(ctx, post.ID, nil, TierFilter{AuthorID: bob.ID, Exclude: true}, 10, 0)
		require.NoError(t, err)
		assert.Len(t, others, 2)
	})

	t.Run("counts match the filters", func(t *testing.T) {
		total, err := repo.CountTier(ctx, post.ID, nil, TierFilter{})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)

		own, err := repo.CountTier(ctx, post.ID, nil, TierFilter{AuthorID: bob.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, own)
	})
}

func TestCommentRepositoryCollectSubtreeIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "forester")
	post := createTestPost(t, db, user.ID)

	// Branching 3, depth 5: 1 + 3 + 9 + 27 + 81 = 121 nodes.
	root := &models.Comment{Content: "root", UserID: user.ID, PostID: post.ID}
	require.NoError(t, repo.CreateWithCount(ctx, root))
	expected := map[uint]struct{}{root.ID: {}}

	level := []*models.Comment{root}
	for d := 0; d < 4; d++ {
		var next []*models.Comment
		for _, parent := range level {
			for b := 0; b < 3; b++ {
				child := &models.Comment{Content: "node", UserID: user.ID, PostID: post.ID, ParentID: &parent.ID}
				require.NoError(t, repo.CreateWithCount(ctx, child))
				expected[child.ID] = struct{}{}
				next = append(next, child)
			}
		}
		level = next
	}
	require.Equal(t, 121, len(expected))

	ids, err := repo.CollectSubtreeIDs(ctx, root.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 121)
	for _, id := range ids {
		_, ok := expected[id]
		assert.True(t, ok, "unexpected id %d in subtree", id)
	}

	// A mid-tree node yields only its own branch: 1 + 3 + 9 + 27 = 40.
	var mid models.Comment
	require.NoError(t, db.Where("parent_id = ?", root.ID).First(&mid).Error)
	branch, err := repo.CollectSubtreeIDs(ctx, mid.ID)
	require.NoError(t, err)
	assert.Len(t, branch, 40)

	// A leaf yields just itself.
	leaf := level[0]
	single, err := repo.CollectSubtreeIDs(ctx, leaf.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{leaf.ID}, single)
}

func TestCommentRepositoryDeleteSubtree(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	user := createTestUser(t, db, "deleter")
	post := createTestPost(t, db, user.ID)

	// R with children C1, C2; C1 has grandchild G. Counter is 4.
	r := &models.Comment{Content: "R", UserID: user.ID, PostID: post.ID}
	require.NoError(t, repo.CreateWithCount(ctx, r))
	c1 := &models.Comment{Content: "C1", UserID: user.ID, PostID: post.ID, ParentID: &r.ID}
	require.NoError(t, repo.CreateWithCount(ctx, c1))
	c2 := &models.Comment{Content: "C2", UserID: user.ID, PostID: post.ID, ParentID: &r.ID}
	require.NoError(t, repo.CreateWithCount(ctx, c2))
	g := &models.Comment{Content: "G", UserID: user.ID, PostID: post.ID, ParentID: &c1.ID}
	require.NoError(t, repo.CreateWithCount(ctx, g))
	require.Equal(t, 4, postCommentsCount(t, db, post.ID))

	t.Run("deleting a mid-tree comment removes its branch only", func(t *testing.T) {
		ids, err := repo.CollectSubtreeIDs(ctx, c1.ID)
		require.NoError(t, err)
		require.Len(t, ids, 2)

		removed, err := repo.DeleteSubtree(ctx, post.ID, ids)
		require.NoError(t, err)
		assert.EqualValues(t, 2, removed)
		assert.Equal(t, 2, postCommentsCount(t, db, post.ID))
		assert.EqualValues(t, 2, commentRows(t, db, post.ID))

		// R and C2 survive.
		_, err = repo.GetByID(ctx, r.ID)
		assert.NoError(t, err)
		_, err = repo.GetByID(ctx, c2.ID)
		assert.NoError(t, err)
		_, err = repo.GetByID(ctx, g.ID)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("comment likes are removed with the subtree", func(t *testing.T) {
		liker := createTestUser(t, db, "liker")
		require.NoError(t, db.Create(&models.Like{
			UserID: liker.ID, TargetType: models.LikeTargetComment, TargetID: c2.ID,
		}).Error)

		ids, err := repo.CollectSubtreeIDs(ctx, c2.ID)
		require.NoError(t, err)
		removed, err := repo.DeleteSubtree(ctx, post.ID, ids)
		require.NoError(t, err)
		assert.EqualValues(t, 1, removed)

		var likeCount int64
		require.NoError(t, db.Model(&models.Like{}).
			Where("target_type = ? AND target_id = ?", models.LikeTargetComment, c2.ID).
			Count(&likeCount).Error)
		assert.Zero(t, likeCount)
		assert.Equal(t, 1, postCommentsCount(t, db, post.ID))
	})

	t.Run("deleting an already-deleted subtree is not found", func(t *testing.T) {
		_, err := repo.DeleteSubtree(ctx, post.ID, []uint{c1.ID, g.ID})
		assertAppErrorCode(t, err, models.CodeNotFound)
		assert.Equal(t, 1, postCommentsCount(t, db, post.ID))
	})

	t.Run("empty id set is a no-op", func(t *testing.T) {
		removed, err := repo.DeleteSubtree(ctx, post.ID, nil)
		assert.NoError(t, err)
		assert.Zero(t, removed)
	})
}

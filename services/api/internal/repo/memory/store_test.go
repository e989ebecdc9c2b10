package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ repo.Store = (*Store)(nil)

func seed(t *testing.T, s *Store) (*entity.User, *entity.Post) {
	t.Helper()
	ctx := context.Background()
	user := &entity.User{Username: "alice", Email: "alice@uni.test", Role: entity.RoleStudent}
	require.NoError(t, s.Users().Create(ctx, user))
	post := &entity.Post{AuthorID: user.ID, Content: "hello"}
	require.NoError(t, s.Posts().Create(ctx, post))
	return user, post
}

func TestUsers_Unique(t *testing.T) {
	s := NewStore()
	seed(t, s)

	err := s.Users().Create(context.Background(), &entity.User{Username: "alice", Email: "x@uni.test"})
	assert.ErrorIs(t, err, repo.ErrConflict)

	err = s.Users().Create(context.Background(), &entity.User{Username: "alicia", Email: "alice@uni.test"})
	assert.ErrorIs(t, err, repo.ErrConflict)
}

func TestReturnsCopies(t *testing.T) {
	s := NewStore()
	_, post := seed(t, s)

	got, err := s.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	got.LikeCount = 99

	again, err := s.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Zero(t, again.LikeCount)
}

func TestTransaction_RollbackRestoresEverything(t *testing.T) {
	s := NewStore()
	user, post := seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Comments().Create(ctx, &entity.Comment{PostID: post.ID, UserID: user.ID, Content: "hi"}))
	_, err := s.Posts().AddCommentCount(ctx, post.ID, 1)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.Transaction(ctx, func(tx repo.Store) error {
		if _, err := tx.Likes().Insert(ctx, &entity.Like{UserID: user.ID, PostID: post.ID}); err != nil {
			return err
		}
		if _, err := tx.Posts().AddLikeCount(ctx, post.ID, 1); err != nil {
			return err
		}
		if _, err := tx.Comments().DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		if _, err := tx.Posts().Delete(ctx, post.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LikeCount)
	assert.Equal(t, int64(1), got.CommentCount)

	likes, _ := s.Likes().CountByPost(ctx, post.ID)
	comments, _ := s.Comments().CountByPost(ctx, post.ID)
	assert.Zero(t, likes)
	assert.Equal(t, int64(1), comments)
}

func TestTransaction_NestedFailureOnlyUndoesInner(t *testing.T) {
	s := NewStore()
	user, post := seed(t, s)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx repo.Store) error {
		if _, err := tx.Posts().AddLikeCount(ctx, post.ID, 1); err != nil {
			return err
		}
		inner := tx.Transaction(ctx, func(tx repo.Store) error {
			_, _ = tx.Likes().Insert(ctx, &entity.Like{UserID: user.ID, PostID: post.ID})
			return errors.New("inner")
		})
		assert.Error(t, inner)
		return nil
	})
	require.NoError(t, err)

	got, _ := s.Posts().GetByID(ctx, post.ID)
	assert.Equal(t, int64(1), got.LikeCount)
	exists, _ := s.Likes().Exists(ctx, user.ID, post.ID)
	assert.False(t, exists)
}

func TestTransaction_CanceledContextRollsBack(t *testing.T) {
	s := NewStore()
	_, post := seed(t, s)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.Transaction(ctx, func(tx repo.Store) error {
		_, err := tx.Posts().AddLikeCount(ctx, post.ID, 1)
		cancel()
		return err
	})
	assert.ErrorIs(t, err, context.Canceled)

	got, _ := s.Posts().GetByID(context.Background(), post.ID)
	assert.Zero(t, got.LikeCount)
}

func TestPosts_NewestFirstAndPaging(t *testing.T) {
	s := NewStore()
	user, first := seed(t, s)
	ctx := context.Background()

	second := &entity.Post{AuthorID: user.ID, Content: "second"}
	require.NoError(t, s.Posts().Create(ctx, second))

	posts, total, err := s.Posts().List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, posts, 1)
	assert.Equal(t, second.ID, posts[0].ID)

	posts, _, err = s.Posts().ListByAuthor(ctx, user.ID, 10, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, first.ID, posts[0].ID)

	posts, _, err = s.Posts().List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestPosts_CounterFloor(t *testing.T) {
	s := NewStore()
	_, post := seed(t, s)

	n, err := s.Posts().AddLikeCount(context.Background(), post.ID, -1)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.Posts().AddLikeCount(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestTransaction_HoldsOffOutsideCalls(t *testing.T) {
	s := NewStore()
	user, post := seed(t, s)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.Transaction(ctx, func(tx repo.Store) error {
			close(entered)
			<-release
			if _, err := tx.Likes().DeleteByPost(ctx, post.ID); err != nil {
				return err
			}
			_, err := tx.Posts().Delete(ctx, post.ID)
			return err
		})
	}()
	<-entered

	insertDone := make(chan error, 1)
	go func() {
		_, err := s.Likes().Insert(ctx, &entity.Like{UserID: user.ID, PostID: post.ID})
		insertDone <- err
	}()

	select {
	case <-insertDone:
		t.Fatal("insert ran while a transaction was open")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-txDone)
	assert.ErrorIs(t, <-insertDone, repo.ErrNotFound)

	n, err := s.Likes().CountByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEdges_RequireExistingRows(t *testing.T) {
	s := NewStore()
	user, post := seed(t, s)
	ctx := context.Background()

	_, err := s.Likes().Insert(ctx, &entity.Like{UserID: "ghost", PostID: post.ID})
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = s.Likes().Insert(ctx, &entity.Like{UserID: user.ID, PostID: "gone"})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	err = s.Comments().Create(ctx, &entity.Comment{UserID: "ghost", PostID: post.ID, Content: "hi"})
	assert.ErrorIs(t, err, repo.ErrNotFound)

	err = s.Posts().Create(ctx, &entity.Post{AuthorID: "ghost", Content: "hi"})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

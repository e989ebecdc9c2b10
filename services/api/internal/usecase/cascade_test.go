package usecase

import (
	"context"
	"errors"
	"testing"

	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCascade_DeletePost(t *testing.T) {
	store := newMemoryStore()
	alice := createUser(t, store, "alice", entity.RoleStudent)
	bob := createUser(t, store, "bob", entity.RoleStudent)
	post := createPost(t, store, alice, "hello")
	other := createPost(t, store, alice, "other")
	interactions := NewInteractionUseCase(store, nil, nopLogger())
	ctx := context.Background()

	for _, p := range []*entity.Post{post, other} {
		_, err := interactions.ToggleLike(ctx, bob, p.ID)
		require.NoError(t, err)
		_, err = interactions.AddComment(ctx, bob, p.ID, "hi")
		require.NoError(t, err)
	}

	cascade := NewCascadePolicy(nopLogger())
	require.NoError(t, store.Transaction(ctx, func(tx repo.Store) error {
		return cascade.DeletePost(ctx, tx, post.ID)
	}))

	_, err := store.Posts().GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	likes, _ := store.Likes().CountByPost(ctx, post.ID)
	comments, _ := store.Comments().CountByPost(ctx, post.ID)
	assert.Zero(t, likes)
	assert.Zero(t, comments)

	assertCountersMatch(t, store, other.ID)

	err = store.Transaction(ctx, func(tx repo.Store) error {
		return cascade.DeletePost(ctx, tx, post.ID)
	})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestCascade_DeleteUser(t *testing.T) {
	store := newMemoryStore()
	alice := createUser(t, store, "alice", entity.RoleStudent)
	bob := createUser(t, store, "bob", entity.RoleStudent)
	carol := createUser(t, store, "carol", entity.RoleClub)
	ctx := context.Background()

	bobsPost := createPost(t, store, bob, "bob's")
	alicePost := createPost(t, store, alice, "alice's")
	carolPost := createPost(t, store, carol, "carol's")

	interactions := NewInteractionUseCase(store, nil, nopLogger())
	for _, p := range []*entity.Post{alicePost, carolPost} {
		_, err := interactions.ToggleLike(ctx, bob, p.ID)
		require.NoError(t, err)
		_, err = interactions.AddComment(ctx, bob, p.ID, "one")
		require.NoError(t, err)
		_, err = interactions.AddComment(ctx, bob, p.ID, "two")
		require.NoError(t, err)
	}
	_, err := interactions.ToggleLike(ctx, carol, alicePost.ID)
	require.NoError(t, err)
	_, err = interactions.AddComment(ctx, alice, bobsPost.ID, "on bob's post")
	require.NoError(t, err)

	var result *CascadeResult
	cascade := NewCascadePolicy(nopLogger())
	require.NoError(t, store.Transaction(ctx, func(tx repo.Store) error {
		var err error
		result, err = cascade.DeleteUser(ctx, tx, bob.ID)
		return err
	}))

	assert.Equal(t, []string{bobsPost.ID}, result.DeletedPosts)
	assert.ElementsMatch(t, []string{alicePost.ID, carolPost.ID}, result.AdjustedPosts)
	assert.Len(t, result.Touched(), 3)

	_, err = store.Users().GetByID(ctx, bob.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = store.Posts().GetByID(ctx, bobsPost.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	assertCountersMatch(t, store, alicePost.ID, carolPost.ID)
	got, _ := store.Posts().GetByID(ctx, alicePost.ID)
	assert.Equal(t, int64(1), got.LikeCount, "carol's like stays")
	assert.Zero(t, got.CommentCount)

	ids, _ := store.Likes().PostIDsByUser(ctx, bob.ID)
	assert.Empty(t, ids)
}

func TestCascade_DeleteUserIsAtomic(t *testing.T) {
	store := newMemoryStore()
	alice := createUser(t, store, "alice", entity.RoleStudent)
	bob := createUser(t, store, "bob", entity.RoleStudent)
	post := createPost(t, store, alice, "hello")
	ctx := context.Background()

	_, err := NewInteractionUseCase(store, nil, nopLogger()).ToggleLike(ctx, bob, post.ID)
	require.NoError(t, err)

	boom := errors.New("boom")
	cascade := NewCascadePolicy(nopLogger())
	err = store.Transaction(ctx, func(tx repo.Store) error {
		if _, err := cascade.DeleteUser(ctx, tx, bob.ID); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Users().GetByID(ctx, bob.ID)
	assert.NoError(t, err)
	liked, _ := store.Likes().Exists(ctx, bob.ID, post.ID)
	assert.True(t, liked)
	assertCountersMatch(t, store, post.ID)
}

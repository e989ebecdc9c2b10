package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"unievent/pkg/apperror"
	"unievent/services/api/internal/entity"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike_LikeThenUnlike(t *testing.T) {
	store := newMemoryStore()
	alice := createUser(t, store, "alice", entity.RoleStudent)
	bob := createUser(t, store, "bob", entity.RoleStudent)
	post := createPost(t, store, alice, "hello")
	uc := NewInteractionUseCase(store, nil, nopLogger())
	ctx := context.Background()

	result, err := uc.ToggleLike(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.Liked, result.State)
	assert.True(t, result.Liked)
	assert.Equal(t, int64(1), result.LikeCount)

	liked, err := uc.IsLiked(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	result, err = uc.ToggleLike(ctx, bob, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.Unliked, result.State)
	assert.False(t, result.Liked)
	assert.Equal(t, int64(0), result.LikeCount)

	assertCountersMatch(t, store, post.ID)
}

func TestToggleLike_Errors(t *testing.T) {
	store := newMemoryStore()
	bob := createUser(t, store, "bob", entity.RoleStudent)
	uc := NewInteractionUseCase(store, nil, nopLogger())

	_, err := uc.ToggleLike(context.Background(), bob, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = uc.ToggleLike(context.Background(), nil, "missing")
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = uc.IsLiked(context.Background(), bob, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestToggleLike_RetriesConflicts(t *testing.T) {
	mem := newMemoryStore()
	alice := createUser(t, mem, "alice", entity.RoleStudent)
	post := createPost(t, mem, alice, "hello")

	store := &conflictStore{Store: mem, fails: 2}
	uc := NewInteractionUseCase(store, nil, nopLogger())

	result, err := uc.ToggleLike(context.Background(), alice, post.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.Liked, result.State)
	assert.Equal(t, int64(1), result.LikeCount)
	assert.Equal(t, 3, store.calls)
	assertCountersMatch(t, mem, post.ID)
}

func TestToggleLike_GivesUpAfterBoundedRetries(t *testing.T) {
	mem := newMemoryStore()
	alice := createUser(t, mem, "alice", entity.RoleStudent)
	post := createPost(t, mem, alice, "hello")

	store := &conflictStore{Store: mem, fails: 100}
	uc := NewInteractionUseCase(store, nil, nopLogger())

	_, err := uc.ToggleLike(context.Background(), alice, post.ID)
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
	assert.Equal(t, maxTxAttempts, store.calls)

	// Every attempt rolled back.
	assertCountersMatch(t, mem, post.ID)
	got, err := mem.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.LikeCount)
}

// Two processes each toggle from Absent at the same moment, so both read the
// edge as missing. Exactly one edge and one increment survive.
func TestToggleLike_ConcurrentFromAbsent(t *testing.T) {
	mem := newMemoryStore()
	alice := createUser(t, mem, "alice", entity.RoleStudent)
	bob := createUser(t, mem, "bob", entity.RoleStudent)
	post := createPost(t, mem, alice, "hello")

	store := &staleStore{Store: mem, liked: false}
	first := NewInteractionUseCase(store, nil, nopLogger())
	second := NewInteractionUseCase(store, nil, nopLogger())

	results := make([]*entity.LikeResult, 2)
	var wg conc.WaitGroup
	for i, uc := range []InteractionUseCase{first, second} {
		i, uc := i, uc
		wg.Go(func() {
			result, err := uc.ToggleLike(context.Background(), bob, post.ID)
			if assert.NoError(t, err) {
				results[i] = result
			}
		})
	}
	wg.Wait()

	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, entity.Liked, r.State)
	}
	liked, _ := mem.Likes().Exists(context.Background(), bob.ID, post.ID)
	assert.True(t, liked)
	assertCountersMatch(t, mem, post.ID)
	got, _ := mem.Posts().GetByID(context.Background(), post.ID)
	assert.Equal(t, int64(1), got.LikeCount)
}

func TestToggleLike_ConcurrentFromPresent(t *testing.T) {
	mem := newMemoryStore()
	alice := createUser(t, mem, "alice", entity.RoleStudent)
	bob := createUser(t, mem, "bob", entity.RoleStudent)
	post := createPost(t, mem, alice, "hello")

	_, err := NewInteractionUseCase(mem, nil, nopLogger()).ToggleLike(context.Background(), bob, post.ID)
	require.NoError(t, err)

	store := &staleStore{Store: mem, liked: true}
	var wg conc.WaitGroup
	for i := 0; i < 2; i++ {
		uc := NewInteractionUseCase(store, nil, nopLogger())
		wg.Go(func() {
			result, err := uc.ToggleLike(context.Background(), bob, post.ID)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, entity.Unliked, result.State)
		})
	}
	wg.Wait()

	liked, _ := mem.Likes().Exists(context.Background(), bob.ID, post.ID)
	assert.False(t, liked)
	assertCountersMatch(t, mem, post.ID)
}

// A duplicate toggle arriving while the first is in flight shares its result
// instead of flipping the edge back.
func TestToggleLike_CoalescesDuplicates(t *testing.T) {
	mem := newMemoryStore()
	alice := createUser(t, mem, "alice", entity.RoleStudent)
	bob := createUser(t, mem, "bob", entity.RoleStudent)
	post := createPost(t, mem, alice, "hello")

	store := &gatedStore{Store: mem, gate: newBarrier(2, 100*time.Millisecond)}
	uc := NewInteractionUseCase(store, nil, nopLogger())

	var wg conc.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Go(func() {
			result, err := uc.ToggleLike(context.Background(), bob, post.ID)
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, entity.Liked, result.State)
			assert.Equal(t, int64(1), result.LikeCount)
		})
	}
	wg.Wait()

	assertCountersMatch(t, mem, post.ID)
}

func TestToggleLike_ManyUsersKeepCountersExact(t *testing.T) {
	store := newMemoryStore()
	author := createUser(t, store, "author", entity.RoleClub)
	posts := []*entity.Post{
		createPost(t, store, author, "one"),
		createPost(t, store, author, "two"),
	}

	engines := []InteractionUseCase{
		NewInteractionUseCase(store, nil, nopLogger()),
		NewInteractionUseCase(store, nil, nopLogger()),
	}

	p := pool.New().WithErrors().WithMaxGoroutines(8)
	for i := 0; i < 16; i++ {
		user := createUser(t, store, fmt.Sprintf("user%02d", i), entity.RoleStudent)
		uc := engines[i%len(engines)]
		toggles := i%4 + 1
		p.Go(func() error {
			for n := 0; n < toggles; n++ {
				for _, post := range posts {
					if _, err := uc.ToggleLike(context.Background(), user, post.ID); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, p.Wait())

	assertCountersMatch(t, store, posts[0].ID, posts[1].ID)
	got, err := store.Posts().GetByID(context.Background(), posts[0].ID)
	require.NoError(t, err)
	// Users with an odd number of toggles end up liking the post.
	assert.Equal(t, int64(8), got.LikeCount)
}

func TestComments_AddListDelete(t *testing.T) {
	store := newMemoryStore()
	alice := createUser(t, store, "alice", entity.RoleStudent)
	bob := createUser(t, store, "bob", entity.RoleStudent)
	admin := createUser(t, store, "root", entity.RoleAdmin)
	post := createPost(t, store, alice, "hello")
	uc := NewInteractionUseCase(store, nil, nopLogger())
	ctx := context.Background()

	first, err := uc.AddComment(ctx, bob, post.ID, "  nice  ")
	require.NoError(t, err)
	assert.Equal(t, "nice", first.Content)
	require.NotNil(t, first.Author)
	assert.Equal(t, "bob", first.Author.Username)

	second, err := uc.AddComment(ctx, bob, post.ID, "see you there")
	require.NoError(t, err)
	assertCountersMatch(t, store, post.ID)

	page, err := uc.ListComments(ctx, post.ID, entity.PageRequest{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID)

	err = uc.DeleteComment(ctx, alice, post.ID, first.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	err = uc.DeleteComment(ctx, bob, "other-post", first.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, uc.DeleteComment(ctx, bob, post.ID, first.ID))
	require.NoError(t, uc.DeleteComment(ctx, admin, post.ID, second.ID))
	assertCountersMatch(t, store, post.ID)

	err = uc.DeleteComment(ctx, bob, post.ID, first.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAddComment_Validation(t *testing.T) {
	store := newMemoryStore()
	alice := createUser(t, store, "alice", entity.RoleStudent)
	post := createPost(t, store, alice, "hello")
	uc := NewInteractionUseCase(store, nil, nopLogger())

	_, err := uc.AddComment(context.Background(), alice, post.ID, "   ")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	long := make([]rune, MaxCommentLength+1)
	for i := range long {
		long[i] = 'ş'
	}
	_, err = uc.AddComment(context.Background(), alice, post.ID, string(long))
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = uc.AddComment(context.Background(), alice, "missing", "hi")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAddComment_CanceledLeavesNothing(t *testing.T) {
	store := newMemoryStore()
	alice := createUser(t, store, "alice", entity.RoleStudent)
	post := createPost(t, store, alice, "hello")
	uc := NewInteractionUseCase(store, nil, nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.AddComment(ctx, alice, post.ID, "hi")
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
	assertCountersMatch(t, store, post.ID)
}

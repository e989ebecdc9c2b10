package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"unievent/pkg/database"
	"unievent/pkg/logger"
	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
	"unievent/services/api/internal/repo/memory"
	"unievent/services/api/internal/repo/persistent"

	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, store repo.Store, username string, role entity.Role) *entity.Principal {
	t.Helper()
	user := &entity.User{
		Username: username,
		Email:    username + "@uni.test",
		Password: "hash",
		Role:     role,
	}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return entity.NewPrincipal(user)
}

func createPost(t *testing.T, store repo.Store, author *entity.Principal, content string) *entity.Post {
	t.Helper()
	post := &entity.Post{AuthorID: author.ID, Content: content}
	require.NoError(t, store.Posts().Create(context.Background(), post))
	return post
}

// assertCountersMatch checks that each post's stored counters equal the
// number of edges pointing at it.
func assertCountersMatch(t *testing.T, store repo.Store, postIDs ...string) {
	t.Helper()
	ctx := context.Background()
	for _, id := range postIDs {
		post, err := store.Posts().GetByID(ctx, id)
		require.NoError(t, err)
		likes, err := store.Likes().CountByPost(ctx, id)
		require.NoError(t, err)
		comments, err := store.Comments().CountByPost(ctx, id)
		require.NoError(t, err)
		require.Equal(t, likes, post.LikeCount, "like_count of %s", id)
		require.Equal(t, comments, post.CommentCount, "comment_count of %s", id)
	}
}

func newMemoryStore() *memory.Store {
	return memory.NewStore()
}

func newSQLiteStore(t *testing.T) *persistent.Store {
	t.Helper()
	db, err := database.NewSQLiteDB("")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return persistent.NewStore(db)
}

// backends are the stores the counter and cascade properties must hold on.
var backends = []struct {
	name string
	open func(t *testing.T) repo.Store
}{
	{"memory", func(*testing.T) repo.Store { return newMemoryStore() }},
	{"sqlite", func(t *testing.T) repo.Store { return newSQLiteStore(t) }},
}

func nopLogger() *logger.Logger {
	return logger.NewNop()
}

// barrier releases its waiters once n of them have arrived, or after the
// timeout when fewer ever show up.
type barrier struct {
	mu      sync.Mutex
	n       int
	arrived int
	release chan struct{}
	timeout time.Duration
}

func newBarrier(n int, timeout time.Duration) *barrier {
	return &barrier{n: n, release: make(chan struct{}), timeout: timeout}
}

func (b *barrier) wait() {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.n {
		close(b.release)
	}
	b.mu.Unlock()

	select {
	case <-b.release:
	case <-time.After(b.timeout):
	}
}

// gatedStore holds every like-existence read at a barrier, keeping a toggle
// in flight until n readers arrive or the timeout passes.
type gatedStore struct {
	repo.Store
	gate *barrier
}

func (s *gatedStore) Likes() repo.LikeRepository {
	return &gatedLikes{LikeRepository: s.Store.Likes(), gate: s.gate}
}

func (s *gatedStore) Transaction(ctx context.Context, fn func(tx repo.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repo.Store) error {
		return fn(&gatedStore{Store: tx, gate: s.gate})
	})
}

type gatedLikes struct {
	repo.LikeRepository
	gate *barrier
}

func (l *gatedLikes) Exists(ctx context.Context, userID, postID string) (bool, error) {
	found, err := l.LikeRepository.Exists(ctx, userID, postID)
	l.gate.wait()
	return found, err
}

// staleStore answers every like-existence read with the state from before a
// race, the way two overlapping read-committed transactions both see it.
// The writes that follow hit the real edge.
type staleStore struct {
	repo.Store
	liked bool
}

func (s *staleStore) Likes() repo.LikeRepository {
	return &staleLikes{LikeRepository: s.Store.Likes(), liked: s.liked}
}

func (s *staleStore) Transaction(ctx context.Context, fn func(tx repo.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repo.Store) error {
		return fn(&staleStore{Store: tx, liked: s.liked})
	})
}

type staleLikes struct {
	repo.LikeRepository
	liked bool
}

func (l *staleLikes) Exists(context.Context, string, string) (bool, error) {
	return l.liked, nil
}

// hookStore calls after once, inside the transaction, right after the first
// edge scan of a cascade (PostIDsByUser or DeleteByPost) returns.
type hookStore struct {
	repo.Store
	once  *sync.Once
	after func()
}

func newHookStore(store repo.Store, after func()) *hookStore {
	return &hookStore{Store: store, once: &sync.Once{}, after: after}
}

func (s *hookStore) Likes() repo.LikeRepository {
	return &hookLikes{LikeRepository: s.Store.Likes(), s: s}
}

func (s *hookStore) Transaction(ctx context.Context, fn func(tx repo.Store) error) error {
	return s.Store.Transaction(ctx, func(tx repo.Store) error {
		return fn(&hookStore{Store: tx, once: s.once, after: s.after})
	})
}

type hookLikes struct {
	repo.LikeRepository
	s *hookStore
}

func (l *hookLikes) PostIDsByUser(ctx context.Context, userID string) ([]string, error) {
	ids, err := l.LikeRepository.PostIDsByUser(ctx, userID)
	l.s.once.Do(l.s.after)
	return ids, err
}

func (l *hookLikes) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	n, err := l.LikeRepository.DeleteByPost(ctx, postID)
	l.s.once.Do(l.s.after)
	return n, err
}

// postReadHookStore calls after once, right after the first post read by
// id returns and before its caller sees the result.
type postReadHookStore struct {
	repo.Store
	once  sync.Once
	after func()
}

func (s *postReadHookStore) Posts() repo.PostRepository {
	return &postReadHook{PostRepository: s.Store.Posts(), s: s}
}

type postReadHook struct {
	repo.PostRepository
	s *postReadHookStore
}

func (p *postReadHook) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	post, err := p.PostRepository.GetByID(ctx, id)
	p.s.once.Do(p.s.after)
	return post, err
}

// conflictStore fails the first n transactions with repo.ErrConflict.
type conflictStore struct {
	repo.Store
	mu    sync.Mutex
	fails int
	calls int
}

func (s *conflictStore) Transaction(ctx context.Context, fn func(tx repo.Store) error) error {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.fails
	s.mu.Unlock()

	return s.Store.Transaction(ctx, func(tx repo.Store) error {
		if err := fn(tx); err != nil {
			return err
		}
		if fail {
			return repo.ErrConflict
		}
		return nil
	})
}

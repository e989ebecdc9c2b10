// Package memory is an in-process repo.Store. Every call is atomic on its
// own. Transaction records an undo log and replays it on failure, and holds
// a store-wide lock until it returns, so transactions run one at a time and
// plain calls outside one wait for it to finish. It backs tests and
// DB_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"

	"github.com/google/uuid"
)

type likeKey struct {
	userID string
	postID string
}

type dataset struct {
	// txMu serializes transactions against each other and against plain
	// calls. mu guards the maps themselves.
	txMu     sync.RWMutex
	mu       sync.Mutex
	seq      int64
	users    map[string]*entity.User
	posts    map[string]*entity.Post
	likes    map[likeKey]*entity.Like
	comments map[string]*entity.Comment
	order    map[string]int64
	now      func() time.Time
}

// Store is the root handle when undo is nil and a transaction handle
// otherwise.
type Store struct {
	data *dataset
	undo *undoLog
}

type undoLog struct {
	steps []func()
}

func NewStore() *Store {
	return &Store{data: &dataset{
		users:    make(map[string]*entity.User),
		posts:    make(map[string]*entity.Post),
		likes:    make(map[likeKey]*entity.Like),
		comments: make(map[string]*entity.Comment),
		order:    make(map[string]int64),
		now:      time.Now,
	}}
}

func (s *Store) Users() repo.UserRepository       { return &userRepository{s} }
func (s *Store) Posts() repo.PostRepository       { return &postRepository{s} }
func (s *Store) Likes() repo.LikeRepository       { return &likeRepository{s} }
func (s *Store) Comments() repo.CommentRepository { return &commentRepository{s} }

func (s *Store) Transaction(ctx context.Context, fn func(tx repo.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.undo == nil {
		// Nested transactions already run under the outer one's lock.
		s.data.txMu.Lock()
		defer s.data.txMu.Unlock()
	}

	tx := &Store{data: s.data, undo: &undoLog{}}
	err := fn(tx)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.data.mu.Lock()
		for i := len(tx.undo.steps) - 1; i >= 0; i-- {
			tx.undo.steps[i]()
		}
		s.data.mu.Unlock()
		return err
	}

	if s.undo != nil {
		// Nested: the outer transaction can still roll this back.
		s.undo.steps = append(s.undo.steps, tx.undo.steps...)
	}
	return nil
}

// write runs fn under the dataset lock. fn returns the step that reverts it.
func (s *Store) write(fn func(d *dataset) (revert func(), err error)) error {
	if s.undo == nil {
		s.data.txMu.Lock()
		defer s.data.txMu.Unlock()
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()

	revert, err := fn(s.data)
	if err != nil {
		return err
	}
	if s.undo != nil && revert != nil {
		s.undo.steps = append(s.undo.steps, revert)
	}
	return nil
}

func (s *Store) read(fn func(d *dataset)) {
	if s.undo == nil {
		s.data.txMu.RLock()
		defer s.data.txMu.RUnlock()
	}
	s.data.mu.Lock()
	defer s.data.mu.Unlock()
	fn(s.data)
}

// references reports whether both rows an edge points at exist.
func (d *dataset) references(userID, postID string) bool {
	_, user := d.users[userID]
	_, post := d.posts[postID]
	return user && post
}

func (d *dataset) nextSeq(id string) {
	d.seq++
	d.order[id] = d.seq
}

// newestFirst sorts by creation time, then insertion order, both descending.
func newestFirst[T any](d *dataset, items []T, id func(T) string, created func(T) time.Time) {
	sort.Slice(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return d.order[id(items[i])] > d.order[id(items[j])]
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func newID() string {
	return uuid.New().String()
}

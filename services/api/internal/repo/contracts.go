// Package repo declares the storage collaborator the use cases work against.
// persistent implements it over gorm; memory implements it in-process.
package repo

import (
	"context"
	"errors"

	"unievent/services/api/internal/entity"
)

var (
	// ErrNotFound: the row does not exist (or a referenced parent vanished).
	ErrNotFound = errors.New("record not found")
	// ErrConflict: a uniqueness violation or a transaction that lost a race
	// (serialization failure, deadlock). Retrying the transaction is safe.
	ErrConflict = errors.New("write conflict")
)

type (
	// Store groups the repositories. Inside Transaction every repository
	// obtained from tx shares one atomic unit of work.
	Store interface {
		Users() UserRepository
		Posts() PostRepository
		Likes() LikeRepository
		Comments() CommentRepository
		Transaction(ctx context.Context, fn func(tx Store) error) error
	}

	UserRepository interface {
		Create(ctx context.Context, user *entity.User) error
		GetByID(ctx context.Context, id string) (*entity.User, error)
		// GetForUpdate reads the row and holds a write lock on it until the
		// surrounding transaction ends. New likes and comments by the user
		// wait on that lock.
		GetForUpdate(ctx context.Context, id string) (*entity.User, error)
		GetByUsername(ctx context.Context, username string) (*entity.User, error)
		GetByEmail(ctx context.Context, email string) (*entity.User, error)
		GetByIDs(ctx context.Context, ids []string) (map[string]*entity.User, error)
		ExistsByUsername(ctx context.Context, username string) (bool, error)
		ExistsByEmail(ctx context.Context, email string) (bool, error)
		Update(ctx context.Context, user *entity.User) error
		Delete(ctx context.Context, id string) (bool, error)
	}

	PostRepository interface {
		Create(ctx context.Context, post *entity.Post) error
		GetByID(ctx context.Context, id string) (*entity.Post, error)
		GetForUpdate(ctx context.Context, id string) (*entity.Post, error)
		Exists(ctx context.Context, id string) (bool, error)
		// List and ListByAuthor return newest first.
		List(ctx context.Context, limit, offset int) ([]*entity.Post, int64, error)
		ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, int64, error)
		IDsByAuthor(ctx context.Context, authorID string) ([]string, error)
		Delete(ctx context.Context, id string) (bool, error)
		// AddLikeCount and AddCommentCount apply delta, never going below
		// zero, and return the stored value afterwards.
		AddLikeCount(ctx context.Context, id string, delta int64) (int64, error)
		AddCommentCount(ctx context.Context, id string, delta int64) (int64, error)
	}

	LikeRepository interface {
		Exists(ctx context.Context, userID, postID string) (bool, error)
		// Insert reports false, without error, when the edge already exists.
		Insert(ctx context.Context, like *entity.Like) (bool, error)
		// Delete reports false when there was no edge to remove.
		Delete(ctx context.Context, userID, postID string) (bool, error)
		CountByPost(ctx context.Context, postID string) (int64, error)
		DeleteByPost(ctx context.Context, postID string) (int64, error)
		PostIDsByUser(ctx context.Context, userID string) ([]string, error)
		DeleteByUser(ctx context.Context, userID string) (int64, error)
	}

	CommentRepository interface {
		Create(ctx context.Context, comment *entity.Comment) error
		GetByID(ctx context.Context, id string) (*entity.Comment, error)
		ListByPost(ctx context.Context, postID string, limit, offset int) ([]*entity.Comment, int64, error)
		Delete(ctx context.Context, id string) (bool, error)
		CountByPost(ctx context.Context, postID string) (int64, error)
		DeleteByPost(ctx context.Context, postID string) (int64, error)
		// CountByUserPerPost returns how many comments the user has on each post.
		CountByUserPerPost(ctx context.Context, userID string) (map[string]int64, error)
		DeleteByUser(ctx context.Context, userID string) (int64, error)
	}
)

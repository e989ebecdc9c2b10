package persistent

import (
	"context"
	"errors"
	"fmt"

	"unievent/services/api/internal/repo"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the gorm-backed repo.Store. A Store built over a transaction
// handle routes every repository call through that transaction.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Users() repo.UserRepository {
	return NewUserRepository(s.db)
}

func (s *Store) Posts() repo.PostRepository {
	return NewPostRepository(s.db)
}

func (s *Store) Likes() repo.LikeRepository {
	return NewLikeRepository(s.db)
}

func (s *Store) Comments() repo.CommentRepository {
	return NewCommentRepository(s.db)
}

func (s *Store) Transaction(ctx context.Context, fn func(tx repo.Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
	return translate(err)
}

func dialect(db *gorm.DB) string {
	return db.Dialector.Name()
}

// forUpdate adds SELECT ... FOR UPDATE. SQLite has no row locks; its single
// writer already serializes transactions.
func forUpdate(db *gorm.DB) *gorm.DB {
	if dialect(db) == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

// translateDelete is translate for DELETE statements. A foreign key failure
// there means a referencing row was inserted concurrently, so it is retried
// as a conflict instead of reported as a missing row.
func translateDelete(err error) error {
	if err == nil {
		return nil
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %v", repo.ErrConflict, err)
	}
	return translate(err)
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return true
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && (myErr.Number == 1451 || myErr.Number == 1452) {
		return true
	}
	return false
}

// translate folds driver-specific failures into repo.ErrNotFound and
// repo.ErrConflict. Anything else is returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) || errors.Is(err, repo.ErrConflict) {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repo.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", repo.ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", repo.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001", "40P01":
			return fmt.Errorf("%w: %v", repo.ErrConflict, err)
		case "23503":
			return fmt.Errorf("%w: %v", repo.ErrNotFound, err)
		}
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062, 1205, 1213:
			return fmt.Errorf("%w: %v", repo.ErrConflict, err)
		case 1452:
			return fmt.Errorf("%w: %v", repo.ErrNotFound, err)
		}
	}

	return err
}

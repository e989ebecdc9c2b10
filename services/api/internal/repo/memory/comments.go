package memory

import (
	"context"
	"time"

	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
)

type commentRepository struct {
	s *Store
}

func (r *commentRepository) Create(_ context.Context, comment *entity.Comment) error {
	return r.s.write(func(d *dataset) (func(), error) {
		if !d.references(comment.UserID, comment.PostID) {
			return nil, repo.ErrNotFound
		}
		if comment.ID == "" {
			comment.ID = newID()
		}
		now := d.now()
		comment.CreatedAt, comment.UpdatedAt = now, now

		stored := *comment
		stored.Author = nil
		d.comments[comment.ID] = &stored
		d.nextSeq(comment.ID)
		return func() { delete(d.comments, stored.ID) }, nil
	})
}

func (r *commentRepository) GetByID(_ context.Context, id string) (*entity.Comment, error) {
	var found *entity.Comment
	r.s.read(func(d *dataset) {
		if c, ok := d.comments[id]; ok {
			cp := *c
			found = &cp
		}
	})
	if found == nil {
		return nil, repo.ErrNotFound
	}
	return found, nil
}

func (r *commentRepository) ListByPost(_ context.Context, postID string, limit, offset int) ([]*entity.Comment, int64, error) {
	var comments []*entity.Comment
	r.s.read(func(d *dataset) {
		for _, c := range d.comments {
			if c.PostID == postID {
				cp := *c
				comments = append(comments, &cp)
			}
		}
		newestFirst(d, comments,
			func(c *entity.Comment) string { return c.ID },
			func(c *entity.Comment) time.Time { return c.CreatedAt })
	})
	return paginate(comments, limit, offset), int64(len(comments)), nil
}

func (r *commentRepository) Delete(_ context.Context, id string) (bool, error) {
	n, err := r.deleteWhere(func(c *entity.Comment) bool { return c.ID == id })
	return n > 0, err
}

func (r *commentRepository) CountByPost(_ context.Context, postID string) (int64, error) {
	var n int64
	r.s.read(func(d *dataset) {
		for _, c := range d.comments {
			if c.PostID == postID {
				n++
			}
		}
	})
	return n, nil
}

func (r *commentRepository) DeleteByPost(_ context.Context, postID string) (int64, error) {
	return r.deleteWhere(func(c *entity.Comment) bool { return c.PostID == postID })
}

func (r *commentRepository) CountByUserPerPost(_ context.Context, userID string) (map[string]int64, error) {
	counts := make(map[string]int64)
	r.s.read(func(d *dataset) {
		for _, c := range d.comments {
			if c.UserID == userID {
				counts[c.PostID]++
			}
		}
	})
	return counts, nil
}

func (r *commentRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(c *entity.Comment) bool { return c.UserID == userID })
}

func (r *commentRepository) deleteWhere(match func(*entity.Comment) bool) (int64, error) {
	var n int64
	err := r.s.write(func(d *dataset) (func(), error) {
		var removed []*entity.Comment
		for id, c := range d.comments {
			if match(c) {
				removed = append(removed, c)
				delete(d.comments, id)
			}
		}
		n = int64(len(removed))
		return func() {
			for _, c := range removed {
				d.comments[c.ID] = c
			}
		}, nil
	})
	return n, err
}

package memory

import (
	"context"
	"time"

	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
)

type postRepository struct {
	s *Store
}

func (r *postRepository) Create(_ context.Context, post *entity.Post) error {
	return r.s.write(func(d *dataset) (func(), error) {
		if _, ok := d.users[post.AuthorID]; !ok {
			return nil, repo.ErrNotFound
		}
		if post.ID == "" {
			post.ID = newID()
		}
		now := d.now()
		post.CreatedAt, post.UpdatedAt = now, now
		post.LikeCount, post.CommentCount = 0, 0

		stored := *post
		stored.Author = nil
		d.posts[post.ID] = &stored
		d.nextSeq(post.ID)
		return func() { delete(d.posts, stored.ID) }, nil
	})
}

func (r *postRepository) GetByID(_ context.Context, id string) (*entity.Post, error) {
	var found *entity.Post
	r.s.read(func(d *dataset) {
		if p, ok := d.posts[id]; ok {
			cp := *p
			found = &cp
		}
	})
	if found == nil {
		return nil, repo.ErrNotFound
	}
	return found, nil
}

func (r *postRepository) GetForUpdate(ctx context.Context, id string) (*entity.Post, error) {
	return r.GetByID(ctx, id)
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	return err == nil, nil
}

func (r *postRepository) List(_ context.Context, limit, offset int) ([]*entity.Post, int64, error) {
	return r.list(func(*entity.Post) bool { return true }, limit, offset)
}

func (r *postRepository) ListByAuthor(_ context.Context, authorID string, limit, offset int) ([]*entity.Post, int64, error) {
	return r.list(func(p *entity.Post) bool { return p.AuthorID == authorID }, limit, offset)
}

func (r *postRepository) list(match func(*entity.Post) bool, limit, offset int) ([]*entity.Post, int64, error) {
	var posts []*entity.Post
	r.s.read(func(d *dataset) {
		for _, p := range d.posts {
			if match(p) {
				cp := *p
				posts = append(posts, &cp)
			}
		}
		newestFirst(d, posts,
			func(p *entity.Post) string { return p.ID },
			func(p *entity.Post) time.Time { return p.CreatedAt })
	})
	return paginate(posts, limit, offset), int64(len(posts)), nil
}

func (r *postRepository) IDsByAuthor(_ context.Context, authorID string) ([]string, error) {
	var ids []string
	r.s.read(func(d *dataset) {
		for _, p := range d.posts {
			if p.AuthorID == authorID {
				ids = append(ids, p.ID)
			}
		}
	})
	return ids, nil
}

func (r *postRepository) Delete(_ context.Context, id string) (bool, error) {
	deleted := false
	err := r.s.write(func(d *dataset) (func(), error) {
		p, ok := d.posts[id]
		if !ok {
			return nil, nil
		}
		delete(d.posts, id)
		deleted = true
		return func() { d.posts[id] = p }, nil
	})
	return deleted, err
}

func (r *postRepository) AddLikeCount(_ context.Context, id string, delta int64) (int64, error) {
	return r.add(id, delta, func(p *entity.Post) *int64 { return &p.LikeCount })
}

func (r *postRepository) AddCommentCount(_ context.Context, id string, delta int64) (int64, error) {
	return r.add(id, delta, func(p *entity.Post) *int64 { return &p.CommentCount })
}

func (r *postRepository) add(id string, delta int64, field func(*entity.Post) *int64) (int64, error) {
	var result int64
	err := r.s.write(func(d *dataset) (func(), error) {
		p, ok := d.posts[id]
		if !ok {
			return nil, repo.ErrNotFound
		}
		counter := field(p)
		before := *counter
		*counter += delta
		if *counter < 0 {
			*counter = 0
		}
		result = *counter
		applied := *counter - before
		return func() {
			if p, ok := d.posts[id]; ok {
				c := field(p)
				*c -= applied
				if *c < 0 {
					*c = 0
				}
			}
		}, nil
	})
	return result, err
}

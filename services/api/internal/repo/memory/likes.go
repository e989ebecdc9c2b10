package memory

import (
	"context"

	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
)

type likeRepository struct {
	s *Store
}

func (r *likeRepository) Exists(_ context.Context, userID, postID string) (bool, error) {
	found := false
	r.s.read(func(d *dataset) {
		_, found = d.likes[likeKey{userID, postID}]
	})
	return found, nil
}

func (r *likeRepository) Insert(_ context.Context, like *entity.Like) (bool, error) {
	inserted := false
	err := r.s.write(func(d *dataset) (func(), error) {
		if !d.references(like.UserID, like.PostID) {
			return nil, repo.ErrNotFound
		}
		key := likeKey{like.UserID, like.PostID}
		if _, ok := d.likes[key]; ok {
			return nil, nil
		}
		if like.ID == "" {
			like.ID = newID()
		}
		like.CreatedAt = d.now()
		stored := *like
		d.likes[key] = &stored
		inserted = true
		return func() { delete(d.likes, key) }, nil
	})
	return inserted, err
}

func (r *likeRepository) Delete(_ context.Context, userID, postID string) (bool, error) {
	deleted := false
	err := r.s.write(func(d *dataset) (func(), error) {
		key := likeKey{userID, postID}
		l, ok := d.likes[key]
		if !ok {
			return nil, nil
		}
		delete(d.likes, key)
		deleted = true
		return func() { d.likes[key] = l }, nil
	})
	return deleted, err
}

func (r *likeRepository) CountByPost(_ context.Context, postID string) (int64, error) {
	var n int64
	r.s.read(func(d *dataset) {
		for key := range d.likes {
			if key.postID == postID {
				n++
			}
		}
	})
	return n, nil
}

func (r *likeRepository) DeleteByPost(_ context.Context, postID string) (int64, error) {
	return r.deleteWhere(func(k likeKey) bool { return k.postID == postID })
}

func (r *likeRepository) PostIDsByUser(_ context.Context, userID string) ([]string, error) {
	var ids []string
	r.s.read(func(d *dataset) {
		for key := range d.likes {
			if key.userID == userID {
				ids = append(ids, key.postID)
			}
		}
	})
	return ids, nil
}

func (r *likeRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(k likeKey) bool { return k.userID == userID })
}

func (r *likeRepository) deleteWhere(match func(likeKey) bool) (int64, error) {
	var n int64
	err := r.s.write(func(d *dataset) (func(), error) {
		removed := make(map[likeKey]*entity.Like)
		for key, l := range d.likes {
			if match(key) {
				removed[key] = l
				delete(d.likes, key)
			}
		}
		n = int64(len(removed))
		return func() {
			for key, l := range removed {
				d.likes[key] = l
			}
		}, nil
	})
	return n, err
}

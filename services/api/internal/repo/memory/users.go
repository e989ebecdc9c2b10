package memory

import (
	"context"

	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	return r.s.write(func(d *dataset) (func(), error) {
		for _, u := range d.users {
			if u.Username == user.Username || u.Email == user.Email {
				return nil, repo.ErrConflict
			}
		}
		if user.ID == "" {
			user.ID = newID()
		}
		now := d.now()
		user.CreatedAt, user.UpdatedAt = now, now

		stored := *user
		d.users[user.ID] = &stored
		d.nextSeq(user.ID)
		return func() { delete(d.users, stored.ID) }, nil
	})
}

func (r *userRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.ID == id })
}

// GetForUpdate needs no lock of its own: transactions already run one at a
// time.
func (r *userRepository) GetForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Username == username })
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u *entity.User) bool { return u.Email == email })
}

func (r *userRepository) find(match func(*entity.User) bool) (*entity.User, error) {
	var found *entity.User
	r.s.read(func(d *dataset) {
		for _, u := range d.users {
			if match(u) {
				cp := *u
				found = &cp
				return
			}
		}
	})
	if found == nil {
		return nil, repo.ErrNotFound
	}
	return found, nil
}

func (r *userRepository) GetByIDs(_ context.Context, ids []string) (map[string]*entity.User, error) {
	users := make(map[string]*entity.User, len(ids))
	r.s.read(func(d *dataset) {
		for _, id := range ids {
			if u, ok := d.users[id]; ok {
				cp := *u
				users[id] = &cp
			}
		}
	})
	return users, nil
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *userRepository) Update(_ context.Context, user *entity.User) error {
	return r.s.write(func(d *dataset) (func(), error) {
		current, ok := d.users[user.ID]
		if !ok {
			return nil, repo.ErrNotFound
		}
		for _, u := range d.users {
			if u.ID != user.ID && u.Email == user.Email {
				return nil, repo.ErrConflict
			}
		}
		before := *current
		updated := before
		updated.Email = user.Email
		updated.Password = user.Password
		updated.Role = user.Role
		updated.DisplayName = user.DisplayName
		updated.Bio = user.Bio
		updated.ProfileImageURL = user.ProfileImageURL
		updated.UpdatedAt = d.now()
		d.users[user.ID] = &updated
		return func() { d.users[before.ID] = &before }, nil
	})
}

func (r *userRepository) Delete(_ context.Context, id string) (bool, error) {
	deleted := false
	err := r.s.write(func(d *dataset) (func(), error) {
		u, ok := d.users[id]
		if !ok {
			return nil, nil
		}
		delete(d.users, id)
		deleted = true
		return func() { d.users[id] = u }, nil
	})
	return deleted, err
}

package usecase

import (
	"context"
	"errors"

	"unievent/pkg/apperror"
	"unievent/pkg/logger"
	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
)

type PrincipalResolver interface {
	Resolve(ctx context.Context, subject string) (*entity.Principal, error)
}

type principalResolver struct {
	users  repo.UserRepository
	logger *logger.Logger
}

func NewPrincipalResolver(users repo.UserRepository, logger *logger.Logger) PrincipalResolver {
	return &principalResolver{users: users, logger: logger}
}

// Resolve loads the token subject. A subject that no longer exists is an
// authentication failure: a validly signed token can outlive its user.
func (r *principalResolver) Resolve(ctx context.Context, subject string) (*entity.Principal, error) {
	user, err := r.users.GetByUsername(ctx, subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Unauthenticated("Authentication required")
		}
		r.logger.Error("Failed to resolve principal: %v", err)
		return nil, apperror.Internal("failed to resolve principal", err)
	}
	return entity.NewPrincipal(user), nil
}

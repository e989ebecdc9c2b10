package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"unievent/pkg/apperror"
	"unievent/pkg/logger"
	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
)

const invalidCredentials = "Invalid username or password"

// MaxPasswordBytes is the most bcrypt will hash. Multi-byte characters count
// per byte, so this is checked here as well as in request binding.
const MaxPasswordBytes = 72

// TokenIssuer signs a token for an authenticated subject.
type TokenIssuer interface {
	GenerateToken(subject string) (string, error)
}

type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
}

type AuthResult struct {
	Token string
	User  *entity.User
}

type AuthUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
}

type authUseCase struct {
	users  repo.UserRepository
	hasher PasswordHasher
	issuer TokenIssuer
	logger *logger.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthUseCase(users repo.UserRepository, hasher PasswordHasher, issuer TokenIssuer, logger *logger.Logger) AuthUseCase {
	return &authUseCase{
		users:  users,
		hasher: hasher,
		issuer: issuer,
		logger: logger,
	}
}

func (uc *authUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.DisplayName = strings.TrimSpace(input.DisplayName)

	details := map[string]string{}
	if input.Username == "" {
		details["username"] = "is required"
	}
	if input.Email == "" {
		details["email"] = "is required"
	}
	if input.Password == "" {
		details["password"] = "is required"
	} else if len(input.Password) > MaxPasswordBytes {
		details["password"] = "must be at most 72 bytes"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("Validation failed", details)
	}

	if err := uc.checkAvailable(ctx, input.Username, input.Email); err != nil {
		return nil, err
	}

	hashed, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Username
	}
	user := &entity.User{
		Username:    input.Username,
		Email:       input.Email,
		Password:    hashed,
		Role:        entity.RoleStudent,
		DisplayName: displayName,
	}

	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			// Lost a race with a concurrent registration; name the field that collided.
			if conflictErr := uc.checkAvailable(ctx, input.Username, input.Email); conflictErr != nil {
				return nil, conflictErr
			}
			return nil, apperror.Conflict("username", "Username is already taken")
		}
		return nil, storeError(uc.logger, err, "User not found", "failed to create user")
	}

	token, err := uc.issuer.GenerateToken(user.Username)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}

	uc.logger.Info("User registered: %s (%s)", user.Username, user.ID)
	return &AuthResult{Token: token, User: user}, nil
}

func (uc *authUseCase) checkAvailable(ctx context.Context, username, email string) error {
	taken, err := uc.users.ExistsByUsername(ctx, username)
	if err != nil {
		return storeError(uc.logger, err, "User not found", "failed to check username")
	}
	if taken {
		return apperror.Conflict("username", "Username is already taken")
	}

	taken, err = uc.users.ExistsByEmail(ctx, email)
	if err != nil {
		return storeError(uc.logger, err, "User not found", "failed to check email")
	}
	if taken {
		return apperror.Conflict("email", "Email is already in use")
	}
	return nil
}

// Login never says which half of the credentials was wrong. An unknown
// username still pays for one hash comparison.
func (uc *authUseCase) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := uc.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return nil, storeError(uc.logger, err, "User not found", "failed to load user")
		}
		uc.hasher.Compare(uc.dummy(), password)
		uc.logger.Info("Login failed for unknown user %q", username)
		return nil, apperror.Unauthenticated(invalidCredentials)
	}

	if !uc.hasher.Compare(user.Password, password) {
		uc.logger.Info("Login failed for user %s", user.Username)
		return nil, apperror.Unauthenticated(invalidCredentials)
	}

	token, err := uc.issuer.GenerateToken(user.Username)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}

	uc.logger.Info("User logged in: %s", user.Username)
	return &AuthResult{Token: token, User: user}, nil
}

func (uc *authUseCase) dummy() string {
	uc.dummyOnce.Do(func() {
		uc.dummyHash, _ = uc.hasher.Hash("unievent-dummy-password")
	})
	return uc.dummyHash
}

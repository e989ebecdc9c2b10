package usecase

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"unievent/pkg/apperror"
	"unievent/pkg/logger"
	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
	"unievent/services/api/internal/repo/cache"

	"github.com/google/uuid"
)

const (
	MaxDisplayNameLength = 50
	MaxBioLength         = 160
)

var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectStorage is the part of the S3 client avatars need.
type ObjectStorage interface {
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteURL(ctx context.Context, url string) error
}

type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
}

type UserUseCase interface {
	Me(ctx context.Context, principal *entity.Principal) (*entity.User, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	UpdateProfile(ctx context.Context, principal *entity.Principal, input UpdateProfileInput) (*entity.User, error)
	UploadAvatar(ctx context.Context, principal *entity.Principal, file io.Reader, filename, contentType string) (*entity.User, error)
	DeleteUser(ctx context.Context, principal *entity.Principal, userID string) error
}

type userUseCase struct {
	store   repo.Store
	cascade CascadePolicy
	cache   *cache.PostCache
	storage ObjectStorage
	logger  *logger.Logger
}

// NewUserUseCase accepts a nil storage; avatar uploads then report the
// feature as unavailable.
func NewUserUseCase(store repo.Store, cascade CascadePolicy, postCache *cache.PostCache, storage ObjectStorage, logger *logger.Logger) UserUseCase {
	return &userUseCase{
		store:   store,
		cascade: cascade,
		cache:   postCache,
		storage: storage,
		logger:  logger,
	}
}

func (uc *userUseCase) Me(ctx context.Context, principal *entity.Principal) (*entity.User, error) {
	if principal == nil {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	user, err := uc.store.Users().GetByID(ctx, principal.ID)
	if err != nil {
		return nil, storeError(uc.logger, err, "User not found", "failed to get user")
	}
	return user, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(uc.logger, err, "User not found", "failed to get user")
	}
	return user, nil
}

func (uc *userUseCase) UpdateProfile(ctx context.Context, principal *entity.Principal, input UpdateProfileInput) (*entity.User, error) {
	if principal == nil {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	details := map[string]string{}
	if input.DisplayName != nil {
		trimmed := strings.TrimSpace(*input.DisplayName)
		input.DisplayName = &trimmed
		checkLength(details, "display_name", trimmed, MaxDisplayNameLength)
	}
	if input.Bio != nil {
		trimmed := strings.TrimSpace(*input.Bio)
		input.Bio = &trimmed
		checkLength(details, "bio", trimmed, MaxBioLength)
	}
	if len(details) > 0 {
		return nil, apperror.Validation("Validation failed", details)
	}

	var user *entity.User
	err := inTx(ctx, uc.store, uc.logger, "update_profile", func(tx repo.Store) error {
		var err error
		user, err = tx.Users().GetByID(ctx, principal.ID)
		if err != nil {
			return err
		}
		if input.DisplayName != nil {
			user.DisplayName = *input.DisplayName
		}
		if input.Bio != nil {
			user.Bio = *input.Bio
		}
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		return nil, storeError(uc.logger, err, "User not found", "failed to update profile")
	}
	return user, nil
}

func (uc *userUseCase) UploadAvatar(ctx context.Context, principal *entity.Principal, file io.Reader, filename, contentType string) (*entity.User, error) {
	if principal == nil {
		return nil, apperror.Unauthenticated("Authentication required")
	}
	if uc.storage == nil {
		return nil, apperror.Unavailable("Image storage is not configured", nil)
	}

	ext, ok := avatarTypes[strings.ToLower(contentType)]
	if !ok {
		return nil, apperror.Validation("Validation failed", map[string]string{
			"file": "must be a JPEG, PNG, GIF or WebP image",
		})
	}
	if ext == ".jpg" && strings.EqualFold(path.Ext(filename), ".jpeg") {
		ext = ".jpeg"
	}

	key := fmt.Sprintf("avatars/%s/%s%s", principal.ID, uuid.New().String(), ext)
	url, err := uc.storage.UploadFile(ctx, key, file, contentType)
	if err != nil {
		uc.logger.Error("Failed to upload avatar for %s: %v", principal.ID, err)
		return nil, apperror.Unavailable("Failed to store image", err)
	}

	var (
		user     *entity.User
		previous string
	)
	err = inTx(ctx, uc.store, uc.logger, "upload_avatar", func(tx repo.Store) error {
		var err error
		user, err = tx.Users().GetByID(ctx, principal.ID)
		if err != nil {
			return err
		}
		previous = user.ProfileImageURL
		user.ProfileImageURL = url
		return tx.Users().Update(ctx, user)
	})
	if err != nil {
		uc.removeImage(ctx, url)
		return nil, storeError(uc.logger, err, "User not found", "failed to update avatar")
	}

	uc.removeImage(ctx, previous)
	uc.logger.Info("Avatar updated for %s: %s", user.Username, key)
	return user, nil
}

// removeImage drops an image that nothing references any more. Failures only
// leave an orphaned object behind.
func (uc *userUseCase) removeImage(ctx context.Context, url string) {
	if url == "" || uc.storage == nil {
		return
	}
	if err := uc.storage.DeleteURL(context.WithoutCancel(ctx), url); err != nil {
		uc.logger.Warn("Failed to delete image %s: %v", url, err)
	}
}

func (uc *userUseCase) DeleteUser(ctx context.Context, principal *entity.Principal, userID string) error {
	if principal == nil {
		return apperror.Unauthenticated("Authentication required")
	}
	if !principal.CanManageUser(userID) {
		return apperror.Forbidden("You can only delete your own account")
	}

	var (
		result *CascadeResult
		avatar string
	)
	err := inTx(ctx, uc.store, uc.logger, "delete_user", func(tx repo.Store) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		avatar = user.ProfileImageURL
		result, err = uc.cascade.DeleteUser(ctx, tx, userID)
		return err
	})
	if err != nil {
		return storeError(uc.logger, err, "User not found", "failed to delete user")
	}

	if err := uc.cache.Invalidate(context.WithoutCancel(ctx), result.Touched()...); err != nil {
		uc.logger.Warn("Failed to invalidate cached posts after deleting user %s: %v", userID, err)
	}
	uc.removeImage(ctx, avatar)
	uc.logger.Info("User %s deleted by %s", userID, principal.Username)
	return nil
}

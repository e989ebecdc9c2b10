package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"unievent/pkg/apperror"
	"unievent/pkg/logger"
	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
	"unievent/services/api/internal/repo/cache"

	"golang.org/x/sync/singleflight"
)

const (
	MaxCommentLength = 500

	// toggleTimeout bounds a toggle once it runs detached from the caller.
	toggleTimeout = 10 * time.Second
)

type InteractionUseCase interface {
	ToggleLike(ctx context.Context, principal *entity.Principal, postID string) (*entity.LikeResult, error)
	IsLiked(ctx context.Context, principal *entity.Principal, postID string) (bool, error)
	AddComment(ctx context.Context, principal *entity.Principal, postID, content string) (*entity.Comment, error)
	DeleteComment(ctx context.Context, principal *entity.Principal, postID, commentID string) error
	ListComments(ctx context.Context, postID string, page entity.PageRequest) (*entity.Page[*entity.Comment], error)
}

type interactionUseCase struct {
	store  repo.Store
	cache  *cache.PostCache
	flight singleflight.Group
	logger *logger.Logger
}

func NewInteractionUseCase(store repo.Store, postCache *cache.PostCache, logger *logger.Logger) InteractionUseCase {
	return &interactionUseCase{
		store:  store,
		cache:  postCache,
		logger: logger,
	}
}

// ToggleLike flips the (user, post) like edge and moves the post's counter
// with it in one transaction. Identical toggles already in flight in this
// process share one result, so a client that retries does not flip twice.
func (uc *interactionUseCase) ToggleLike(ctx context.Context, principal *entity.Principal, postID string) (*entity.LikeResult, error) {
	if principal == nil {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	key := principal.ID + ":" + postID
	ch := uc.flight.DoChan(key, func() (interface{}, error) {
		// Shared by every waiter, so it must not die with the first caller.
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), toggleTimeout)
		defer cancel()
		return uc.toggleLike(runCtx, principal.ID, postID)
	})

	select {
	case <-ctx.Done():
		return nil, apperror.Unavailable("Request was cancelled", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			likeTogglesCoalesced.Inc()
		}
		result := *res.Val.(*entity.LikeResult)
		return &result, nil
	}
}

func (uc *interactionUseCase) toggleLike(ctx context.Context, userID, postID string) (*entity.LikeResult, error) {
	var result *entity.LikeResult
	err := inTx(ctx, uc.store, uc.logger, "toggle_like", func(tx repo.Store) error {
		var err error
		result, err = uc.toggleOnce(ctx, tx, userID, postID)
		return err
	})
	if err != nil {
		return nil, storeError(uc.logger, err, "Post not found", "failed to toggle like")
	}

	likeToggles.WithLabelValues(string(result.State)).Inc()
	uc.invalidate(ctx, postID)
	return result, nil
}

func (uc *interactionUseCase) toggleOnce(ctx context.Context, tx repo.Store, userID, postID string) (*entity.LikeResult, error) {
	exists, err := tx.Posts().Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, repo.ErrNotFound
	}

	liked, err := tx.Likes().Exists(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if liked {
		removed, err := tx.Likes().Delete(ctx, userID, postID)
		if err != nil {
			return nil, err
		}
		if !removed {
			// Someone else already took the edge away.
			return currentState(ctx, tx, postID, entity.Unliked)
		}
		count, err := tx.Posts().AddLikeCount(ctx, postID, -1)
		if err != nil {
			return nil, err
		}
		return newLikeResult(postID, entity.Unliked, count), nil
	}

	inserted, err := tx.Likes().Insert(ctx, &entity.Like{UserID: userID, PostID: postID})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return currentState(ctx, tx, postID, entity.Liked)
	}
	count, err := tx.Posts().AddLikeCount(ctx, postID, 1)
	if err != nil {
		return nil, err
	}
	return newLikeResult(postID, entity.Liked, count), nil
}

func currentState(ctx context.Context, tx repo.Store, postID string, state entity.LikeState) (*entity.LikeResult, error) {
	post, err := tx.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return newLikeResult(postID, state, post.LikeCount), nil
}

func newLikeResult(postID string, state entity.LikeState, count int64) *entity.LikeResult {
	return &entity.LikeResult{
		PostID:    postID,
		State:     state,
		Liked:     state == entity.Liked,
		LikeCount: count,
	}
}

func (uc *interactionUseCase) IsLiked(ctx context.Context, principal *entity.Principal, postID string) (bool, error) {
	if principal == nil {
		return false, apperror.Unauthenticated("Authentication required")
	}

	exists, err := uc.store.Posts().Exists(ctx, postID)
	if err != nil {
		return false, storeError(uc.logger, err, "Post not found", "failed to check like status")
	}
	if !exists {
		return false, apperror.NotFound("Post not found")
	}

	liked, err := uc.store.Likes().Exists(ctx, principal.ID, postID)
	if err != nil {
		return false, storeError(uc.logger, err, "Post not found", "failed to check like status")
	}
	return liked, nil
}

func (uc *interactionUseCase) AddComment(ctx context.Context, principal *entity.Principal, postID, content string) (*entity.Comment, error) {
	if principal == nil {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperror.Validation("Validation failed", map[string]string{"content": "is required"})
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, apperror.Validation("Validation failed", map[string]string{"content": "must be at most 500 characters"})
	}

	var comment *entity.Comment
	err := inTx(ctx, uc.store, uc.logger, "add_comment", func(tx repo.Store) error {
		exists, err := tx.Posts().Exists(ctx, postID)
		if err != nil {
			return err
		}
		if !exists {
			return repo.ErrNotFound
		}

		comment = &entity.Comment{PostID: postID, UserID: principal.ID, Content: content}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}
		_, err = tx.Posts().AddCommentCount(ctx, postID, 1)
		return err
	})
	if err != nil {
		return nil, storeError(uc.logger, err, "Post not found", "failed to add comment")
	}

	uc.invalidate(ctx, postID)
	uc.attachCommentAuthors(ctx, []*entity.Comment{comment})
	return comment, nil
}

func (uc *interactionUseCase) DeleteComment(ctx context.Context, principal *entity.Principal, postID, commentID string) error {
	if principal == nil {
		return apperror.Unauthenticated("Authentication required")
	}

	err := inTx(ctx, uc.store, uc.logger, "delete_comment", func(tx repo.Store) error {
		comment, err := tx.Comments().GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment.PostID != postID {
			return repo.ErrNotFound
		}
		if !principal.CanManageComment(comment) {
			return apperror.Forbidden("You can only delete your own comments")
		}

		removed, err := tx.Comments().Delete(ctx, commentID)
		if err != nil {
			return err
		}
		if !removed {
			return repo.ErrNotFound
		}
		_, err = tx.Posts().AddCommentCount(ctx, postID, -1)
		return err
	})
	if err != nil {
		return storeError(uc.logger, err, "Comment not found", "failed to delete comment")
	}

	uc.invalidate(ctx, postID)
	return nil
}

func (uc *interactionUseCase) ListComments(ctx context.Context, postID string, page entity.PageRequest) (*entity.Page[*entity.Comment], error) {
	page = page.Normalize()

	exists, err := uc.store.Posts().Exists(ctx, postID)
	if err != nil {
		return nil, storeError(uc.logger, err, "Post not found", "failed to list comments")
	}
	if !exists {
		return nil, apperror.NotFound("Post not found")
	}

	comments, total, err := uc.store.Comments().ListByPost(ctx, postID, page.Size, page.Offset())
	if err != nil {
		return nil, storeError(uc.logger, err, "Post not found", "failed to list comments")
	}

	uc.attachCommentAuthors(ctx, comments)
	return entity.NewPage(comments, page, total), nil
}

func (uc *interactionUseCase) attachCommentAuthors(ctx context.Context, comments []*entity.Comment) {
	if len(comments) == 0 {
		return
	}
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.UserID)
	}
	users, err := uc.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		uc.logger.Warn("Failed to load comment authors: %v", err)
		return
	}
	for _, c := range comments {
		if u, ok := users[c.UserID]; ok {
			c.Author = u.Summary()
		}
	}
}

func (uc *interactionUseCase) invalidate(ctx context.Context, postIDs ...string) {
	if err := uc.cache.Invalidate(context.WithoutCancel(ctx), postIDs...); err != nil {
		uc.logger.Warn("Failed to invalidate cached posts %v: %v", postIDs, err)
	}
}

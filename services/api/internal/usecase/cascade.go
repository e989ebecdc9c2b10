package usecase

import (
	"context"
	"errors"
	"sort"

	"unievent/pkg/logger"
	"unievent/services/api/internal/repo"
)

// CascadePolicy removes a post or a user together with everything that
// depends on it. It runs inside the caller's transaction and does no
// authorization of its own. Both deletions start by locking the row they
// remove, so a like or comment that references it either commits before the
// cascade reads the edges or fails afterwards on the missing row.
type CascadePolicy interface {
	DeletePost(ctx context.Context, tx repo.Store, postID string) error
	DeleteUser(ctx context.Context, tx repo.Store, userID string) (*CascadeResult, error)
}

// CascadeResult lists the posts a user deletion removed or whose counters it
// changed. Callers use it to invalidate cached copies.
type CascadeResult struct {
	DeletedPosts  []string
	AdjustedPosts []string
}

func (r *CascadeResult) Touched() []string {
	return append(append([]string{}, r.DeletedPosts...), r.AdjustedPosts...)
}

type cascadePolicy struct {
	logger *logger.Logger
}

func NewCascadePolicy(logger *logger.Logger) CascadePolicy {
	return &cascadePolicy{logger: logger}
}

func (p *cascadePolicy) DeletePost(ctx context.Context, tx repo.Store, postID string) error {
	if _, err := tx.Posts().GetForUpdate(ctx, postID); err != nil {
		return err
	}

	likes, err := tx.Likes().DeleteByPost(ctx, postID)
	if err != nil {
		return err
	}
	comments, err := tx.Comments().DeleteByPost(ctx, postID)
	if err != nil {
		return err
	}

	deleted, err := tx.Posts().Delete(ctx, postID)
	if err != nil {
		return err
	}
	if !deleted {
		return repo.ErrNotFound
	}

	p.logger.Debug("Deleted post %s with %d likes and %d comments", postID, likes, comments)
	return nil
}

func (p *cascadePolicy) DeleteUser(ctx context.Context, tx repo.Store, userID string) (*CascadeResult, error) {
	if _, err := tx.Users().GetForUpdate(ctx, userID); err != nil {
		return nil, err
	}

	owned, err := tx.Posts().IDsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Strings(owned)
	for _, postID := range owned {
		if err := p.DeletePost(ctx, tx, postID); err != nil {
			return nil, err
		}
	}

	// Whatever is left lives on other users' posts.
	liked, err := tx.Likes().PostIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	commented, err := tx.Comments().CountByUserPerPost(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Likes().DeleteByUser(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := tx.Comments().DeleteByUser(ctx, userID); err != nil {
		return nil, err
	}

	adjusted := make(map[string]struct{}, len(liked)+len(commented))
	sort.Strings(liked)
	for _, postID := range liked {
		if _, err := tx.Posts().AddLikeCount(ctx, postID, -1); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		adjusted[postID] = struct{}{}
	}

	commentedIDs := make([]string, 0, len(commented))
	for postID := range commented {
		commentedIDs = append(commentedIDs, postID)
	}
	sort.Strings(commentedIDs)
	for _, postID := range commentedIDs {
		if _, err := tx.Posts().AddCommentCount(ctx, postID, -commented[postID]); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		adjusted[postID] = struct{}{}
	}

	deleted, err := tx.Users().Delete(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, repo.ErrNotFound
	}

	result := &CascadeResult{DeletedPosts: owned}
	for postID := range adjusted {
		result.AdjustedPosts = append(result.AdjustedPosts, postID)
	}
	sort.Strings(result.AdjustedPosts)

	p.logger.Info("Deleted user %s: %d posts removed, %d posts adjusted", userID, len(owned), len(result.AdjustedPosts))
	return result, nil
}

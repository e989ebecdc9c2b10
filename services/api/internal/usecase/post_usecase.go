package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"unievent/pkg/apperror"
	"unievent/pkg/logger"
	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"
	"unievent/services/api/internal/repo/cache"
)

const (
	MaxPostContentLength   = 280
	MaxEventTitleLength    = 100
	MaxEventLocationLength = 150
	MaxImageURLLength      = 500
)

type CreatePostInput struct {
	Content       string
	EventTitle    string
	EventLocation string
	EventDate     *time.Time
	ImageURL      string
}

func (in *CreatePostInput) normalize() {
	in.Content = strings.TrimSpace(in.Content)
	in.EventTitle = strings.TrimSpace(in.EventTitle)
	in.EventLocation = strings.TrimSpace(in.EventLocation)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
}

func (in CreatePostInput) validate() error {
	details := map[string]string{}
	if in.Content == "" {
		details["content"] = "is required"
	}
	checkLength(details, "content", in.Content, MaxPostContentLength)
	checkLength(details, "event_title", in.EventTitle, MaxEventTitleLength)
	checkLength(details, "event_location", in.EventLocation, MaxEventLocationLength)
	checkLength(details, "image_url", in.ImageURL, MaxImageURLLength)
	if len(details) > 0 {
		return apperror.Validation("Validation failed", details)
	}
	return nil
}

func checkLength(details map[string]string, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		details[field] = fmt.Sprintf("must be at most %d characters", max)
	}
}

type PostUseCase interface {
	CreatePost(ctx context.Context, principal *entity.Principal, input CreatePostInput) (*entity.Post, error)
	GetPost(ctx context.Context, postID string) (*entity.Post, error)
	ListFeed(ctx context.Context, page entity.PageRequest) (*entity.Page[*entity.Post], error)
	ListByAuthor(ctx context.Context, authorID string, page entity.PageRequest) (*entity.Page[*entity.Post], error)
	DeletePost(ctx context.Context, principal *entity.Principal, postID string) error
}

type postUseCase struct {
	store   repo.Store
	cascade CascadePolicy
	cache   *cache.PostCache
	logger  *logger.Logger
}

func NewPostUseCase(store repo.Store, cascade CascadePolicy, postCache *cache.PostCache, logger *logger.Logger) PostUseCase {
	return &postUseCase{
		store:   store,
		cascade: cascade,
		cache:   postCache,
		logger:  logger,
	}
}

func (uc *postUseCase) CreatePost(ctx context.Context, principal *entity.Principal, input CreatePostInput) (*entity.Post, error) {
	if principal == nil {
		return nil, apperror.Unauthenticated("Authentication required")
	}

	input.normalize()
	if err := input.validate(); err != nil {
		return nil, err
	}

	post := &entity.Post{
		AuthorID:      principal.ID,
		Content:       input.Content,
		EventTitle:    input.EventTitle,
		EventLocation: input.EventLocation,
		EventDate:     input.EventDate,
		ImageURL:      input.ImageURL,
	}
	if err := uc.store.Posts().Create(ctx, post); err != nil {
		// The author row vanished between authentication and insert.
		return nil, storeError(uc.logger, err, "User not found", "failed to create post")
	}

	uc.logger.Info("Post created: %s by %s", post.ID, principal.Username)
	uc.attachAuthors(ctx, []*entity.Post{post})
	return post, nil
}

func (uc *postUseCase) GetPost(ctx context.Context, postID string) (*entity.Post, error) {
	post, gen, ok := uc.cache.Get(ctx, postID)
	if ok {
		return post, nil
	}

	post, err := uc.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, storeError(uc.logger, err, "Post not found", "failed to get post")
	}
	uc.attachAuthors(ctx, []*entity.Post{post})

	if err := uc.cache.Set(ctx, post, gen); err != nil {
		uc.logger.Warn("Failed to cache post %s: %v", postID, err)
	}
	return post, nil
}

func (uc *postUseCase) ListFeed(ctx context.Context, page entity.PageRequest) (*entity.Page[*entity.Post], error) {
	page = page.Normalize()

	posts, total, err := uc.store.Posts().List(ctx, page.Size, page.Offset())
	if err != nil {
		return nil, storeError(uc.logger, err, "Post not found", "failed to list posts")
	}

	uc.attachAuthors(ctx, posts)
	return entity.NewPage(posts, page, total), nil
}

func (uc *postUseCase) ListByAuthor(ctx context.Context, authorID string, page entity.PageRequest) (*entity.Page[*entity.Post], error) {
	page = page.Normalize()

	if _, err := uc.store.Users().GetByID(ctx, authorID); err != nil {
		return nil, storeError(uc.logger, err, "User not found", "failed to list posts")
	}

	posts, total, err := uc.store.Posts().ListByAuthor(ctx, authorID, page.Size, page.Offset())
	if err != nil {
		return nil, storeError(uc.logger, err, "User not found", "failed to list posts")
	}

	uc.attachAuthors(ctx, posts)
	return entity.NewPage(posts, page, total), nil
}

func (uc *postUseCase) DeletePost(ctx context.Context, principal *entity.Principal, postID string) error {
	if principal == nil {
		return apperror.Unauthenticated("Authentication required")
	}

	err := inTx(ctx, uc.store, uc.logger, "delete_post", func(tx repo.Store) error {
		post, err := tx.Posts().GetForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		if !principal.CanManagePost(post) {
			return apperror.Forbidden("You can only delete your own posts")
		}
		return uc.cascade.DeletePost(ctx, tx, postID)
	})
	if err != nil {
		return storeError(uc.logger, err, "Post not found", "failed to delete post")
	}

	if err := uc.cache.Invalidate(context.WithoutCancel(ctx), postID); err != nil {
		uc.logger.Warn("Failed to invalidate cached post %s: %v", postID, err)
	}
	uc.logger.Info("Post deleted: %s by %s", postID, principal.Username)
	return nil
}

// attachAuthors fills Author with one batched user lookup. Missing authors
// are left nil rather than failing the read.
func (uc *postUseCase) attachAuthors(ctx context.Context, posts []*entity.Post) {
	if len(posts) == 0 {
		return
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.AuthorID)
	}

	users, err := uc.store.Users().GetByIDs(ctx, ids)
	if err != nil {
		uc.logger.Warn("Failed to load post authors: %v", err)
		return
	}
	for _, p := range posts {
		if u, ok := users[p.AuthorID]; ok {
			p.Author = u.Summary()
		}
	}
}

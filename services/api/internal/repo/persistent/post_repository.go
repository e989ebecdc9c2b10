package persistent

import (
	"context"
	"fmt"

	"unievent/pkg/models"
	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"

	"gorm.io/gorm"
)

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) repo.PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	postModel := ToPostModel(post)
	postModel.LikeCount = 0
	postModel.CommentCount = 0
	if err := r.db.WithContext(ctx).Create(postModel).Error; err != nil {
		return translate(err)
	}
	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	var postModel models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&postModel).Error; err != nil {
		return nil, translate(err)
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) GetForUpdate(ctx context.Context, id string) (*entity.Post, error) {
	var postModel models.Post
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&postModel).Error; err != nil {
		return nil, translate(err)
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error
	return count > 0, translate(err)
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*entity.Post, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.Post{}), limit, offset)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*entity.Post, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID), limit, offset)
}

func (r *postRepository) list(ctx context.Context, query *gorm.DB, limit, offset int) ([]*entity.Post, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var postModels []models.Post
	err := query.Session(&gorm.Session{}).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&postModels).Error
	if err != nil {
		return nil, 0, translate(err)
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, total, nil
}

func (r *postRepository) IDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Pluck("id", &ids).Error
	return ids, translate(err)
}

func (r *postRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	return res.RowsAffected > 0, translateDelete(res.Error)
}

func (r *postRepository) AddLikeCount(ctx context.Context, id string, delta int64) (int64, error) {
	return r.addCounter(ctx, id, "like_count", delta)
}

func (r *postRepository) AddCommentCount(ctx context.Context, id string, delta int64) (int64, error) {
	return r.addCounter(ctx, id, "comment_count", delta)
}

// addCounter updates in place so concurrent writers never lose increments;
// the CASE keeps the stored value from going negative.
func (r *postRepository) addCounter(ctx context.Context, id, column string, delta int64) (int64, error) {
	expr := gorm.Expr(fmt.Sprintf("CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END", column), delta, delta)
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).UpdateColumn(column, expr)
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, repo.ErrNotFound
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Select(column).Where("id = ?", id).Scan(&count).Error; err != nil {
		return 0, translate(err)
	}
	return count, nil
}

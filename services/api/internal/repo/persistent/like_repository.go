package persistent

import (
	"context"

	"unievent/pkg/models"
	"unievent/services/api/internal/entity"
	"unievent/services/api/internal/repo"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) repo.LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, translate(err)
}

// Insert relies on uk_likes_user_post: a concurrent insert of the same edge
// waits for the first writer and then affects no rows.
func (r *likeRepository) Insert(ctx context.Context, like *entity.Like) (bool, error) {
	likeModel := ToLikeModel(like)
	res := r.db.WithContext(ctx).Clauses(skipDuplicate(r.db)).Create(likeModel)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	*like = *ToLikeEntity(likeModel)
	return true, nil
}

// skipDuplicate picks the insert form that affects zero rows on a duplicate.
// MySQL renders OnConflict as ON DUPLICATE KEY UPDATE id=id, which counts as
// a matched row once ClientFoundRows is set.
func skipDuplicate(db *gorm.DB) clause.Expression {
	if dialect(db) == "mysql" {
		return clause.Insert{Modifier: "IGNORE"}
	}
	return clause.OnConflict{DoNothing: true}
}

func (r *likeRepository) Delete(ctx context.Context, userID, postID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	return res.RowsAffected > 0, translate(res.Error)
}

func (r *likeRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, translate(err)
}

func (r *likeRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{})
	return res.RowsAffected, translate(res.Error)
}

func (r *likeRepository) PostIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("user_id = ?", userID).Pluck("post_id", &ids).Error
	return ids, translate(err)
}

func (r *likeRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Like{})
	return res.RowsAffected, translate(res.Error)
}

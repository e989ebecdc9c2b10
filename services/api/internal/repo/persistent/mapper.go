package persistent

import (
	"unievent/pkg/models"
	"unievent/services/api/internal/entity"
)

func ToUserEntity(m *models.User) *entity.User {
	if m == nil {
		return nil
	}

	return &entity.User{
		ID:              m.ID,
		Username:        m.Username,
		Email:           m.Email,
		Password:        m.Password,
		Role:            entity.Role(m.Role),
		DisplayName:     m.DisplayName,
		Bio:             m.Bio,
		ProfileImageURL: m.ProfileImageURL,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *models.User {
	if e == nil {
		return nil
	}

	return &models.User{
		ID:              e.ID,
		Username:        e.Username,
		Email:           e.Email,
		Password:        e.Password,
		Role:            models.UserRole(e.Role),
		DisplayName:     e.DisplayName,
		Bio:             e.Bio,
		ProfileImageURL: e.ProfileImageURL,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func ToPostEntity(m *models.Post) *entity.Post {
	if m == nil {
		return nil
	}

	return &entity.Post{
		ID:            m.ID,
		AuthorID:      m.AuthorID,
		Content:       m.Content,
		EventTitle:    m.EventTitle,
		EventLocation: m.EventLocation,
		EventDate:     m.EventDate,
		ImageURL:      m.ImageURL,
		LikeCount:     m.LikeCount,
		CommentCount:  m.CommentCount,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToPostModel(e *entity.Post) *models.Post {
	if e == nil {
		return nil
	}

	return &models.Post{
		ID:            e.ID,
		AuthorID:      e.AuthorID,
		Content:       e.Content,
		EventTitle:    e.EventTitle,
		EventLocation: e.EventLocation,
		EventDate:     e.EventDate,
		ImageURL:      e.ImageURL,
		LikeCount:     e.LikeCount,
		CommentCount:  e.CommentCount,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func ToLikeEntity(m *models.Like) *entity.Like {
	if m == nil {
		return nil
	}

	return &entity.Like{
		ID:        m.ID,
		UserID:    m.UserID,
		PostID:    m.PostID,
		CreatedAt: m.CreatedAt,
	}
}

func ToLikeModel(e *entity.Like) *models.Like {
	if e == nil {
		return nil
	}

	return &models.Like{
		ID:        e.ID,
		UserID:    e.UserID,
		PostID:    e.PostID,
		CreatedAt: e.CreatedAt,
	}
}

func ToCommentEntity(m *models.Comment) *entity.Comment {
	if m == nil {
		return nil
	}

	return &entity.Comment{
		ID:        m.ID,
		PostID:    m.PostID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToCommentModel(e *entity.Comment) *models.Comment {
	if e == nil {
		return nil
	}

	return &models.Comment{
		ID:        e.ID,
		PostID:    e.PostID,
		UserID:    e.UserID,
		Content:   e.Content,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

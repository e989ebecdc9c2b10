package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleStudent UserRole = "STUDENT"
	RoleClub    UserRole = "CLUB"
	RoleAdmin   UserRole = "ADMIN"
)

type User struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email           string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password        string    `gorm:"not null" json:"-"`
	Role            UserRole  `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"role"`
	DisplayName     string    `gorm:"type:varchar(50)" json:"display_name"`
	Bio             string    `gorm:"type:varchar(160)" json:"bio"`
	ProfileImageURL string    `gorm:"type:varchar(500)" json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

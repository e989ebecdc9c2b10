package entity

import "time"

type Post struct {
	ID            string         `json:"id"`
	AuthorID      string         `json:"author_id"`
	Author        *AuthorSummary `json:"author,omitempty"`
	Content       string         `json:"content"`
	EventTitle    string         `json:"event_title,omitempty"`
	EventLocation string         `json:"event_location,omitempty"`
	EventDate     *time.Time     `json:"event_date,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	LikeCount     int64          `json:"like_count"`
	CommentCount  int64          `json:"comment_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type Like struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PostID    string    `json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        string         `json:"id"`
	PostID    string         `json:"post_id"`
	UserID    string         `json:"user_id"`
	Author    *AuthorSummary `json:"author,omitempty"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type LikeState string

const (
	Liked   LikeState = "LIKED"
	Unliked LikeState = "UNLIKED"
)

// LikeResult is the outcome of one like toggle.
type LikeResult struct {
	PostID    string    `json:"post_id"`
	State     LikeState `json:"state"`
	Liked     bool      `json:"liked"`
	LikeCount int64     `json:"like_count"`
}

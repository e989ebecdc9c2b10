package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"unievent/pkg/config"
	"unievent/pkg/database"
	"unievent/pkg/logger"
	"unievent/pkg/models"

	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	username    string
	email       string
	displayName string
	role        models.UserRole
}

type seedPost struct {
	author        string
	content       string
	eventTitle    string
	eventLocation string
	inDays        int
}

var users = []seedUser{
	{"admin", "admin@unievent.test", "Administrator", models.RoleAdmin},
	{"chess_club", "chess@unievent.test", "Chess Club", models.RoleClub},
	{"alice", "alice@unievent.test", "Alice", models.RoleStudent},
	{"bob", "bob@unievent.test", "Bob", models.RoleStudent},
	{"carol", "carol@unievent.test", "Carol", models.RoleStudent},
}

var posts = []seedPost{
	{"chess_club", "Weekly blitz tournament, all levels welcome!", "Blitz Night", "Library, Room 204", 3},
	{"chess_club", "Simul against our club champion next month.", "Simultaneous Exhibition", "Main Hall", 30},
	{"alice", "Anyone up for a study group before finals?", "", "", 0},
	{"bob", "Found a blue umbrella in the cafeteria.", "", "", 0},
}

func main() {
	log := logger.New()
	defer log.Sync()

	cliApp := &cli.App{
		Name:  "seed",
		Usage: "fill the database with demo users, posts, likes and comments",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "password",
				Value:   "password123",
				Usage:   "password given to every seeded user",
				EnvVars: []string{"SEED_PASSWORD"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			return seedDatabase(db, c.String("password"), log)
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Error("Failed to seed database: %v", err)
		os.Exit(1)
	}
	log.Info("Database seeded successfully!")
}

func seedDatabase(db *gorm.DB, password string, log *logger.Logger) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userIDs := make(map[string]string, len(users))
	for _, u := range users {
		var existing models.User
		err := db.Where("username = ? OR email = ?", u.username, u.email).First(&existing).Error
		if err == nil {
			log.Info("User %s already exists, skipping", u.username)
			userIDs[u.username] = existing.ID
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		user := &models.User{
			Username:    u.username,
			Email:       u.email,
			Password:    string(hashedPassword),
			Role:        u.role,
			DisplayName: u.displayName,
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", u.username, err)
		}
		log.Info("Created user: %s (%s)", user.Username, user.Role)
		userIDs[u.username] = user.ID
	}

	var existingPosts int64
	if err := db.Model(&models.Post{}).Count(&existingPosts).Error; err != nil {
		return err
	}
	if existingPosts > 0 {
		log.Info("Found %d posts, skipping posts and interactions", existingPosts)
		return nil
	}

	now := time.Now()
	postIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		post := &models.Post{
			AuthorID:      userIDs[p.author],
			Content:       p.content,
			EventTitle:    p.eventTitle,
			EventLocation: p.eventLocation,
		}
		if p.eventTitle != "" {
			date := now.AddDate(0, 0, p.inDays).Truncate(time.Hour)
			post.EventDate = &date
		}
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		postIDs = append(postIDs, post.ID)
	}
	log.Info("Created %d posts", len(postIDs))

	// Every student likes the first post and comments on the club's posts.
	for _, u := range users {
		if u.role != models.RoleStudent {
			continue
		}
		userID := userIDs[u.username]
		if err := like(db, userID, postIDs[0]); err != nil {
			return err
		}
		if err := comment(db, userID, postIDs[0], "See you there, "+u.displayName+" is in!"); err != nil {
			return err
		}
	}
	if err := like(db, userIDs["alice"], postIDs[1]); err != nil {
		return err
	}

	return nil
}

// like and comment write the edge row and its counter in one transaction.
func like(db *gorm.DB, userID, postID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Like{UserID: userID, PostID: postID}).Error; err != nil {
			return fmt.Errorf("failed to create like: %w", err)
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
}

func comment(db *gorm.DB, userID, postID, content string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Comment{UserID: userID, PostID: postID, Content: content}).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
}

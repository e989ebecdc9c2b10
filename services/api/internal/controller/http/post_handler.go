package http

import (
	"net/http"
	"time"

	"unievent/pkg/logger"
	"unievent/pkg/response"
	"unievent/services/api/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	postUseCase usecase.PostUseCase
	logger      *logger.Logger
}

func NewPostHandler(postUseCase usecase.PostUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postUseCase: postUseCase,
		logger:      logger,
	}
}

type CreatePostRequest struct {
	Content       string     `json:"content" binding:"required,max=280"`
	EventTitle    string     `json:"event_title" binding:"max=100"`
	EventLocation string     `json:"event_location" binding:"max=150"`
	EventDate     *time.Time `json:"event_date"`
	ImageURL      string     `json:"image_url" binding:"omitempty,url,max=500"`
}

// ListFeed godoc
// @Summary      List the feed
// @Description  All posts, newest first
// @Tags         posts
// @Produce      json
// @Param        page query int false "Zero-based page" default(0)
// @Param        size query int false "Page size (max 100)" default(20)
// @Success      200  {object}  entity.Page[entity.Post]
// @Failure      400  {object}  response.ErrorBody
// @Router       /posts [get]
func (h *PostHandler) ListFeed(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	posts, err := h.postUseCase.ListFeed(c.Request.Context(), page)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost godoc
// @Summary      Get post by ID
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.Post
// @Failure      404  {object}  response.ErrorBody
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postUseCase.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// ListByAuthor godoc
// @Summary      List a user's posts
// @Description  Posts by one author, newest first
// @Tags         posts
// @Produce      json
// @Param        userId path string true "Author ID"
// @Param        page query int false "Zero-based page" default(0)
// @Param        size query int false "Page size (max 100)" default(20)
// @Success      200  {object}  entity.Page[entity.Post]
// @Failure      404  {object}  response.ErrorBody
// @Router       /posts/user/{userId} [get]
func (h *PostHandler) ListByAuthor(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	posts, err := h.postUseCase.ListByAuthor(c.Request.Context(), c.Param("userId"), page)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// CreatePost godoc
// @Summary      Create a post
// @Description  Creates an event post authored by the caller
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePostRequest true "Post data"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	post, err := h.postUseCase.CreatePost(c.Request.Context(), principalFrom(c), usecase.CreatePostInput{
		Content:       req.Content,
		EventTitle:    req.EventTitle,
		EventLocation: req.EventLocation,
		EventDate:     req.EventDate,
		ImageURL:      req.ImageURL,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// DeletePost godoc
// @Summary      Delete a post
// @Description  Author or ADMIN only. Removes the post's likes and comments too.
// @Tags         posts
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      204
// @Failure      401  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postUseCase.DeletePost(c.Request.Context(), principalFrom(c), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

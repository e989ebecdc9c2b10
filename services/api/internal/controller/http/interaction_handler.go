package http

import (
	"net/http"

	"unievent/pkg/logger"
	"unievent/pkg/response"
	"unievent/services/api/internal/usecase"

	"github.com/gin-gonic/gin"
)

type InteractionHandler struct {
	interactionUseCase usecase.InteractionUseCase
	logger             *logger.Logger
}

func NewInteractionHandler(interactionUseCase usecase.InteractionUseCase, logger *logger.Logger) *InteractionHandler {
	return &InteractionHandler{
		interactionUseCase: interactionUseCase,
		logger:             logger,
	}
}

type CommentRequest struct {
	Content string `json:"content" binding:"required,max=500"`
}

type LikeStatusResponse struct {
	PostID string `json:"post_id"`
	Liked  bool   `json:"liked"`
}

// ToggleLike godoc
// @Summary      Like or unlike a post
// @Description  Flips the caller's like on the post and returns the new state and count
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.LikeResult
// @Failure      401  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Failure      503  {object}  response.ErrorBody
// @Router       /posts/{id}/like [post]
func (h *InteractionHandler) ToggleLike(c *gin.Context) {
	result, err := h.interactionUseCase.ToggleLike(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// IsLiked godoc
// @Summary      Check whether the caller likes a post
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Param        postId path string true "Post ID"
// @Success      200  {object}  LikeStatusResponse
// @Failure      401  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /users/me/likes/{postId} [get]
func (h *InteractionHandler) IsLiked(c *gin.Context) {
	postID := c.Param("postId")
	liked, err := h.interactionUseCase.IsLiked(c.Request.Context(), principalFrom(c), postID)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, LikeStatusResponse{PostID: postID, Liked: liked})
}

// ListComments godoc
// @Summary      List comments on a post
// @Description  Newest first
// @Tags         interactions
// @Produce      json
// @Param        id path string true "Post ID"
// @Param        page query int false "Zero-based page" default(0)
// @Param        size query int false "Page size (max 100)" default(20)
// @Success      200  {object}  entity.Page[entity.Comment]
// @Failure      404  {object}  response.ErrorBody
// @Router       /posts/{id}/comments [get]
func (h *InteractionHandler) ListComments(c *gin.Context) {
	page, err := pageRequest(c)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	comments, err := h.interactionUseCase.ListComments(c.Request.Context(), c.Param("id"), page)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// AddComment godoc
// @Summary      Comment on a post
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body CommentRequest true "Comment"
// @Success      201  {object}  entity.Comment
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /posts/{id}/comments [post]
func (h *InteractionHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	comment, err := h.interactionUseCase.AddComment(c.Request.Context(), principalFrom(c), c.Param("id"), req.Content)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Description  Comment author or ADMIN only
// @Tags         interactions
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        commentId path string true "Comment ID"
// @Success      204
// @Failure      401  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /posts/{id}/comments/{commentId} [delete]
func (h *InteractionHandler) DeleteComment(c *gin.Context) {
	err := h.interactionUseCase.DeleteComment(c.Request.Context(), principalFrom(c), c.Param("id"), c.Param("commentId"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

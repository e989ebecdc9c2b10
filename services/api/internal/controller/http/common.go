package http

import (
	"strconv"

	"unievent/pkg/apperror"
	"unievent/pkg/middleware"
	"unievent/services/api/internal/entity"

	"github.com/gin-gonic/gin"
)

func principalFrom(c *gin.Context) *entity.Principal {
	p, _ := middleware.PrincipalFrom[*entity.Principal](c)
	return p
}

// pageRequest reads the zero-based ?page and ?size query parameters.
func pageRequest(c *gin.Context) (entity.PageRequest, error) {
	var req entity.PageRequest
	details := map[string]string{}

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			details["page"] = "must be a non-negative integer"
		}
		req.Page = page
	}
	if raw := c.Query("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			details["size"] = "must be a positive integer"
		}
		req.Size = size
	}

	if len(details) > 0 {
		return req, apperror.Validation("Validation failed", details)
	}
	return req.Normalize(), nil
}

package handlers

import (
	"net/http"

	"tasktracker/internal/logger"

	"github.com/gin-gonic/gin"
)

// ListUsers returns every user as {_id, name, email}, used to populate
// assignee pickers.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

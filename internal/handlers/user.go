package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/marcotondi/lfg-bot/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type SetRoleRequest struct {
	Role    string `json:"role" binding:"required"` // master or admin
	Enabled bool   `json:"enabled"`
}

func (h *UserHandler) SetRole(c *gin.Context) {
	telegramID, err := strconv.ParseInt(c.Param("telegram_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid telegram id"})
		return
	}

	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "role is required"})
		return
	}

	user, err := h.users.SetRole(telegramID, req.Role, req.Enabled)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
		case errors.Is(err, services.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown role"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to update role"})
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

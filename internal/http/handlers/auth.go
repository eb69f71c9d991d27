package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"todo_webapp/internal/domain"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	res, err := h.Auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"user":  userJSON(res.User),
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": res.Token,
		"user":  userJSON(res.User),
	})
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	user, err := h.Auth.Me(c.Request.Context(), userID)
	if errors.Is(err, domain.ErrNotFound) {
		// token outlived its account
		respondError(c, domain.ErrUnauthorized)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// Activity lists the caller's own audit trail, newest first. ?limit caps it at 100.
func (h *Handler) Activity(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	limit := defaultActivityLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(c, fmt.Errorf("%w: limit must be a positive number", domain.ErrInvalidInput))
			return
		}
		limit = min(n, maxActivityLimit)
	}

	logs, err := h.Auth.Activity(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

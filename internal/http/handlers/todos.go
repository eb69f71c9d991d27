package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"todo_webapp/internal/domain"

	"github.com/gin-gonic/gin"
)

type CreateTodoRequest struct {
	Text string `json:"text" binding:"required"`
}

// Completed is a pointer so that an explicit false passes "required"
type UpdateTodoRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

func todoID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid todo id", domain.ErrInvalidInput)
	}
	return id, nil
}

func (h *Handler) ListTodos(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	todos, err := h.Todos.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *Handler) CreateTodo(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	todo, err := h.Todos.Create(c.Request.Context(), userID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *Handler) UpdateTodo(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	id, err := todoID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindErrorMessage(err)})
		return
	}

	todo, err := h.Todos.Update(c.Request.Context(), userID, id, *req.Completed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *Handler) DeleteTodo(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	id, err := todoID(c)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.Todos.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "todo deleted", "id": id})
}

func (h *Handler) TodoStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondError(c, domain.ErrUnauthorized)
		return
	}

	stats, err := h.Todos.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"voxbridge/store"
)

// RegisterUserRoutes registers the user account endpoints.
func RegisterUserRoutes(r *gin.Engine, users store.UserStore) {
	ctrl := &usersController{users: users}
	r.POST("/users", ctrl.handleCreateUser)
	r.GET("/users", ctrl.handleListUsers)
	r.GET("/users/:id", ctrl.handleGetUser)
}

type usersController struct {
	users store.UserStore
}

// CreateUserRequest is the signup payload.
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (u *usersController) handleCreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := u.users.Create(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username already in use"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (u *usersController) handleListUsers(c *gin.Context) {
	users, err := u.users.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (u *usersController) handleGetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := u.users.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

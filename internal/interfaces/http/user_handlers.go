package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/garyjia/lecturer-claims/internal/application/service"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// LoginRequest carries credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned by a successful login
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CreateUserRequest is an HR request for a new account
type CreateUserRequest struct {
	Email           string          `json:"email" binding:"required,email"`
	FullName        string          `json:"full_name" binding:"required,max=200"`
	Role            entity.Role     `json:"role" binding:"required,oneof=HR Lecturer Coordinator Manager"`
	HourlyRate      decimal.Decimal `json:"hourly_rate"`
	Password        string          `json:"password" binding:"required"`
	ConfirmPassword string          `json:"confirm_password" binding:"required,eqfield=Password"`
}

// UpdateUserRequest carries the editable profile fields
type UpdateUserRequest struct {
	Email      string          `json:"email" binding:"required,email"`
	FullName   string          `json:"full_name" binding:"required,max=200"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}

	result, err := h.services.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	ok(c, http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserResponse(result.User),
	})
}

// Me handles GET /api/me
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.services.Users.Me(c.Request.Context(), callerFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, toUserResponse(user))
}

// ListUsers handles GET /api/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.services.Users.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	ok(c, http.StatusOK, out)
}

// CreateUser handles POST /api/users
func (h *Handlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}

	user, err := h.services.Users.Create(c.Request.Context(), service.CreateUserInput{
		Email:      req.Email,
		FullName:   req.FullName,
		Role:       req.Role,
		HourlyRate: req.HourlyRate,
		Password:   req.Password,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusCreated, toUserResponse(user))
}

// UpdateUser handles PUT /api/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, bindError(err))
		return
	}

	user, err := h.services.Users.Update(c.Request.Context(), id, service.UpdateUserInput{
		Email:      req.Email,
		FullName:   req.FullName,
		HourlyRate: req.HourlyRate,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, toUserResponse(user))
}

// ActivateUser handles POST /api/users/:id/activate
func (h *Handlers) ActivateUser(c *gin.Context) {
	h.setActive(c, true)
}

// DeactivateUser handles POST /api/users/:id/deactivate
func (h *Handlers) DeactivateUser(c *gin.Context) {
	h.setActive(c, false)
}

func (h *Handlers) setActive(c *gin.Context, active bool) {
	id, valid := pathID(c, "id")
	if !valid {
		return
	}

	user, err := h.services.Users.SetActive(c.Request.Context(), id, active)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	ok(c, http.StatusOK, toUserResponse(user))
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/inventory-service/internal/service"
	"github.com/suteetoe/inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// LoginRequest carries the credentials to verify
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login verifies credentials and returns the user. No session or token is issued.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}
	user, err := h.svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return fail(c, err, "Login failed")
	}
	logger.FromEcho(c).Info("User logged in", zap.Uint("user_id", user.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user":    user,
	})
}

// ListUsers handles retrieving users of every kind
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.svc.Users(c.Request().Context())
	if err != nil {
		return fail(c, err, "Failed to list users")
	}
	return c.JSON(http.StatusOK, users)
}

// ListAdminUsers handles retrieving admin users
func (h *Handler) ListAdminUsers(c echo.Context) error {
	users, err := h.svc.AdminUsers(c.Request().Context())
	if err != nil {
		return fail(c, err, "Failed to list admin users")
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser handles retrieving a single user by ID
func (h *Handler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid user ID")
	}
	user, err := h.svc.User(c.Request().Context(), id)
	if err != nil {
		return fail(c, err, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser handles registering a plain user
func (h *Handler) CreateUser(c echo.Context) error {
	var req service.UserInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	user, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, err, "Failed to create user")
	}
	return c.JSON(http.StatusCreated, user)
}

// CreateAdminUser handles creating an admin user
func (h *Handler) CreateAdminUser(c echo.Context) error {
	var req service.AdminUserInput
	if ok, err := bind(c, &req); !ok {
		return err
	}
	user, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return fail(c, err, "Failed to create admin user")
	}
	return c.JSON(http.StatusCreated, user)
}

// UpdateUser handles partial user updates
func (h *Handler) UpdateUser(c echo.Context) error {
	return h.updateUser(c, false)
}

// UpdateAdminUser handles partial admin user updates
func (h *Handler) UpdateAdminUser(c echo.Context) error {
	return h.updateUser(c, true)
}

func (h *Handler) updateUser(c echo.Context, admin bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, err, "Invalid user ID")
	}
	var req service.UserPatch
	if ok, err := bind(c, &req); !ok {
		return err
	}
	if admin {
		req = req.AsAdmin()
	}
	user, err := h.svc.UpdateByID(c.Request().Context(), id, req)
	if err != nil {
		return fail(c, err, "Failed to update user")
	}
	return c.JSON(http.StatusOK, user)
}

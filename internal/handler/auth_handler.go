package handler

import (
	"sweet-shop-api/internal/middleware"
	"sweet-shop-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RefreshRequest represents the refresh request body
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// Register creates an account and signs it in
// POST /api/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	response, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// Login handles user authentication
// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	response, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(response)
}

// Refresh trades a refresh token for a new pair
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	pair, err := h.authService.Refresh(c.UserContext(), req.Refresh)
	if err != nil {
		return err
	}
	return c.JSON(pair)
}

// Me returns the caller's own record
// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	caller := middleware.CallerFrom(c)
	if caller == nil {
		return fiber.ErrUnauthorized
	}

	user, err := h.authService.Me(c.UserContext(), caller.UserID)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"

	"farmconnect/internal/services"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	respond     func(*fiber.Ctx, error) error
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, respond func(*fiber.Ctx, error) error) *AuthHandler {
	return &AuthHandler{authService: authService, respond: respond}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name              string `json:"name" validate:"required,max=100"`
	Phone             string `json:"phone" validate:"required,max=20"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required,min=6"`
	Role              string `json:"role" validate:"required,oneof=farmer consumer"`
	Village           string `json:"village" validate:"max=100"`
	State             string `json:"state" validate:"max=100"`
	City              string `json:"city" validate:"max=100"`
	PreferredLanguage string `json:"preferred_language" validate:"omitempty,oneof=en hi kn te"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}

	user, err := h.authService.RegisterUser(c.UserContext(), services.RegisterInput{
		Name:              req.Name,
		Phone:             req.Phone,
		Email:             req.Email,
		Password:          req.Password,
		Role:              req.Role,
		Village:           req.Village,
		State:             req.State,
		City:              req.City,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		return h.respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}

	token, user, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return h.respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/product-service/internal/api/dto"
	"github.com/spec-kit/product-service/internal/service"
	"github.com/spec-kit/product-service/internal/validation"
)

const tokenTypeBearer = "bearer"

// AuthHandler exposes registration and login.
type AuthHandler struct {
	accounts  *service.AccountService
	validator *validation.Validator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accounts *service.AccountService, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{accounts: accounts, validator: validator}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	_, token, err := h.accounts.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(tokenResponse(token))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	_, token, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(tokenResponse(token))
}

func tokenResponse(token service.IssuedToken) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken: token.Token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   token.ExpiresAt,
	}
}

package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/product-service/internal/api/dto"
	"github.com/spec-kit/product-service/internal/service"
	"github.com/spec-kit/product-service/internal/validation"
)

// UsersHandler exposes the caller's own account.
type UsersHandler struct {
	accounts  *service.AccountService
	validator *validation.Validator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accounts *service.AccountService, validator *validation.Validator) *UsersHandler {
	return &UsersHandler{accounts: accounts, validator: validator}
}

// Me handles GET /api/users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAccountResponse(account))
}

// UpdateMe handles PUT /api/users/me.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}

	updated, err := h.accounts.UpdateProfile(c.UserContext(), account, service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewAccountResponse(updated))
}

// DeleteMe handles DELETE /api/users/me. The account is deactivated, not removed.
func (h *UsersHandler) DeleteMe(c *fiber.Ctx) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	if err := h.accounts.Deactivate(c.UserContext(), account); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

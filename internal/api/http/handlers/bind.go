package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/validation"
	apperrors "github.com/spec-kit/product-service/pkg/util/errorutil"
)

// bindAndValidate decodes the request body into out and runs tag validation.
func bindAndValidate(c *fiber.Ctx, v *validation.Validator, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewInvalidPayload(err)
	}
	return v.Struct(out)
}

func currentAccount(c *fiber.Ctx) (*domain.Account, error) {
	account, ok := auth.AccountFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("Could not validate credentials")
	}
	return account, nil
}

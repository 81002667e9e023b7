package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/repository"
	apperrors "github.com/spec-kit/product-service/pkg/util/errorutil"
)

const accountKey = "auth_account"

// Messages returned to callers. Every "who are you" failure shares one message.
const (
	msgCouldNotValidate = "Could not validate credentials"
	msgInactiveAccount  = "Inactive user"
)

// AccountFinder loads an account by id. A missing account is repository.ErrNotFound.
type AccountFinder interface {
	FindAccount(ctx context.Context, id string) (*domain.Account, error)
}

// IdentityResolver maps a bearer token to an active account.
type IdentityResolver struct {
	tokens   *TokenManager
	accounts AccountFinder
}

// NewIdentityResolver constructs a resolver.
func NewIdentityResolver(tokens *TokenManager, accounts AccountFinder) *IdentityResolver {
	return &IdentityResolver{tokens: tokens, accounts: accounts}
}

// Resolve verifies token and loads its account. Invalid tokens, tokens without
// a subject and tokens for unknown accounts are Unauthorized; a known but
// inactive account is Forbidden.
func (r *IdentityResolver) Resolve(ctx context.Context, token string) (*domain.Account, error) {
	claims, err := r.tokens.Verify(token)
	if err != nil {
		return nil, apperrors.NewUnauthorizedWithCause(msgCouldNotValidate, err)
	}
	if claims.Subject == "" {
		return nil, apperrors.NewUnauthorizedWithCause(msgCouldNotValidate, ErrTokenMalformed)
	}

	account, err := r.accounts.FindAccount(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorizedWithCause(msgCouldNotValidate, err)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !account.IsActive {
		return nil, apperrors.NewForbidden(msgInactiveAccount)
	}
	return account, nil
}

// AuthMiddleware validates bearer tokens and loads the calling account.
type AuthMiddleware struct {
	resolver *IdentityResolver
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(resolver *IdentityResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		// indistinguishable from a bad token on purpose
		return apperrors.NewUnauthorized(msgCouldNotValidate)
	}

	account, err := m.resolver.Resolve(c.UserContext(), token)
	if err != nil {
		return err
	}

	c.Locals(accountKey, account)
	return c.Next()
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

// AccountFromContext retrieves the authenticated account.
func AccountFromContext(c *fiber.Ctx) (*domain.Account, bool) {
	val := c.Locals(accountKey)
	if val == nil {
		return nil, false
	}
	account, ok := val.(*domain.Account)
	return account, ok && account != nil
}

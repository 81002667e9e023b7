package repository

import (
	"context"
	"errors"

	"github.com/spec-kit/product-service/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a write would break email uniqueness.
	ErrDuplicateEmail = errors.New("email already in use")
)

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
}

// ProductRepository defines persistence access for products.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, limit, offset int) ([]domain.Product, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Product, error)
}

// Session exposes repositories bound to one transaction.
type Session interface {
	Accounts() AccountRepository
	Products() ProductRepository
}

// Store hands out transactional sessions. WithinTx commits when fn returns
// nil and rolls back otherwise; a panic inside fn rolls back and is re-raised.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, session Session) error) error
	Ping(ctx context.Context) error
}

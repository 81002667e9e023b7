package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/events"
	"github.com/spec-kit/product-service/internal/repository"
	apperrors "github.com/spec-kit/product-service/pkg/util/errorutil"
)

// Listing bounds for product pages.
const (
	DefaultListLimit = 100
	MaxListLimit     = 100
)

// ProductCache is the read-through cache consulted by Get. Get returns nil on
// a miss along with a generation token; Fill must skip the write when the
// product was invalidated after that token was read. Entries are invalidated
// by the product event subscribers.
type ProductCache interface {
	Get(ctx context.Context, id string) (*domain.Product, int64, error)
	Fill(ctx context.Context, product *domain.Product, generation int64) error
}

// ProductInput carries the fields of a new product.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
}

// ProductUpdate holds optional product changes; nil fields are left untouched.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *float64
}

// ProductService manages products. Any authenticated account may read;
// only the owner may change or delete.
type ProductService struct {
	store      repository.Store
	cache      ProductCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ProductDependencies encapsulates collaborators for the product service.
type ProductDependencies struct {
	Store      repository.Store
	Cache      ProductCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewProductService builds the service. Cache may be nil.
func NewProductService(deps ProductDependencies) *ProductService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		store:      deps.Store,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Create stores a new product owned by owner.
func (s *ProductService) Create(ctx context.Context, owner *domain.Account, input ProductInput) (*domain.Product, error) {
	if err := checkPrice(input.Price); err != nil {
		return nil, err
	}

	product := &domain.Product{
		ID:          uuid.NewString(),
		OwnerID:     owner.ID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		if err := session.Products().Create(ctx, product); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishProductEvent(ctx, events.EventProductCreated, owner, product)
	return product, nil
}

// Get returns one product by id.
func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	var (
		generation int64
		cacheable  bool
	)
	if s.cache != nil {
		cached, gen, err := s.cache.Get(ctx, id)
		switch {
		case err != nil:
			s.logger.Warn("product cache read failed", zap.String("product_id", id), zap.Error(err))
		case cached != nil:
			return cached, nil
		default:
			generation, cacheable = gen, true
		}
	}

	var product *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		found, err := loadProduct(ctx, session, id)
		if err != nil {
			return err
		}
		product = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Fill(ctx, product, generation); err != nil {
			s.logger.Warn("product cache write failed", zap.String("product_id", id), zap.Error(err))
		}
	}
	return product, nil
}

// List returns a page of all products in creation order. A non-positive or
// oversized limit is clamped to the page bounds.
func (s *ProductService) List(ctx context.Context, skip, limit int) ([]domain.Product, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > MaxListLimit {
		limit = DefaultListLimit
	}

	var products []domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		found, err := session.Products().List(ctx, limit, skip)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		products = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListByOwner returns every product owned by owner.
func (s *ProductService) ListByOwner(ctx context.Context, owner *domain.Account) ([]domain.Product, error) {
	var products []domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		found, err := session.Products().ListByOwner(ctx, owner.ID)
		if err != nil {
			return fmt.Errorf("list products by owner: %w", err)
		}
		products = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// Update applies a partial update. A missing product is NotFound before
// ownership is considered.
func (s *ProductService) Update(ctx context.Context, account *domain.Account, id string, update ProductUpdate) (*domain.Product, error) {
	if update.Price != nil {
		if err := checkPrice(*update.Price); err != nil {
			return nil, err
		}
	}

	var product *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		current, err := loadProduct(ctx, session, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeMutation(account, current, "update"); err != nil {
			return err
		}

		if update.Name != nil {
			current.Name = *update.Name
		}
		if update.Description != nil {
			current.Description = *update.Description
		}
		if update.Price != nil {
			current.Price = *update.Price
		}
		if err := session.Products().Update(ctx, current); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		product = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishProductEvent(ctx, events.EventProductUpdated, account, product)
	return product, nil
}

// Delete removes a product owned by account.
func (s *ProductService) Delete(ctx context.Context, account *domain.Account, id string) error {
	var product *domain.Product
	err := s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		current, err := loadProduct(ctx, session, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeMutation(account, current, "delete"); err != nil {
			return err
		}
		if err := session.Products().Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("Product", nil)
			}
			return fmt.Errorf("delete product: %w", err)
		}
		product = current
		return nil
	})
	if err != nil {
		return err
	}

	s.publishProductEvent(ctx, events.EventProductDeleted, account, product)
	return nil
}

func (s *ProductService) publishProductEvent(ctx context.Context, eventType events.EventType, actor *domain.Account, product *domain.Product) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: product.ID,
		ActorID:   actor.ID,
		Timestamp: time.Now(),
		Payload: events.ProductPayload{
			OwnerID: product.OwnerID,
			Name:    product.Name,
			Price:   product.Price,
		},
	})
}

func loadProduct(ctx context.Context, session repository.Session, id string) (*domain.Product, error) {
	product, err := session.Products().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Product", nil)
		}
		return nil, fmt.Errorf("load product: %w", err)
	}
	return product, nil
}

func checkPrice(price float64) error {
	if !(price > 0) {
		return apperrors.NewValidationError("invalid price", map[string]any{"price": "must be greater than 0"})
	}
	return nil
}

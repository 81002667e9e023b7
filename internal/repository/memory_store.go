package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/product-service/internal/domain"
)

// MemoryStore keeps accounts and products in process memory. Transactions are
// serialized and applied copy-on-write, so a failed or panicking session
// leaves the store untouched.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	products map[string]memProduct
	seq      int64
	now      func() time.Time
}

type memProduct struct {
	product domain.Product
	seq     int64
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]domain.Account),
		products: make(map[string]memProduct),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithinTx implements Store. Sessions must not be nested.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, session Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := &memSession{
		accounts: make(map[string]domain.Account, len(s.accounts)),
		products: make(map[string]memProduct, len(s.products)),
		seq:      s.seq,
		now:      s.now,
	}
	for id, account := range s.accounts {
		session.accounts[id] = account
	}
	for id, product := range s.products {
		session.products[id] = product
	}

	if err := fn(ctx, session); err != nil {
		return err
	}

	s.accounts = session.accounts
	s.products = session.products
	s.seq = session.seq
	return nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

type memSession struct {
	accounts map[string]domain.Account
	products map[string]memProduct
	seq      int64
	now      func() time.Time
}

func (s *memSession) Accounts() AccountRepository {
	return memAccounts{s}
}

func (s *memSession) Products() ProductRepository {
	return memProducts{s}
}

type memAccounts struct {
	s *memSession
}

func (r memAccounts) Create(_ context.Context, account *domain.Account) error {
	if account.ID == "" {
		return errors.New("account id required")
	}
	if _, exists := r.s.accounts[account.ID]; exists {
		return errors.New("account id already exists")
	}
	if r.emailTaken(account.Email, "") {
		return ErrDuplicateEmail
	}
	now := r.s.now()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.s.accounts[account.ID] = *account
	return nil
}

func (r memAccounts) Update(_ context.Context, account *domain.Account) error {
	current, ok := r.s.accounts[account.ID]
	if !ok {
		return ErrNotFound
	}
	if r.emailTaken(account.Email, account.ID) {
		return ErrDuplicateEmail
	}
	account.CreatedAt = current.CreatedAt
	account.UpdatedAt = r.s.now()
	r.s.accounts[account.ID] = *account
	return nil
}

func (r memAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	account, ok := r.s.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (r memAccounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, account := range r.s.accounts {
		if account.Email == email {
			found := account
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r memAccounts) emailTaken(email, exceptID string) bool {
	for id, account := range r.s.accounts {
		if id != exceptID && account.Email == email {
			return true
		}
	}
	return false
}

type memProducts struct {
	s *memSession
}

func (r memProducts) Create(_ context.Context, product *domain.Product) error {
	if product.ID == "" {
		return errors.New("product id required")
	}
	if _, exists := r.s.products[product.ID]; exists {
		return errors.New("product id already exists")
	}
	now := r.s.now()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.s.seq++
	r.s.products[product.ID] = memProduct{product: *product, seq: r.s.seq}
	return nil
}

func (r memProducts) Update(_ context.Context, product *domain.Product) error {
	current, ok := r.s.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	updated := current.product
	updated.Name = product.Name
	updated.Description = product.Description
	updated.Price = product.Price
	updated.UpdatedAt = r.s.now()
	r.s.products[product.ID] = memProduct{product: updated, seq: current.seq}
	*product = updated
	return nil
}

func (r memProducts) Delete(_ context.Context, id string) error {
	if _, ok := r.s.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r memProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	entry, ok := r.s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	product := entry.product
	return &product, nil
}

func (r memProducts) List(_ context.Context, limit, offset int) ([]domain.Product, error) {
	all := r.ordered(func(domain.Product) bool { return true })
	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []domain.Product{}, nil
	}
	all = all[offset:]
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r memProducts) ListByOwner(_ context.Context, ownerID string) ([]domain.Product, error) {
	return r.ordered(func(p domain.Product) bool { return p.OwnerID == ownerID }), nil
}

func (r memProducts) ordered(keep func(domain.Product) bool) []domain.Product {
	entries := make([]memProduct, 0, len(r.s.products))
	for _, entry := range r.s.products {
		if keep(entry.product) {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	result := make([]domain.Product, 0, len(entries))
	for _, entry := range entries {
		result = append(result, entry.product)
	}
	return result
}

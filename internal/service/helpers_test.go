package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/events"
	"github.com/spec-kit/product-service/internal/repository"
	apperrors "github.com/spec-kit/product-service/pkg/util/errorutil"
)

// fakeHasher stands in for bcrypt so tests do not pay the work factor.
type fakeHasher struct {
	mu          sync.Mutex
	verifyCalls int
}

func (h *fakeHasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", auth.ErrEmptyPassword
	}
	return "hashed:" + plain, nil
}

func (h *fakeHasher) Verify(plain, digest string) bool {
	h.mu.Lock()
	h.verifyCalls++
	h.mu.Unlock()
	return digest == "hashed:"+plain
}

func (h *fakeHasher) calls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.verifyCalls
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func recordAll(dispatcher events.Dispatcher) *eventRecorder {
	rec := &eventRecorder{}
	for _, eventType := range []events.EventType{
		events.EventAccountRegistered,
		events.EventAccountUpdated,
		events.EventAccountDeactivated,
		events.EventProductCreated,
		events.EventProductUpdated,
		events.EventProductDeleted,
	} {
		dispatcher.Subscribe(eventType, rec.handle)
	}
	return rec
}

type fixture struct {
	store      *repository.MemoryStore
	hasher     *fakeHasher
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	events     *eventRecorder
	accounts   *AccountService
	products   *ProductService
}

func newFixture(t *testing.T, cache ProductCache) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	hasher := &fakeHasher{}
	tokens := auth.NewTokenManager("test-secret", 60)
	dispatcher := events.NewInMemoryDispatcher(nil)
	rec := recordAll(dispatcher)

	return &fixture{
		store:      store,
		hasher:     hasher,
		tokens:     tokens,
		dispatcher: dispatcher,
		events:     rec,
		accounts: NewAccountService(AccountDependencies{
			Store:      store,
			Hasher:     hasher,
			Tokens:     tokens,
			Dispatcher: dispatcher,
		}),
		products: NewProductService(ProductDependencies{
			Store:      store,
			Cache:      cache,
			Dispatcher: dispatcher,
		}),
	}
}

func requireCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
	return domainErr
}

func ptr[T any](v T) *T {
	return &v
}

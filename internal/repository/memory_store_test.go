package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/product-service/internal/domain"
)

func createAccount(t *testing.T, store Store, account *domain.Account) {
	t.Helper()
	err := store.WithinTx(context.Background(), func(ctx context.Context, s Session) error {
		return s.Accounts().Create(ctx, account)
	})
	require.NoError(t, err)
}

func TestMemoryStoreAccountLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	account := &domain.Account{ID: "a1", Name: "Ada", Email: "ada@example.com", PasswordHash: "h", IsActive: true}
	createAccount(t, store, account)
	assert.False(t, account.CreatedAt.IsZero())

	err := store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		byEmail, err := s.Accounts().GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, "a1", byEmail.ID)

		byEmail.Name = "Ada L."
		byEmail.IsActive = false
		return s.Accounts().Update(ctx, byEmail)
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		got, err := s.Accounts().GetByID(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Ada L.", got.Name)
		assert.False(t, got.IsActive)
		assert.Equal(t, account.CreatedAt, got.CreatedAt)

		_, err = s.Accounts().GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.Accounts().GetByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreEmailUniqueness(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	createAccount(t, store, &domain.Account{ID: "a1", Email: "ada@example.com"})
	createAccount(t, store, &domain.Account{ID: "a2", Email: "bob@example.com"})

	err := store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		return s.Accounts().Create(ctx, &domain.Account{ID: "a3", Email: "ada@example.com"})
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	err = store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		return s.Accounts().Update(ctx, &domain.Account{ID: "a2", Email: "ada@example.com"})
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// keeping one's own email is not a conflict
	err = store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		return s.Accounts().Update(ctx, &domain.Account{ID: "a1", Name: "Ada", Email: "ada@example.com"})
	})
	assert.NoError(t, err)
}

func TestMemoryStoreRollsBackOnError(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		require.NoError(t, s.Accounts().Create(ctx, &domain.Account{ID: "a1", Email: "ada@example.com"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		_, err := s.Accounts().GetByID(ctx, "a1")
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRollsBackAndRepanics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = store.WithinTx(ctx, func(ctx context.Context, s Session) error {
			_ = s.Accounts().Create(ctx, &domain.Account{ID: "a1", Email: "ada@example.com"})
			panic("kaboom")
		})
	})

	// the lock was released and nothing was committed
	err := store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		_, err := s.Accounts().GetByID(ctx, "a1")
		return err
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewMemoryStore().WithinTx(ctx, func(context.Context, Session) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestMemoryStoreProducts(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ids := []string{"p1", "p2", "p3", "p4"}
	owners := []string{"a1", "a2", "a1", "a2"}
	err := store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		for i, id := range ids {
			if err := s.Products().Create(ctx, &domain.Product{ID: id, OwnerID: owners[i], Name: id, Price: 1}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		products := s.Products()

		all, err := products.List(ctx, 100, 0)
		require.NoError(t, err)
		assert.Equal(t, ids, productIDs(all))

		page, err := products.List(ctx, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"p2", "p3"}, productIDs(page))

		empty, err := products.List(ctx, 10, 10)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		mine, err := products.ListByOwner(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p3"}, productIDs(mine))

		none, err := products.ListByOwner(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreProductUpdateKeepsOwner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		return s.Products().Create(ctx, &domain.Product{ID: "p1", OwnerID: "a1", Name: "old", Price: 1})
	})
	require.NoError(t, err)

	err = store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		update := &domain.Product{ID: "p1", OwnerID: "intruder", Name: "new", Description: "d", Price: 2}
		require.NoError(t, s.Products().Update(ctx, update))
		assert.Equal(t, "a1", update.OwnerID)

		got, err := s.Products().GetByID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, "a1", got.OwnerID)
		assert.Equal(t, "new", got.Name)
		assert.Equal(t, 2.0, got.Price)

		assert.ErrorIs(t, s.Products().Update(ctx, &domain.Product{ID: "missing"}), ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreProductDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, s Session) error {
		require.NoError(t, s.Products().Create(ctx, &domain.Product{ID: "p1", OwnerID: "a1", Price: 1}))
		require.NoError(t, s.Products().Delete(ctx, "p1"))
		assert.ErrorIs(t, s.Products().Delete(ctx, "p1"), ErrNotFound)
		_, err := s.Products().GetByID(ctx, "p1")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func productIDs(products []domain.Product) []string {
	ids := make([]string, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

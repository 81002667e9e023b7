package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/product-service/internal/auth"
	"github.com/spec-kit/product-service/internal/domain"
	"github.com/spec-kit/product-service/internal/events"
	"github.com/spec-kit/product-service/internal/repository"
	apperrors "github.com/spec-kit/product-service/pkg/util/errorutil"
)

// IssuedToken is a signed bearer token and its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// RegisterInput carries the fields needed to open an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ProfileUpdate holds optional profile changes; nil fields are left untouched.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// AccountService coordinates registration, login and self-service profile changes.
type AccountService struct {
	store      repository.Store
	hasher     auth.PasswordHasher
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

// AccountDependencies encapsulates collaborators for the account service.
type AccountDependencies struct {
	Store      repository.Store
	Hasher     auth.PasswordHasher
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAccountService builds the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		store:      deps.Store,
		hasher:     deps.Hasher,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Register creates a new active account and returns a token bound to it.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.Account, IssuedToken, error) {
	if err := checkPassword(input.Password); err != nil {
		return nil, IssuedToken{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, IssuedToken{}, fmt.Errorf("hash password: %w", err)
	}

	account := &domain.Account{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		IsActive:     true,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		accounts := session.Accounts()
		if _, err := accounts.GetByEmail(ctx, input.Email); err == nil {
			return apperrors.NewDuplicateEmail()
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("lookup account by email: %w", err)
		}
		if err := accounts.Create(ctx, account); err != nil {
			// lost a race against a concurrent registration
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return apperrors.NewDuplicateEmail()
			}
			return fmt.Errorf("create account: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, IssuedToken{}, err
	}

	token, err := s.IssueToken(account)
	if err != nil {
		return nil, IssuedToken{}, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventAccountRegistered,
		SubjectID: account.ID,
		ActorID:   account.ID,
	})
	return account, token, nil
}

// Authenticate checks an email/password pair. Unknown email, wrong password
// and inactive account all return the same AuthenticationFailed error, and
// the unknown-email path still pays for one hash comparison.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	var account *domain.Account
	err := s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		found, err := session.Accounts().GetByEmail(ctx, email)
		if err != nil {
			return err
		}
		account = found
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Verify(password, s.timingDigest())
			return nil, apperrors.NewAuthenticationFailed()
		}
		return nil, fmt.Errorf("lookup account by email: %w", err)
	}

	passwordOK := s.hasher.Verify(password, account.PasswordHash)
	if !passwordOK || !account.IsActive {
		return nil, apperrors.NewAuthenticationFailed()
	}
	return account, nil
}

// Login authenticates and issues a fresh token.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.Account, IssuedToken, error) {
	account, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, IssuedToken{}, err
	}
	token, err := s.IssueToken(account)
	if err != nil {
		return nil, IssuedToken{}, err
	}
	return account, token, nil
}

// IssueToken signs a token carrying the account's identity with the default TTL.
func (s *AccountService) IssueToken(account *domain.Account) (IssuedToken, error) {
	token, exp, err := s.tokens.Issue(account.Identity(), 0)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("issue token: %w", err)
	}
	return IssuedToken{Token: token, ExpiresAt: exp}, nil
}

// FindAccount implements auth.AccountFinder.
func (s *AccountService) FindAccount(ctx context.Context, id string) (*domain.Account, error) {
	var account *domain.Account
	err := s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		found, err := session.Accounts().GetByID(ctx, id)
		if err != nil {
			return err
		}
		account = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateProfile applies a partial update to the caller's own account.
func (s *AccountService) UpdateProfile(ctx context.Context, account *domain.Account, update ProfileUpdate) (*domain.Account, error) {
	var newHash string
	if update.Password != nil {
		if err := checkPassword(*update.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*update.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		newHash = hash
	}

	var (
		updated *domain.Account
		changes events.AccountUpdatedPayload
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		accounts := session.Accounts()
		current, err := accounts.GetByID(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}

		if update.Name != nil {
			changes.NameChanged = *update.Name != current.Name
			current.Name = *update.Name
		}
		if update.Email != nil && *update.Email != current.Email {
			other, err := accounts.GetByEmail(ctx, *update.Email)
			switch {
			case err == nil && other.ID != current.ID:
				return apperrors.NewDuplicateEmail()
			case err != nil && !errors.Is(err, repository.ErrNotFound):
				return fmt.Errorf("lookup account by email: %w", err)
			}
			current.Email = *update.Email
			changes.EmailChanged = true
		}
		if newHash != "" {
			current.PasswordHash = newHash
			changes.PasswordChanged = true
		}

		if err := accounts.Update(ctx, current); err != nil {
			if errors.Is(err, repository.ErrDuplicateEmail) {
				return apperrors.NewDuplicateEmail()
			}
			return fmt.Errorf("update account: %w", err)
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventAccountUpdated,
		SubjectID: updated.ID,
		ActorID:   updated.ID,
		Payload:   changes,
	})
	return updated, nil
}

// Deactivate marks the account inactive. It never deletes the row, and
// deactivating an inactive account is a no-op.
func (s *AccountService) Deactivate(ctx context.Context, account *domain.Account) error {
	changed := false
	err := s.store.WithinTx(ctx, func(ctx context.Context, session repository.Session) error {
		accounts := session.Accounts()
		current, err := accounts.GetByID(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}
		if !current.IsActive {
			return nil
		}
		current.IsActive = false
		if err := accounts.Update(ctx, current); err != nil {
			return fmt.Errorf("deactivate account: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return err
	}

	account.IsActive = false
	if changed {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventAccountDeactivated,
			SubjectID: account.ID,
			ActorID:   account.ID,
		})
	}
	return nil
}

// timingDigest is a real digest of a throwaway password, compared against on
// unknown-email logins so they cost the same as a wrong password.
func (s *AccountService) timingDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Warn("unable to prepare timing digest", zap.Error(err))
			return
		}
		s.dummyDigest = digest
	})
	return s.dummyDigest
}

func (s *AccountService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func checkPassword(password string) error {
	if err := auth.CheckPasswordStrength(password); err != nil {
		return apperrors.NewValidationError("invalid password", map[string]any{"password": err.Error()})
	}
	return nil
}

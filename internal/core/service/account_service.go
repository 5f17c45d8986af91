package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/messagely/messaging-api/internal/core/domain"
	"github.com/messagely/messaging-api/internal/core/ports"
)

// AccountService implements registration, authentication, and account
// lookups on top of the account store, the password hasher, and the token
// issuer.
type AccountService struct {
	repo   ports.AccountRepository
	hasher *PasswordHasher
	tokens *TokenIssuer
}

func NewAccountService(repo ports.AccountRepository, hasher *PasswordHasher, tokens *TokenIssuer) *AccountService {
	return &AccountService{repo: repo, hasher: hasher, tokens: tokens}
}

// Register hashes the password and atomically inserts the account. Duplicate
// usernames surface as domain.ErrDuplicateIdentity straight from the store's
// unique constraint; there is no existence pre-check to race against.
func (s *AccountService) Register(ctx context.Context, username, password, firstName, lastName, phone string) (*domain.Account, error) {
	if username == "" || password == "" || firstName == "" || lastName == "" || phone == "" {
		return nil, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := &domain.Account{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		JoinedAt:     now,
		LastLoginAt:  now,
	}

	created, err := s.repo.Insert(ctx, account)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return nil, err
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	return created, nil
}

// Authenticate verifies the credential pair and returns the stored account.
// Unknown username and wrong password are deliberately indistinguishable:
// both return domain.ErrInvalidCredentials so callers cannot enumerate
// usernames.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return account, nil
}

// IssueToken delegates to the token issuer; pure function of identity, no
// store access.
func (s *AccountService) IssueToken(username string) (string, error) {
	return s.tokens.Issue(username)
}

// TouchLogin advances last_login_at to now for an existing account. Callers
// composing it with register/login run it off the response path; its own
// contract still reports domain.ErrNotFound for unknown usernames.
func (s *AccountService) TouchLogin(ctx context.Context, username string) error {
	return s.repo.TouchLastLogin(ctx, username, time.Now().UTC())
}

// Get fetches an account by username.
func (s *AccountService) Get(ctx context.Context, username string) (*domain.Account, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return account, nil
}

// List returns the public profile of every account, eagerly materialized.
func (s *AccountService) List(ctx context.Context) ([]domain.Profile, error) {
	return s.repo.ListAll(ctx)
}

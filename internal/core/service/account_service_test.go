package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/messagely/messaging-api/internal/core/domain"
)

type stubAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) Insert(_ context.Context, account *domain.Account) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.Username]; exists {
		return nil, domain.ErrDuplicateIdentity
	}
	r.accounts[account.Username] = cloneAccount(account)
	return cloneAccount(account), nil
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) TouchLastLogin(_ context.Context, username string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[username]
	if !ok {
		return domain.ErrNotFound
	}
	a.LastLoginAt = at
	return nil
}

func (r *stubAccountRepo) ListAll(_ context.Context) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profiles := make([]domain.Profile, 0, len(r.accounts))
	for _, a := range r.accounts {
		profiles = append(profiles, domain.ProfileOf(a))
	}
	return profiles, nil
}

func newTestAccountService(repo *stubAccountRepo) *AccountService {
	return NewAccountService(repo, NewPasswordHasher(bcrypt.MinCost), NewTokenIssuer("secret", time.Hour))
}

func TestAccountService_Register_Success(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestAccountService(repo)

	account, err := svc.Register(context.Background(), "amy", "pw1", "Amy", "Lee", "555-0001")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if account.Username != "amy" {
		t.Fatalf("unexpected username: %s", account.Username)
	}
	if account.PasswordHash == "pw1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("pw1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if account.JoinedAt.IsZero() || !account.JoinedAt.Equal(account.LastLoginAt) {
		t.Fatalf("expected joined_at == last_login_at at creation, got %v / %v", account.JoinedAt, account.LastLoginAt)
	}
}

func TestAccountService_Register_Validation(t *testing.T) {
	svc := newTestAccountService(newStubAccountRepo())

	cases := [][5]string{
		{"", "pw", "A", "B", "555"},
		{"amy", "", "A", "B", "555"},
		{"amy", "pw", "", "B", "555"},
		{"amy", "pw", "A", "", "555"},
		{"amy", "pw", "A", "B", ""},
	}
	for _, c := range cases {
		if _, err := svc.Register(context.Background(), c[0], c[1], c[2], c[3], c[4]); err != domain.ErrInvalidInput {
			t.Fatalf("expected ErrInvalidInput for %v, got %v", c, err)
		}
	}
}

func TestAccountService_Register_Duplicate(t *testing.T) {
	svc := newTestAccountService(newStubAccountRepo())

	if _, err := svc.Register(context.Background(), "amy", "pw1", "Amy", "Lee", "555-0001"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "amy", "pw2", "Other", "Name", "555-9999"); err != domain.ErrDuplicateIdentity {
		t.Fatalf("expected ErrDuplicateIdentity, got %v", err)
	}
}

func TestAccountService_Register_ConcurrentSameUsername(t *testing.T) {
	svc := newTestAccountService(newStubAccountRepo())

	start := make(chan struct{})
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			_, err := svc.Register(context.Background(), "amy", "pw1", "Amy", "Lee", "555-0001")
			errs <- err
		}()
	}
	close(start)

	var succeeded, duplicated int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrDuplicateIdentity):
			duplicated++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 || duplicated != 1 {
		t.Fatalf("want exactly one success and one duplicate, got %d successes / %d duplicates", succeeded, duplicated)
	}
}

func TestAccountService_Authenticate_Success(t *testing.T) {
	svc := newTestAccountService(newStubAccountRepo())

	if _, err := svc.Register(context.Background(), "amy", "pw1", "Amy", "Lee", "555-0001"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	account, err := svc.Authenticate(context.Background(), "amy", "pw1")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if account.Username != "amy" {
		t.Fatalf("unexpected account: %+v", account)
	}
}

func TestAccountService_Authenticate_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	svc := newTestAccountService(newStubAccountRepo())

	_, _ = svc.Register(context.Background(), "amy", "pw1", "Amy", "Lee", "555-0001")

	_, wrongPw := svc.Authenticate(context.Background(), "amy", "wrong")
	_, unknown := svc.Authenticate(context.Background(), "ghost", "pw1")

	if wrongPw != domain.ErrInvalidCredentials {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPw)
	}
	if unknown != domain.ErrInvalidCredentials {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", unknown)
	}
	if wrongPw != unknown {
		t.Fatalf("the two failure modes must be indistinguishable")
	}
}

func TestAccountService_IssueToken(t *testing.T) {
	svc := newTestAccountService(newStubAccountRepo())

	signed, err := svc.IssueToken("amy")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["username"] != "amy" {
		t.Fatalf("expected username claim amy, got %v", claims["username"])
	}
	if _, ok := claims["password"]; ok {
		t.Fatalf("token must not carry password material")
	}
}

func TestAccountService_TouchLogin(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newTestAccountService(repo)

	if _, err := svc.Register(context.Background(), "amy", "pw1", "Amy", "Lee", "555-0001"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	before := repo.accounts["amy"].LastLoginAt

	time.Sleep(time.Millisecond)
	if err := svc.TouchLogin(context.Background(), "amy"); err != nil {
		t.Fatalf("touch login failed: %v", err)
	}
	if !repo.accounts["amy"].LastLoginAt.After(before) {
		t.Fatalf("expected last_login_at to advance past %v, got %v", before, repo.accounts["amy"].LastLoginAt)
	}

	if err := svc.TouchLogin(context.Background(), "ghost"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestAccountService_GetAndList(t *testing.T) {
	svc := newTestAccountService(newStubAccountRepo())

	_, _ = svc.Register(context.Background(), "amy", "pw1", "Amy", "Lee", "555-0001")
	_, _ = svc.Register(context.Background(), "bob", "pw2", "Bob", "Ray", "555-0002")

	account, err := svc.Get(context.Background(), "amy")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if account.FirstName != "Amy" || account.Phone != "555-0001" {
		t.Fatalf("unexpected account: %+v", account)
	}

	if _, err := svc.Get(context.Background(), "ghost"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	profiles, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
}

package ports

import (
	"context"

	"github.com/messagely/messaging-api/internal/core/domain"
)

type AccountService interface {
	Register(ctx context.Context, username, password, firstName, lastName, phone string) (*domain.Account, error)
	Authenticate(ctx context.Context, username, password string) (*domain.Account, error)
	IssueToken(username string) (string, error)
	TouchLogin(ctx context.Context, username string) error
	Get(ctx context.Context, username string) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Profile, error)
}

package ports

import (
	"context"
	"time"

	"github.com/messagely/messaging-api/internal/core/domain"
)

// AccountRepository defines the persistence operations for accounts. The
// store's atomic uniqueness constraint on username is the only duplicate
// detector: Insert must surface a constraint violation as
// domain.ErrDuplicateIdentity, never pre-check existence.
type AccountRepository interface {
	Insert(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	TouchLastLogin(ctx context.Context, username string, at time.Time) error
	ListAll(ctx context.Context) ([]domain.Profile, error)
}

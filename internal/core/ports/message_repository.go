package ports

import (
	"context"
	"time"

	"github.com/messagely/messaging-api/internal/core/domain"
)

// MessageRepository defines the persistence operations for directed messages.
// SentBy and ReceivedBy join the counterpart username against the account
// namespace at query time; a username with no messages yields an empty slice,
// not an error.
type MessageRepository interface {
	Insert(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByID(ctx context.Context, id int64) (*domain.Message, error)
	SentBy(ctx context.Context, username string) ([]domain.OutgoingMessage, error)
	ReceivedBy(ctx context.Context, username string) ([]domain.IncomingMessage, error)
	// MarkRead sets read_at on an unread message. Marking an already-read
	// message is a no-op; a missing id yields domain.ErrMessageNotFound.
	MarkRead(ctx context.Context, id int64, at time.Time) error
}

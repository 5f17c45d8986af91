package ports

import (
	"context"

	"github.com/messagely/messaging-api/internal/core/domain"
)

// SendMessageInput carries a send request into the message service. From is
// the authenticated sender; IdempotencyKey, when non-empty, makes the send
// safe to retry.
type SendMessageInput struct {
	From           string
	To             string
	Body           string
	IdempotencyKey string
}

// SendMessageResult carries the created (or replayed) message back to the
// caller.
type SendMessageResult struct {
	Message        *domain.Message
	AlreadyExisted bool
}

type MessageService interface {
	Send(ctx context.Context, in SendMessageInput) (*SendMessageResult, error)
	Get(ctx context.Context, id int64, requester string) (*domain.Message, error)
	SentBy(ctx context.Context, username string) ([]domain.OutgoingMessage, error)
	ReceivedBy(ctx context.Context, username string) ([]domain.IncomingMessage, error)
	MarkRead(ctx context.Context, id int64, reader string) (*domain.Message, error)
}

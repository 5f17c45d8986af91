package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/messagely/messaging-api/internal/core/domain"
	"github.com/messagely/messaging-api/internal/core/ports"
)

// SendIdempotencyStore abstracts the idempotency record for sends (Redis).
// Lookup returns the id of the message previously created under the key, or
// found=false when the key has not been seen.
type SendIdempotencyStore interface {
	Lookup(ctx context.Context, sender, key string) (id int64, found bool, err error)
	Record(ctx context.Context, sender, key string, id int64) error
}

type messageService struct {
	messages ports.MessageRepository
	accounts ports.AccountRepository
	idem     SendIdempotencyStore
	log      zerolog.Logger
}

// NewMessageService returns a MessageService implementation. idem may be nil,
// in which case idempotency keys are ignored.
func NewMessageService(
	messages ports.MessageRepository,
	accounts ports.AccountRepository,
	idem SendIdempotencyStore,
	log zerolog.Logger,
) ports.MessageService {
	return &messageService{
		messages: messages,
		accounts: accounts,
		idem:     idem,
		log:      log,
	}
}

// Send creates a directed message. Both endpoints must reference existing
// accounts; the sender is the authenticated caller, the recipient is checked
// against the account namespace. If an idempotency key is provided and
// already seen, the previously created message is returned without side
// effects.
func (s *messageService) Send(ctx context.Context, in ports.SendMessageInput) (*ports.SendMessageResult, error) {
	if in.From == "" || in.To == "" || in.Body == "" {
		return nil, domain.ErrInvalidInput
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		id, found, err := s.idem.Lookup(ctx, in.From, in.IdempotencyKey)
		if err != nil {
			s.log.Warn().Err(err).Str("from", in.From).Msg("idempotency lookup failed, sending anyway")
		} else if found {
			existing, err := s.messages.FindByID(ctx, id)
			if err == nil {
				s.log.Info().Int64("message_id", id).Str("from", in.From).Msg("idempotent replay")
				return &ports.SendMessageResult{Message: existing, AlreadyExisted: true}, nil
			}
			s.log.Warn().Err(err).Int64("message_id", id).Msg("idempotency record points at missing message")
		}
	}

	if _, err := s.accounts.FindByUsername(ctx, in.To); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("check recipient: %w", err)
	}

	message := &domain.Message{
		FromUsername: in.From,
		ToUsername:   in.To,
		Body:         in.Body,
		SentAt:       time.Now().UTC(),
	}

	created, err := s.messages.Insert(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	if in.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Record(ctx, in.From, in.IdempotencyKey, created.ID); err != nil {
			s.log.Warn().Err(err).Int64("message_id", created.ID).Msg("failed to record idempotency key")
		}
	}

	return &ports.SendMessageResult{Message: created}, nil
}

// Get fetches a single message. Only the sender or the recipient may view it.
func (s *messageService) Get(ctx context.Context, id int64, requester string) (*domain.Message, error) {
	message, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.FromUsername != requester && message.ToUsername != requester {
		return nil, domain.ErrForbidden
	}
	return message, nil
}

// SentBy returns every message sent by username, enriched with the current
// recipient profile. Unknown usernames yield an empty slice; existence
// validation belongs to the account service, not the directory.
func (s *messageService) SentBy(ctx context.Context, username string) ([]domain.OutgoingMessage, error) {
	return s.messages.SentBy(ctx, username)
}

// ReceivedBy returns every message received by username, enriched with the
// current sender profile.
func (s *messageService) ReceivedBy(ctx context.Context, username string) ([]domain.IncomingMessage, error) {
	return s.messages.ReceivedBy(ctx, username)
}

// MarkRead transitions a message from unread to read. Only the recipient may
// mark it; re-marking an already-read message leaves read_at untouched.
func (s *messageService) MarkRead(ctx context.Context, id int64, reader string) (*domain.Message, error) {
	message, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if message.ToUsername != reader {
		return nil, domain.ErrForbidden
	}
	if message.IsRead() {
		return message, nil
	}

	at := time.Now().UTC()
	if at.Before(message.SentAt) {
		at = message.SentAt
	}
	if err := s.messages.MarkRead(ctx, id, at); err != nil {
		return nil, fmt.Errorf("mark read: %w", err)
	}

	// The conditional update no-ops when another reader won between the
	// lookup and the write; re-fetch so the response always carries the
	// stored timestamp.
	updated, err := s.messages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

package domain

import "time"

// Message is a directed message between two accounts. Both usernames must
// reference existing accounts at creation time; self-messages are allowed.
// A message is immutable after creation except for the unread → read
// transition, which sets ReadAt exactly once.
type Message struct {
	ID           int64      `json:"id" bson:"_id"`
	FromUsername string     `json:"from_username" bson:"from_username"`
	ToUsername   string     `json:"to_username" bson:"to_username"`
	Body         string     `json:"body" bson:"body"`
	SentAt       time.Time  `json:"sent_at" bson:"sent_at"`
	ReadAt       *time.Time `json:"read_at" bson:"read_at,omitempty"`
}

// IsRead reports whether the message has left the unread state.
func (m *Message) IsRead() bool {
	return m.ReadAt != nil
}

// OutgoingMessage is a sent message enriched with the recipient's current
// profile, joined at query time.
type OutgoingMessage struct {
	ID     int64      `json:"id"`
	ToUser Profile    `json:"to_user"`
	Body   string     `json:"body"`
	SentAt time.Time  `json:"sent_at"`
	ReadAt *time.Time `json:"read_at"`
}

// IncomingMessage is a received message enriched with the sender's current
// profile, joined at query time.
type IncomingMessage struct {
	ID       int64      `json:"id"`
	FromUser Profile    `json:"from_user"`
	Body     string     `json:"body"`
	SentAt   time.Time  `json:"sent_at"`
	ReadAt   *time.Time `json:"read_at"`
}

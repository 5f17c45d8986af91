package domain

import (
	"errors"
	"time"
)

var ErrInvalidInput = errors.New("missing or malformed input")
var ErrDuplicateIdentity = errors.New("username already taken")
var ErrInvalidCredentials = errors.New("invalid username/password")
var ErrNotFound = errors.New("account not found")
var ErrMessageNotFound = errors.New("message not found")
var ErrForbidden = errors.New("access forbidden")
var ErrStoreUnavailable = errors.New("backing store unavailable")

// Account models a registered user. Username is the primary identity and is
// immutable once registered. PasswordHash never leaves the store boundary in
// any outward-facing shape.
type Account struct {
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	FirstName    string    `json:"first_name" bson:"first_name"`
	LastName     string    `json:"last_name" bson:"last_name"`
	Phone        string    `json:"phone" bson:"phone"`
	JoinedAt     time.Time `json:"joined_at" bson:"joined_at"`
	LastLoginAt  time.Time `json:"last_login_at" bson:"last_login_at"`
}

// Profile is the non-secret subset of an account used in listings and as the
// counterpart identity attached to messages.
type Profile struct {
	Username  string `json:"username" bson:"username"`
	FirstName string `json:"first_name" bson:"first_name"`
	LastName  string `json:"last_name" bson:"last_name"`
	Phone     string `json:"phone" bson:"phone"`
}

// ProfileOf projects an account onto its public profile.
func ProfileOf(a *Account) Profile {
	return Profile{
		Username:  a.Username,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Phone:     a.Phone,
	}
}

package domain

import "time"

// Notification is a durable log entry; it says nothing about delivery.
type Notification struct {
	ID          string
	RecipientID int64
	Message     string
	CreatedAt   time.Time
}

// Recipient is a notified user and the role they are notified in.
type Recipient struct {
	UserID int64
	Role   Role
}

// Valid reports whether the recipient refers to a real user.
func (r Recipient) Valid() bool {
	return r.UserID > 0
}

package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmailAlreadyExists    = errors.New("email already on waitlist")
	ErrWaitlistEntryNotFound = errors.New("waitlist entry not found")
)

// WaitlistEntry is a single email signup from the landing page.
type WaitlistEntry struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func NewWaitlistEntry(email, source string) *WaitlistEntry {
	if source == "" {
		source = LeadSourceLandingPage
	}

	return &WaitlistEntry{
		ID:        uuid.New().String(),
		Email:     email,
		Source:    source,
		Status:    "pending",
		CreatedAt: time.Now(),
	}
}

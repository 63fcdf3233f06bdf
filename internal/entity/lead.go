package entity

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrPhoneAlreadyExists = errors.New("phone number already registered")
)

// DefaultCountryCode is assumed when the number does not carry a parseable prefix.
const DefaultCountryCode = "+44"

const LeadSourceLandingPage = "landing_page"

// Up to three digits after the + count as the country code, then the rest.
// The prefix group is greedy, so +447404938935 splits as +447 / 404938935.
var phonePattern = regexp.MustCompile(`^(\+\d{1,3})(\d{4,})$`)

var nonDigits = regexp.MustCompile(`\D`)

// Lead is a phone number that engaged the instant WhatsApp demo flow.
type Lead struct {
	ID          string       `json:"id"`
	PhoneNumber string       `json:"phone_number"`
	CountryCode string       `json:"country_code"`
	RawNumber   string       `json:"raw_number"`
	Source      string       `json:"source"`
	Status      string       `json:"status"`
	MessageID   string       `json:"message_id,omitempty"`
	Metadata    LeadMetadata `json:"metadata"`
	CreatedAt   time.Time    `json:"created_at"`
}

// LeadMetadata holds the optional lifecycle fields of a lead. Every field is
// optional and updates are merge-patches: only fields set on the patch are
// written, earlier values survive later updates.
type LeadMetadata struct {
	TenantID    string     `json:"tenantId,omitempty"`
	SentAt      *time.Time `json:"sentAt,omitempty"`
	Role        string     `json:"role,omitempty"`
	RoleTitle   string     `json:"roleTitle,omitempty"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	OptedOut    *bool      `json:"optedOut,omitempty"`
	OptedOutAt  *time.Time `json:"optedOutAt,omitempty"`
	OptedInAt   *time.Time `json:"optedInAt,omitempty"`
	NotifiedAt  *time.Time `json:"notifiedAt,omitempty"`
	MessageID   string     `json:"messageId,omitempty"`
}

func (m LeadMetadata) IsOptedOut() bool {
	return m.OptedOut != nil && *m.OptedOut
}

func (m LeadMetadata) IsNotified() bool {
	return m.NotifiedAt != nil
}

// Factory
func NewLead(phoneNumber, source, tenantID string) *Lead {
	countryCode, rawNumber := SplitPhone(phoneNumber)
	if source == "" {
		source = LeadSourceLandingPage
	}

	now := time.Now()
	return &Lead{
		ID:          uuid.New().String(),
		PhoneNumber: phoneNumber,
		CountryCode: countryCode,
		RawNumber:   rawNumber,
		Source:      source,
		Status:      "sent",
		Metadata: LeadMetadata{
			TenantID: tenantID,
			SentAt:   &now,
		},
		CreatedAt: now,
	}
}

// SplitPhone extracts the country code prefix and the remaining digits.
// Numbers that do not match the expected shape fall back to the default
// country code with every non-digit stripped.
func SplitPhone(phoneNumber string) (countryCode, rawNumber string) {
	if m := phonePattern.FindStringSubmatch(phoneNumber); m != nil {
		return m[1], m[2]
	}
	return DefaultCountryCode, nonDigits.ReplaceAllString(phoneNumber, "")
}

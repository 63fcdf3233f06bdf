package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pointhed/waitlist-api/internal/entity"
)

type InstantDemoInput struct {
	PhoneNumber string `json:"phoneNumber"`
	TenantID    string `json:"tenantId,omitempty"`
}

type InstantDemoOutput struct {
	Success          bool       `json:"success"`
	Message          string     `json:"message,omitempty"`
	MessageID        string     `json:"messageId,omitempty"`
	AlreadyRequested bool       `json:"alreadyRequested"`
	FirstRequestedAt *time.Time `json:"firstRequestedAt,omitempty"`
	Position         *int       `json:"position,omitempty"`
}

// InstantDemoUseCase sends the live demo message to a new phone number and
// records it as a lead.
type InstantDemoUseCase struct {
	Leads   LeadRepository
	Gateway MessageGateway
}

func NewInstantDemoUseCase(leads LeadRepository, gateway MessageGateway) *InstantDemoUseCase {
	return &InstantDemoUseCase{Leads: leads, Gateway: gateway}
}

func (uc *InstantDemoUseCase) Execute(ctx context.Context, input InstantDemoInput) (*InstantDemoOutput, error) {
	if verr := validatePhoneNumber(input.PhoneNumber); verr != nil {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: verr.Message}
	}

	// Dedup before position and before any send: repeat numbers get the
	// original request timestamp and no second message.
	existing, err := uc.Leads.FindByPhone(ctx, input.PhoneNumber)
	if err == nil {
		log.Printf("📱 %s already requested the instant demo at %s", input.PhoneNumber, existing.CreatedAt)
		first := existing.CreatedAt
		return &InstantDemoOutput{
			Success:          true,
			Message:          "Demo already sent to this number",
			AlreadyRequested: true,
			FirstRequestedAt: &first,
		}, nil
	}
	if !errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to check existing lead: " + err.Error()}
	}

	// Pre-insert estimate, embedded in the message text. The real position is
	// recounted after the insert.
	count, err := uc.Leads.CountAll(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to count leads: " + err.Error()}
	}
	estimate := count + 1

	result := uc.Gateway.SendText(ctx, input.PhoneNumber, instantDemoMessage(estimate))
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "Failed to send message"
		}
		return nil, &DomainError{Code: result.Status, Message: msg}
	}

	// The message is out; persistence problems from here on are downgraded to
	// null fields in the response.
	lead := entity.NewLead(input.PhoneNumber, entity.LeadSourceLandingPage, input.TenantID)
	lead.MessageID = result.MessageID

	var position *int
	if err := uc.Leads.Create(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrPhoneAlreadyExists) {
			// A concurrent request won the insert; report the dedup outcome.
			out := &InstantDemoOutput{
				Success:          true,
				Message:          "Demo already sent to this number",
				MessageID:        result.MessageID,
				AlreadyRequested: true,
			}
			if winner, ferr := uc.Leads.FindByPhone(ctx, input.PhoneNumber); ferr == nil {
				first := winner.CreatedAt
				out.FirstRequestedAt = &first
			}
			return out, nil
		}
		log.Printf("⚠️ failed to save WhatsApp lead: %v", err)
	} else if p, perr := uc.Leads.CountCreatedUpTo(ctx, lead.CreatedAt); perr != nil {
		log.Printf("⚠️ failed to count position: %v", perr)
	} else {
		position = &p
		log.Printf("📊 WhatsApp waitlist position: %d", p)
	}

	return &InstantDemoOutput{
		Success:   true,
		MessageID: result.MessageID,
		Position:  position,
	}, nil
}

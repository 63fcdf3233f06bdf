package usecase

import (
	"context"
	"log"
	"time"

	"github.com/pointhed/waitlist-api/internal/entity"
)

type NotifySubscribersInput struct {
	Message string `json:"message,omitempty"`
	DryRun  bool   `json:"dryRun,omitempty"`
}

type NotifySubscribersResult struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

// NotifySubscribersUseCase broadcasts the launch message to every lead that
// asked to be notified and has not been messaged yet. Strictly sequential
// with a pause between sends to respect provider rate limits.
type NotifySubscribersUseCase struct {
	Leads   LeadRepository
	Gateway MessageGateway
	Delay   time.Duration
}

func NewNotifySubscribersUseCase(leads LeadRepository, gateway MessageGateway) *NotifySubscribersUseCase {
	return &NotifySubscribersUseCase{
		Leads:   leads,
		Gateway: gateway,
		Delay:   200 * time.Millisecond,
	}
}

func (uc *NotifySubscribersUseCase) Execute(ctx context.Context, input NotifySubscribersInput) (*NotifySubscribersResult, error) {
	message := input.Message
	if message == "" {
		message = defaultNotifyMessage
	}

	log.Println("📢 Starting notification job...")
	if input.DryRun {
		log.Println("🔍 DRY RUN MODE - no messages will be sent")
	}

	subscribers, err := uc.Leads.FindNotifySubscribers(ctx)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load subscribers: " + err.Error()}
	}

	eligible := make([]*entity.Lead, 0, len(subscribers))
	for _, lead := range subscribers {
		if lead.Metadata.IsNotified() || lead.Metadata.IsOptedOut() {
			continue
		}
		eligible = append(eligible, lead)
	}

	log.Printf("📊 Found %d subscribers to notify", len(eligible))

	result := &NotifySubscribersResult{Total: len(eligible)}
	for i, lead := range eligible {
		if input.DryRun {
			log.Printf("📋 [DRY RUN] Would send to %s", lead.PhoneNumber)
			result.Sent++
			continue
		}

		res := uc.Gateway.SendText(ctx, lead.PhoneNumber, message)
		if res.Success {
			now := time.Now()
			patch := entity.LeadMetadata{
				NotifiedAt: &now,
				MessageID:  res.MessageID,
			}
			if err := uc.Leads.MergeMetadata(ctx, lead.ID, patch); err != nil {
				log.Printf("⚠️ notified %s but failed to record it: %v", lead.PhoneNumber, err)
			}
			result.Sent++
		} else {
			log.Printf("❌ failed to send to %s: %s", lead.PhoneNumber, res.Error)
			result.Failed++
		}

		if uc.Delay > 0 && i < len(eligible)-1 {
			time.Sleep(uc.Delay)
		}
	}

	result.Skipped = result.Total - result.Sent - result.Failed

	log.Printf("📊 Notification job complete: %d sent, %d failed", result.Sent, result.Failed)
	return result, nil
}

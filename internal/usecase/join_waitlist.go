package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pointhed/waitlist-api/internal/entity"
	"github.com/pointhed/waitlist-api/internal/infra/queue"
)

type JoinWaitlistInput struct {
	Email  string `json:"email"`
	Source string `json:"source,omitempty"`
}

type JoinWaitlistOutput struct {
	Success       bool       `json:"success"`
	Message       string     `json:"message,omitempty"`
	AlreadyExists bool       `json:"alreadyExists,omitempty"`
	ID            string     `json:"id,omitempty"`
	Position      int        `json:"position,omitempty"`
	FirstJoinedAt *time.Time `json:"firstJoinedAt,omitempty"`
}

// JoinWaitlistUseCase validates and stores email signups. The confirmation
// email is detached from the critical path: published to the queue when one
// is wired, otherwise sent from a fire-and-forget goroutine.
type JoinWaitlistUseCase struct {
	Repo     WaitlistRepository
	Producer QueueProducerInterface
	Mail     EmailService
}

func NewJoinWaitlistUseCase(repo WaitlistRepository, producer QueueProducerInterface, mailService EmailService) *JoinWaitlistUseCase {
	return &JoinWaitlistUseCase{Repo: repo, Producer: producer, Mail: mailService}
}

func (uc *JoinWaitlistUseCase) Execute(ctx context.Context, input JoinWaitlistInput) (*JoinWaitlistOutput, error) {
	if verr := validateEmail(input.Email); verr != nil {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: verr.Message}
	}

	entry := entity.NewWaitlistEntry(input.Email, input.Source)
	if err := uc.Repo.Create(ctx, entry); err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			out := &JoinWaitlistOutput{
				Success:       true,
				Message:       "You are already on the waitlist",
				AlreadyExists: true,
			}
			// Best-effort: report when the original signup happened.
			if existing, ferr := uc.Repo.FindByEmail(ctx, input.Email); ferr == nil {
				out.ID = existing.ID
				first := existing.CreatedAt
				out.FirstJoinedAt = &first
			}
			return out, nil
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "Failed to join waitlist. Please try again."}
	}

	position, err := uc.Repo.CountCreatedUpTo(ctx, entry.CreatedAt)
	if err != nil {
		log.Printf("⚠️ failed to count waitlist position: %v", err)
		position = 0
	} else {
		log.Printf("📊 Waitlist position for %s: %d", entry.Email, position)
	}

	uc.queueConfirmation(ctx, entry.Email, position)

	return &JoinWaitlistOutput{
		Success:  true,
		Message:  "Successfully joined the waitlist",
		ID:       entry.ID,
		Position: position,
	}, nil
}

// queueConfirmation never fails the signup: publish errors fall through to
// the direct path, and the direct path only logs.
func (uc *JoinWaitlistUseCase) queueConfirmation(ctx context.Context, email string, position int) {
	if uc.Producer != nil {
		payload := queue.ConfirmationPayload{Email: email, Position: position}
		if err := uc.Producer.PublishConfirmation(ctx, payload); err == nil {
			return
		} else {
			log.Printf("⚠️ failed to queue confirmation email for %s: %v", email, err)
		}
	}

	if uc.Mail == nil {
		return
	}

	go func() {
		if err := uc.Mail.SendWaitlistConfirmation(email, position); err != nil {
			log.Printf("⚠️ failed to send confirmation email to %s: %v", email, err)
		}
	}()
}

package usecase

import (
	"context"
	"time"

	"github.com/pointhed/waitlist-api/internal/entity"
	"github.com/pointhed/waitlist-api/internal/infra/integration/whatsapp"
	"github.com/pointhed/waitlist-api/internal/infra/queue"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	FindByPhone(ctx context.Context, phoneNumber string) (*entity.Lead, error)
	CountAll(ctx context.Context) (int, error)
	CountCreatedUpTo(ctx context.Context, t time.Time) (int, error)
	MergeMetadata(ctx context.Context, id string, patch entity.LeadMetadata) error
	FindNotifySubscribers(ctx context.Context) ([]*entity.Lead, error)
	DeleteByPhone(ctx context.Context, phoneNumber string) (int64, error)
}

type WaitlistRepository interface {
	Create(ctx context.Context, entry *entity.WaitlistEntry) error
	FindByEmail(ctx context.Context, email string) (*entity.WaitlistEntry, error)
	CountCreatedUpTo(ctx context.Context, t time.Time) (int, error)
}

// MessageGateway is the outbound WhatsApp surface. Results carry the outcome;
// callers decide whether a failure is fatal or just counted.
type MessageGateway interface {
	SendText(ctx context.Context, phoneNumber, message string) whatsapp.SendResult
	SendInteractiveButtons(ctx context.Context, input whatsapp.InteractiveButtonsInput) whatsapp.SendResult
	SendInteractiveList(ctx context.Context, input whatsapp.InteractiveListInput) whatsapp.SendResult
	SendTemplate(ctx context.Context, input whatsapp.TemplateInput) whatsapp.SendResult
	SendProduct(ctx context.Context, input whatsapp.ProductInput) whatsapp.SendResult
}

type QueueProducerInterface interface {
	PublishConfirmation(ctx context.Context, payload queue.ConfirmationPayload) error
}

type EmailService interface {
	SendWaitlistConfirmation(to string, position int) error
}

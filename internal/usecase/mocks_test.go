package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pointhed/waitlist-api/internal/entity"
	"github.com/pointhed/waitlist-api/internal/infra/integration/whatsapp"
	"github.com/pointhed/waitlist-api/internal/infra/queue"
)

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByPhone(ctx context.Context, phoneNumber string) (*entity.Lead, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) CountAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) CountCreatedUpTo(ctx context.Context, t time.Time) (int, error) {
	args := m.Called(ctx, t)
	return args.Int(0), args.Error(1)
}

func (m *MockLeadRepository) MergeMetadata(ctx context.Context, id string, patch entity.LeadMetadata) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockLeadRepository) FindNotifySubscribers(ctx context.Context) ([]*entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) DeleteByPhone(ctx context.Context, phoneNumber string) (int64, error) {
	args := m.Called(ctx, phoneNumber)
	return args.Get(0).(int64), args.Error(1)
}

// MockMessageGateway
type MockMessageGateway struct {
	mock.Mock
}

func (m *MockMessageGateway) SendText(ctx context.Context, phoneNumber, message string) whatsapp.SendResult {
	args := m.Called(ctx, phoneNumber, message)
	return args.Get(0).(whatsapp.SendResult)
}

func (m *MockMessageGateway) SendInteractiveButtons(ctx context.Context, input whatsapp.InteractiveButtonsInput) whatsapp.SendResult {
	args := m.Called(ctx, input)
	return args.Get(0).(whatsapp.SendResult)
}

func (m *MockMessageGateway) SendInteractiveList(ctx context.Context, input whatsapp.InteractiveListInput) whatsapp.SendResult {
	args := m.Called(ctx, input)
	return args.Get(0).(whatsapp.SendResult)
}

func (m *MockMessageGateway) SendTemplate(ctx context.Context, input whatsapp.TemplateInput) whatsapp.SendResult {
	args := m.Called(ctx, input)
	return args.Get(0).(whatsapp.SendResult)
}

func (m *MockMessageGateway) SendProduct(ctx context.Context, input whatsapp.ProductInput) whatsapp.SendResult {
	args := m.Called(ctx, input)
	return args.Get(0).(whatsapp.SendResult)
}

// MockWaitlistRepository
type MockWaitlistRepository struct {
	mock.Mock
}

func (m *MockWaitlistRepository) Create(ctx context.Context, entry *entity.WaitlistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWaitlistRepository) FindByEmail(ctx context.Context, email string) (*entity.WaitlistEntry, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepository) CountCreatedUpTo(ctx context.Context, t time.Time) (int, error) {
	args := m.Called(ctx, t)
	return args.Int(0), args.Error(1)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishConfirmation(ctx context.Context, payload queue.ConfirmationPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendWaitlistConfirmation(to string, position int) error {
	args := m.Called(to, position)
	return args.Error(0)
}

func sentResult(messageID string) whatsapp.SendResult {
	return whatsapp.SendResult{Success: true, MessageID: messageID, Status: whatsapp.StatusSent}
}

func failedResult(errMsg string) whatsapp.SendResult {
	return whatsapp.SendResult{Success: false, Status: whatsapp.StatusFailed, Error: errMsg}
}

package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pointhed/waitlist-api/internal/entity"
)

// TestInstantDemoFirstRequestSuccess - happy path: message sent, lead stored,
// position counted
func TestInstantDemoFirstRequestSuccess(t *testing.T) {
	ctx := context.Background()
	phone := "+447404938935"

	mockLeads := new(MockLeadRepository)
	mockGateway := new(MockMessageGateway)

	mockLeads.On("FindByPhone", ctx, phone).Return(nil, entity.ErrLeadNotFound)
	mockLeads.On("CountAll", ctx).Return(41, nil)
	mockGateway.On("SendText", ctx, phone, mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "number 42 on the waitlist")
	})).Return(sentResult("wamid.abc"))
	mockLeads.On("Create", ctx, mock.MatchedBy(func(lead *entity.Lead) bool {
		return lead.PhoneNumber == phone && lead.MessageID == "wamid.abc" && lead.Status == "sent"
	})).Return(nil)
	mockLeads.On("CountCreatedUpTo", ctx, mock.Anything).Return(42, nil)

	uc := NewInstantDemoUseCase(mockLeads, mockGateway)
	output, err := uc.Execute(ctx, InstantDemoInput{PhoneNumber: phone})

	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.False(t, output.AlreadyRequested)
	assert.Equal(t, "wamid.abc", output.MessageID)
	assert.NotNil(t, output.Position)
	assert.Equal(t, 42, *output.Position)

	mockLeads.AssertExpectations(t)
	mockGateway.AssertExpectations(t)
}

// TestInstantDemoDuplicateReturnsFirstRequest - repeat numbers get the dedup
// response and no second message
func TestInstantDemoDuplicateReturnsFirstRequest(t *testing.T) {
	ctx := context.Background()
	phone := "+447404938935"

	mockLeads := new(MockLeadRepository)
	mockGateway := new(MockMessageGateway)

	existing := entity.NewLead(phone, entity.LeadSourceLandingPage, "")
	existing.CreatedAt = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	mockLeads.On("FindByPhone", ctx, phone).Return(existing, nil)

	uc := NewInstantDemoUseCase(mockLeads, mockGateway)
	output, err := uc.Execute(ctx, InstantDemoInput{PhoneNumber: phone})

	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.True(t, output.AlreadyRequested)
	assert.NotNil(t, output.FirstRequestedAt)
	assert.Equal(t, existing.CreatedAt, *output.FirstRequestedAt)

	mockGateway.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything)
	mockLeads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestInstantDemoValidationFailure - missing phone number is a domain error
// and never reaches storage
func TestInstantDemoValidationFailure(t *testing.T) {
	ctx := context.Background()

	mockLeads := new(MockLeadRepository)
	mockGateway := new(MockMessageGateway)

	uc := NewInstantDemoUseCase(mockLeads, mockGateway)
	output, err := uc.Execute(ctx, InstantDemoInput{PhoneNumber: ""})

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, IsDomainError(err))
	mockLeads.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
}

// TestInstantDemoSendFailureNoLeadStored - when the gateway rejects the send,
// no lead is written and the failure status surfaces as the error code
func TestInstantDemoSendFailureNoLeadStored(t *testing.T) {
	ctx := context.Background()
	phone := "+447404938935"

	mockLeads := new(MockLeadRepository)
	mockGateway := new(MockMessageGateway)

	mockLeads.On("FindByPhone", ctx, phone).Return(nil, entity.ErrLeadNotFound)
	mockLeads.On("CountAll", ctx).Return(10, nil)
	mockGateway.On("SendText", ctx, phone, mock.Anything).Return(failedResult("Recipient not on WhatsApp"))

	uc := NewInstantDemoUseCase(mockLeads, mockGateway)
	output, err := uc.Execute(ctx, InstantDemoInput{PhoneNumber: phone})

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, IsDomainError(err))

	var derr *DomainError
	assert.True(t, errors.As(err, &derr))
	assert.Equal(t, "failed", derr.Code)
	assert.Equal(t, "Recipient not on WhatsApp", derr.Message)

	mockLeads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestInstantDemoInsertFailureDowngraded - the message is already out, so a
// broken insert still returns success with no position
func TestInstantDemoInsertFailureDowngraded(t *testing.T) {
	ctx := context.Background()
	phone := "+447404938935"

	mockLeads := new(MockLeadRepository)
	mockGateway := new(MockMessageGateway)

	mockLeads.On("FindByPhone", ctx, phone).Return(nil, entity.ErrLeadNotFound)
	mockLeads.On("CountAll", ctx).Return(10, nil)
	mockGateway.On("SendText", ctx, phone, mock.Anything).Return(sentResult("wamid.xyz"))
	mockLeads.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

	uc := NewInstantDemoUseCase(mockLeads, mockGateway)
	output, err := uc.Execute(ctx, InstantDemoInput{PhoneNumber: phone})

	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, "wamid.xyz", output.MessageID)
	assert.Nil(t, output.Position)
}

// TestInstantDemoConcurrentInsertLoses - a unique violation on insert means a
// concurrent request won; report the dedup outcome
func TestInstantDemoConcurrentInsertLoses(t *testing.T) {
	ctx := context.Background()
	phone := "+447404938935"

	mockLeads := new(MockLeadRepository)
	mockGateway := new(MockMessageGateway)

	winner := entity.NewLead(phone, entity.LeadSourceLandingPage, "")

	mockLeads.On("FindByPhone", ctx, phone).Return(nil, entity.ErrLeadNotFound).Once()
	mockLeads.On("CountAll", ctx).Return(10, nil)
	mockGateway.On("SendText", ctx, phone, mock.Anything).Return(sentResult("wamid.dup"))
	mockLeads.On("Create", ctx, mock.Anything).Return(entity.ErrPhoneAlreadyExists)
	mockLeads.On("FindByPhone", ctx, phone).Return(winner, nil).Once()

	uc := NewInstantDemoUseCase(mockLeads, mockGateway)
	output, err := uc.Execute(ctx, InstantDemoInput{PhoneNumber: phone})

	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.True(t, output.AlreadyRequested)
	assert.NotNil(t, output.FirstRequestedAt)
	assert.Equal(t, winner.CreatedAt, *output.FirstRequestedAt)
}

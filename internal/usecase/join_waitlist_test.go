package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pointhed/waitlist-api/internal/entity"
	"github.com/pointhed/waitlist-api/internal/infra/queue"
)

// TestJoinWaitlistSuccess - valid email is stored, positioned and confirmed
// via the queue
func TestJoinWaitlistSuccess(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWaitlistRepository)
	mockProducer := new(MockQueueProducer)
	mockMail := new(MockEmailService)

	mockRepo.On("Create", ctx, mock.MatchedBy(func(entry *entity.WaitlistEntry) bool {
		return entry.Email == "ada@example.com" && entry.Status == "pending"
	})).Return(nil)
	mockRepo.On("CountCreatedUpTo", ctx, mock.Anything).Return(7, nil)
	mockProducer.On("PublishConfirmation", ctx, queue.ConfirmationPayload{
		Email:    "ada@example.com",
		Position: 7,
	}).Return(nil)

	uc := NewJoinWaitlistUseCase(mockRepo, mockProducer, mockMail)
	output, err := uc.Execute(ctx, JoinWaitlistInput{Email: "ada@example.com", Source: "landing_page"})

	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, "Successfully joined the waitlist", output.Message)
	assert.Equal(t, 7, output.Position)
	assert.NotEmpty(t, output.ID)

	mockRepo.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
	mockMail.AssertNotCalled(t, "SendWaitlistConfirmation", mock.Anything, mock.Anything)
}

// TestJoinWaitlistInvalidEmail - validation rejects before storage is touched
func TestJoinWaitlistInvalidEmail(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWaitlistRepository)

	uc := NewJoinWaitlistUseCase(mockRepo, nil, nil)

	for _, email := range []string{"", "not-an-email", "missing@domain", "@nouser.com"} {
		output, err := uc.Execute(ctx, JoinWaitlistInput{Email: email})

		assert.Error(t, err, "email %q should be rejected", email)
		assert.Nil(t, output)
		assert.True(t, IsDomainError(err))
	}

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestJoinWaitlistDuplicateIsIdempotent - a unique violation maps to a calm
// already-on-the-list success carrying the original signup timestamp
func TestJoinWaitlistDuplicateIsIdempotent(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWaitlistRepository)
	mockProducer := new(MockQueueProducer)

	existing := entity.NewWaitlistEntry("ada@example.com", "")
	existing.CreatedAt = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	mockRepo.On("Create", ctx, mock.Anything).Return(entity.ErrEmailAlreadyExists)
	mockRepo.On("FindByEmail", ctx, "ada@example.com").Return(existing, nil)

	uc := NewJoinWaitlistUseCase(mockRepo, mockProducer, nil)
	output, err := uc.Execute(ctx, JoinWaitlistInput{Email: "ada@example.com"})

	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.True(t, output.AlreadyExists)
	assert.Equal(t, "You are already on the waitlist", output.Message)
	assert.Equal(t, existing.ID, output.ID)
	assert.NotNil(t, output.FirstJoinedAt)
	assert.Equal(t, existing.CreatedAt, *output.FirstJoinedAt)

	mockProducer.AssertNotCalled(t, "PublishConfirmation", mock.Anything, mock.Anything)
}

// TestJoinWaitlistDuplicateLookupFailureStillSucceeds - losing the original
// timestamp must not turn an idempotent duplicate into an error
func TestJoinWaitlistDuplicateLookupFailureStillSucceeds(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWaitlistRepository)

	mockRepo.On("Create", ctx, mock.Anything).Return(entity.ErrEmailAlreadyExists)
	mockRepo.On("FindByEmail", ctx, "ada@example.com").Return(nil, errors.New("timeout"))

	uc := NewJoinWaitlistUseCase(mockRepo, nil, nil)
	output, err := uc.Execute(ctx, JoinWaitlistInput{Email: "ada@example.com"})

	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.True(t, output.AlreadyExists)
	assert.Nil(t, output.FirstJoinedAt)
	assert.Empty(t, output.ID)
}

// TestJoinWaitlistStorageFailure - unexpected database errors surface as
// technical errors with the public message
func TestJoinWaitlistStorageFailure(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWaitlistRepository)
	mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("connection refused"))

	uc := NewJoinWaitlistUseCase(mockRepo, nil, nil)
	output, err := uc.Execute(ctx, JoinWaitlistInput{Email: "ada@example.com"})

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, IsTechnicalError(err))
	assert.Equal(t, "Failed to join waitlist. Please try again.", err.Error())
}

// TestJoinWaitlistFallsBackToDirectEmail - a broken queue must not lose the
// confirmation: the direct sender takes over
func TestJoinWaitlistFallsBackToDirectEmail(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWaitlistRepository)
	mockProducer := new(MockQueueProducer)
	mockMail := new(MockEmailService)

	mockRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockRepo.On("CountCreatedUpTo", ctx, mock.Anything).Return(3, nil)
	mockProducer.On("PublishConfirmation", ctx, mock.Anything).Return(errors.New("channel closed"))

	done := make(chan struct{})
	mockMail.On("SendWaitlistConfirmation", "ada@example.com", 3).Run(func(mock.Arguments) {
		close(done)
	}).Return(nil)

	uc := NewJoinWaitlistUseCase(mockRepo, mockProducer, mockMail)
	output, err := uc.Execute(ctx, JoinWaitlistInput{Email: "ada@example.com"})

	assert.NoError(t, err)
	assert.True(t, output.Success)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("direct confirmation email was never attempted")
	}
	mockMail.AssertExpectations(t)
}

// TestJoinWaitlistPositionCountFailureDowngraded - a broken count still joins
// the waitlist, just without a position
func TestJoinWaitlistPositionCountFailureDowngraded(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(MockWaitlistRepository)
	mockProducer := new(MockQueueProducer)

	mockRepo.On("Create", ctx, mock.Anything).Return(nil)
	mockRepo.On("CountCreatedUpTo", ctx, mock.Anything).Return(0, errors.New("timeout"))
	mockProducer.On("PublishConfirmation", ctx, mock.Anything).Return(nil)

	uc := NewJoinWaitlistUseCase(mockRepo, mockProducer, nil)
	output, err := uc.Execute(ctx, JoinWaitlistInput{Email: "ada@example.com"})

	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, 0, output.Position)
}

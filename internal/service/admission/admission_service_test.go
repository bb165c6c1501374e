package admission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	args := m.Called(ctx, booking)
	if args.Get(0) == nil {
		if args.Error(1) != nil {
			return nil, args.Error(1)
		}
		// Echo the booking the service built, the way the store would.
		booking.Status = domain.BookingStatusConfirmed
		return booking, nil
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) MarkNoShowBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, deadline)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) ListActive(ctx context.Context, userID uuid.UUID, branchID int64) ([]domain.Subscription, error) {
	args := m.Called(ctx, userID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Branch), args.Error(1)
}

func (m *MockBranchRepository) ListSchedule(ctx context.Context, branchID int64) ([]domain.ScheduleSlot, error) {
	args := m.Called(ctx, branchID)
	return args.Get(0).([]domain.ScheduleSlot), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64) ([]domain.Subscription, error) {
	args := m.Called(ctx, userID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Subscription), args.Error(1)
}

func (m *MockCache) SetSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64, subs []domain.Subscription) error {
	args := m.Called(ctx, userID, branchID, subs)
	return args.Error(0)
}

func (m *MockCache) InvalidateSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64) error {
	args := m.Called(ctx, userID, branchID)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var fixedNow = time.Date(2024, 10, 1, 12, 0, 0, 0, time.Local)

func newTestService(bookings *MockBookingRepository, subs *MockSubscriptionRepository, branchRepo *MockBranchRepository, cache Cache, producer Producer) *AdmissionService {
	return NewAdmissionService(
		bookings,
		subs,
		branchRepo,
		cache,
		producer,
		"visits_topic",
		zerolog.Nop(),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func activeBranch(id int64) *domain.Branch {
	return &domain.Branch{ID: id, Name: "Downtown", Status: domain.BranchStatusActive, VisitCreditCost: 3}
}

func activeSubscription(branchID int64, remaining int, endDate time.Time) domain.Subscription {
	return domain.Subscription{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		BranchID:        branchID,
		PlanName:        "Monthly 8",
		RemainingVisits: remaining,
		Status:          domain.SubscriptionStatusActive,
		EndDate:         endDate,
	}
}

func TestAdmissionService_SubmitVisit_DefaultsToSubscription(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockSubs := &MockSubscriptionRepository{}
	mockBranches := &MockBranchRepository{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockSubs, mockBranches, nil, mockProducer)

	ctx := context.Background()
	userID := uuid.New()
	sub := activeSubscription(7, 5, fixedNow.AddDate(0, 1, 0))

	mockBranches.On("GetByID", ctx, int64(7)).Return(activeBranch(7), nil).Once()
	mockSubs.On("ListActive", ctx, userID, int64(7)).Return([]domain.Subscription{sub}, nil).Once()
	mockBookings.On("CreateConfirmed", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil, nil).Once()
	mockProducer.On("Publish", ctx, "visits_topic", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := service.SubmitVisit(ctx, SubmitVisitInput{
		UserID:         userID,
		BranchID:       7,
		Date:           "2024-10-28",
		TimeLabel:      "5:00 PM",
		IdempotencyKey: "key-1",
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result.Warnings)
	booking := result.Booking
	assert.Equal(t, domain.PaymentModeSubscription, booking.PaymentMode)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	if assert.NotNil(t, booking.SubscriptionID) {
		assert.Equal(t, sub.ID, *booking.SubscriptionID)
	}
	assert.Nil(t, booking.CreditsCost)
	assert.Equal(t, 17, booking.ScheduledAt.Hour())
	assert.Equal(t, 28, booking.ScheduledAt.Day())

	mockBranches.AssertExpectations(t)
	mockSubs.AssertExpectations(t)
	mockBookings.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestAdmissionService_SubmitVisit_SoonestExpiryConsumedFirst(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockSubs := &MockSubscriptionRepository{}
	mockBranches := &MockBranchRepository{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockSubs, mockBranches, nil, mockProducer)

	ctx := context.Background()
	userID := uuid.New()
	later := activeSubscription(7, 3, fixedNow.AddDate(0, 2, 0))
	sooner := activeSubscription(7, 3, fixedNow.AddDate(0, 0, 10))

	mockBranches.On("GetByID", ctx, int64(7)).Return(activeBranch(7), nil).Once()
	// Deliberately returned out of order to exercise the engine-side sort.
	mockSubs.On("ListActive", ctx, userID, int64(7)).Return([]domain.Subscription{later, sooner}, nil).Once()
	mockBookings.On("CreateConfirmed", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil, nil).Once()
	mockProducer.On("Publish", ctx, "visits_topic", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := service.SubmitVisit(ctx, SubmitVisitInput{
		UserID:         userID,
		BranchID:       7,
		Date:           "2024-10-28",
		TimeLabel:      "17:00",
		IdempotencyKey: "key-2",
	})

	assert.NoError(t, err)
	if assert.NotNil(t, result.Booking.SubscriptionID) {
		assert.Equal(t, sooner.ID, *result.Booking.SubscriptionID)
	}
}

func TestAdmissionService_SubmitVisit_FallsBackToCreditWhenDrained(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockSubs := &MockSubscriptionRepository{}
	mockBranches := &MockBranchRepository{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockSubs, mockBranches, nil, mockProducer)

	ctx := context.Background()
	userID := uuid.New()
	drained := activeSubscription(7, 0, fixedNow.AddDate(0, 1, 0))

	mockBranches.On("GetByID", ctx, int64(7)).Return(activeBranch(7), nil).Once()
	mockSubs.On("ListActive", ctx, userID, int64(7)).Return([]domain.Subscription{drained}, nil).Once()
	mockBookings.On("CreateConfirmed", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil, nil).Once()
	mockProducer.On("Publish", ctx, "visits_topic", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := service.SubmitVisit(ctx, SubmitVisitInput{
		UserID:         userID,
		BranchID:       7,
		Date:           "2024-10-28",
		TimeLabel:      "17:00",
		IdempotencyKey: "key-3",
	})

	assert.NoError(t, err)
	booking := result.Booking
	assert.Equal(t, domain.PaymentModeSingleCredit, booking.PaymentMode)
	assert.Nil(t, booking.SubscriptionID)
	if assert.NotNil(t, booking.CreditsCost) {
		assert.Equal(t, int64(3), *booking.CreditsCost)
	}
}

func TestAdmissionService_SubmitVisit_ExplicitSubscriptionWithoutQualifying(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockSubs := &MockSubscriptionRepository{}
	mockBranches := &MockBranchRepository{}

	service := newTestService(mockBookings, mockSubs, mockBranches, nil, nil)

	ctx := context.Background()
	userID := uuid.New()

	mockBranches.On("GetByID", ctx, int64(7)).Return(activeBranch(7), nil).Once()
	mockSubs.On("ListActive", ctx, userID, int64(7)).Return([]domain.Subscription{}, nil).Once()

	result, err := service.SubmitVisit(ctx, SubmitVisitInput{
		UserID:         userID,
		BranchID:       7,
		Date:           "2024-10-28",
		TimeLabel:      "17:00",
		RequestedMode:  domain.PaymentModeSubscription,
		IdempotencyKey: "key-4",
	})

	assert.ErrorIs(t, err, domain.ErrNoEligibleSubscription)
	assert.Nil(t, result)
	mockBookings.AssertNotCalled(t, "CreateConfirmed")
}

func TestAdmissionService_SubmitVisit_ExplicitCreditKeepsSubscription(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockSubs := &MockSubscriptionRepository{}
	mockBranches := &MockBranchRepository{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockSubs, mockBranches, nil, mockProducer)

	ctx := context.Background()
	userID := uuid.New()
	sub := activeSubscription(7, 5, fixedNow.AddDate(0, 1, 0))

	mockBranches.On("GetByID", ctx, int64(7)).Return(activeBranch(7), nil).Once()
	mockSubs.On("ListActive", ctx, userID, int64(7)).Return([]domain.Subscription{sub}, nil).Once()
	mockBookings.On("CreateConfirmed", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil, nil).Once()
	mockProducer.On("Publish", ctx, "visits_topic", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := service.SubmitVisit(ctx, SubmitVisitInput{
		UserID:         userID,
		BranchID:       7,
		Date:           "2024-10-28",
		TimeLabel:      "17:00",
		RequestedMode:  domain.PaymentModeSingleCredit,
		IdempotencyKey: "key-5",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentModeSingleCredit, result.Booking.PaymentMode)
	assert.Nil(t, result.Booking.SubscriptionID)
}

func TestAdmissionService_SubmitVisit_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name     string
		input    SubmitVisitInput
		expected error
	}{
		{
			name:     "missing idempotency key",
			input:    SubmitVisitInput{UserID: uuid.New(), BranchID: 7, Date: "2024-10-28", TimeLabel: "17:00"},
			expected: domain.ErrInvalidInput,
		},
		{
			name:     "unparseable time label",
			input:    SubmitVisitInput{UserID: uuid.New(), BranchID: 7, Date: "2024-10-28", TimeLabel: "late", IdempotencyKey: "k"},
			expected: domain.ErrInvalidTimeFormat,
		},
		{
			name:     "out of range date",
			input:    SubmitVisitInput{UserID: uuid.New(), BranchID: 7, Date: "2024-02-31", TimeLabel: "17:00", IdempotencyKey: "k"},
			expected: domain.ErrInvalidDate,
		},
		{
			name:     "scheduled in the past",
			input:    SubmitVisitInput{UserID: uuid.New(), BranchID: 7, Date: "2024-09-01", TimeLabel: "17:00", IdempotencyKey: "k"},
			expected: domain.ErrPastScheduledTime,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockBookings := &MockBookingRepository{}
			service := newTestService(mockBookings, &MockSubscriptionRepository{}, &MockBranchRepository{}, nil, nil)

			result, err := service.SubmitVisit(context.Background(), tc.input)

			assert.ErrorIs(t, err, tc.expected)
			assert.Nil(t, result)
			// Validation failures never reach the store.
			mockBookings.AssertNotCalled(t, "CreateConfirmed")
		})
	}
}

func TestAdmissionService_SubmitVisit_BranchSuspended(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockSubs := &MockSubscriptionRepository{}
	mockBranches := &MockBranchRepository{}

	service := newTestService(mockBookings, mockSubs, mockBranches, nil, nil)

	ctx := context.Background()
	userID := uuid.New()
	suspended := &domain.Branch{ID: 7, Status: domain.BranchStatusSuspended, VisitCreditCost: 3}

	mockBranches.On("GetByID", ctx, int64(7)).Return(suspended, nil).Once()

	result, err := service.SubmitVisit(ctx, SubmitVisitInput{
		UserID:         userID,
		BranchID:       7,
		Date:           "2024-10-28",
		TimeLabel:      "17:00",
		IdempotencyKey: "key-6",
	})

	assert.ErrorIs(t, err, domain.ErrBranchUnavailable)
	assert.Nil(t, result)
	mockSubs.AssertNotCalled(t, "ListActive")
	mockBookings.AssertNotCalled(t, "CreateConfirmed")
}

func TestAdmissionService_SubmitVisit_DegradedLookupWarns(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockSubs := &MockSubscriptionRepository{}
	mockBranches := &MockBranchRepository{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockSubs, mockBranches, nil, mockProducer)

	ctx := context.Background()
	userID := uuid.New()

	mockBranches.On("GetByID", ctx, int64(7)).Return(activeBranch(7), nil).Once()
	mockSubs.On("ListActive", ctx, userID, int64(7)).Return(nil, errors.New("store down")).Once()
	mockBookings.On("CreateConfirmed", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil, nil).Once()
	mockProducer.On("Publish", ctx, "visits_topic", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := service.SubmitVisit(ctx, SubmitVisitInput{
		UserID:         userID,
		BranchID:       7,
		Date:           "2024-10-28",
		TimeLabel:      "17:00",
		IdempotencyKey: "key-7",
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentModeSingleCredit, result.Booking.PaymentMode)
	// Degraded lookup books on credits but never silently.
	assert.Len(t, result.Warnings, 1)
}

func TestAdmissionService_SubmitVisit_DegradedLookupExplicitSubscription(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockSubs := &MockSubscriptionRepository{}
	mockBranches := &MockBranchRepository{}

	service := newTestService(mockBookings, mockSubs, mockBranches, nil, nil)

	ctx := context.Background()
	userID := uuid.New()

	mockBranches.On("GetByID", ctx, int64(7)).Return(activeBranch(7), nil).Once()
	mockSubs.On("ListActive", ctx, userID, int64(7)).Return(nil, errors.New("store down")).Once()

	result, err := service.SubmitVisit(ctx, SubmitVisitInput{
		UserID:         userID,
		BranchID:       7,
		Date:           "2024-10-28",
		TimeLabel:      "17:00",
		RequestedMode:  domain.PaymentModeSubscription,
		IdempotencyKey: "key-8",
	})

	assert.ErrorIs(t, err, domain.ErrSubscriptionLookupUnavailable)
	assert.NotErrorIs(t, err, domain.ErrNoEligibleSubscription)
	assert.Nil(t, result)
	mockBookings.AssertNotCalled(t, "CreateConfirmed")
}

func TestAdmissionService_SubmitVisit_InvalidatesCacheAfterSubscriptionDebit(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	mockSubs := &MockSubscriptionRepository{}
	mockBranches := &MockBranchRepository{}
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}

	service := newTestService(mockBookings, mockSubs, mockBranches, mockCache, mockProducer)

	ctx := context.Background()
	userID := uuid.New()
	sub := activeSubscription(7, 5, fixedNow.AddDate(0, 1, 0))

	mockBranches.On("GetByID", ctx, int64(7)).Return(activeBranch(7), nil).Once()
	mockCache.On("GetSubscriptions", ctx, userID, int64(7)).Return(nil, nil).Once()
	mockSubs.On("ListActive", ctx, userID, int64(7)).Return([]domain.Subscription{sub}, nil).Once()
	mockCache.On("SetSubscriptions", ctx, userID, int64(7), []domain.Subscription{sub}).Return(nil).Once()
	mockBookings.On("CreateConfirmed", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil, nil).Once()
	mockCache.On("InvalidateSubscriptions", ctx, userID, int64(7)).Return(nil).Once()
	mockProducer.On("Publish", ctx, "visits_topic", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := service.SubmitVisit(ctx, SubmitVisitInput{
		UserID:         userID,
		BranchID:       7,
		Date:           "2024-10-28",
		TimeLabel:      "17:00",
		IdempotencyKey: "key-9",
	})

	assert.NoError(t, err)
	mockCache.AssertExpectations(t)
}

func TestDecidePaymentMode(t *testing.T) {
	sub := activeSubscription(7, 2, time.Now().AddDate(0, 1, 0))

	testCases := []struct {
		name        string
		qualifying  *domain.Subscription
		requested   domain.PaymentMode
		want        domain.PaymentMode
		expectedErr error
	}{
		{name: "default with qualifying", qualifying: &sub, requested: "", want: domain.PaymentModeSubscription},
		{name: "default without qualifying", qualifying: nil, requested: "", want: domain.PaymentModeSingleCredit},
		{name: "explicit subscription honored", qualifying: &sub, requested: domain.PaymentModeSubscription, want: domain.PaymentModeSubscription},
		{name: "explicit subscription rejected", qualifying: nil, requested: domain.PaymentModeSubscription, expectedErr: domain.ErrNoEligibleSubscription},
		{name: "explicit credit with qualifying", qualifying: &sub, requested: domain.PaymentModeSingleCredit, want: domain.PaymentModeSingleCredit},
		{name: "explicit credit without qualifying", qualifying: nil, requested: domain.PaymentModeSingleCredit, want: domain.PaymentModeSingleCredit},
		{name: "unknown mode", qualifying: &sub, requested: "VOUCHER", expectedErr: domain.ErrInvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecidePaymentMode(tc.qualifying, tc.requested)
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

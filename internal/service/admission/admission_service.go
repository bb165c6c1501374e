package admission

import (
	"context"
	"sort"
	"time"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/Domenick1991/gymvisits/internal/kafka"
	"github.com/Domenick1991/gymvisits/internal/repository"
	"github.com/Domenick1991/gymvisits/internal/timeparse"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AdmissionUseCase interface {
	SubmitVisit(ctx context.Context, input SubmitVisitInput) (*VisitAdmission, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ActiveSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64) ([]domain.Subscription, error)
}

type Cache interface {
	GetSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64) ([]domain.Subscription, error)
	SetSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64, subs []domain.Subscription) error
	InvalidateSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SubmitVisitInput struct {
	UserID         uuid.UUID
	BranchID       int64
	Date           string
	TimeLabel      string
	RequestedMode  domain.PaymentMode // empty means "let the engine choose"
	IdempotencyKey string
}

// VisitAdmission is the admission result. Warnings carry degraded-path
// notices (currently only a failed subscription lookup) that must reach
// the caller without failing the booking.
type VisitAdmission struct {
	Booking  *domain.Booking
	Warnings []string
}

const warnSubscriptionLookup = "subscription lookup unavailable, booking decided without subscription data"

type AdmissionService struct {
	bookings           repository.BookingRepository
	subscriptions      repository.SubscriptionRepository
	branches           repository.BranchRepository
	cache              Cache
	producer           Producer
	visitsTopic        string
	notificationsTopic string
	now                func() time.Time
	log                zerolog.Logger
}

type AdmissionServiceOption func(*AdmissionService)

func WithNotificationsTopic(topic string) AdmissionServiceOption {
	return func(s *AdmissionService) {
		s.notificationsTopic = topic
	}
}

// WithClock overrides the service clock, used by the past-time check.
func WithClock(now func() time.Time) AdmissionServiceOption {
	return func(s *AdmissionService) {
		s.now = now
	}
}

func NewAdmissionService(
	bookings repository.BookingRepository,
	subscriptions repository.SubscriptionRepository,
	branches repository.BranchRepository,
	cache Cache,
	producer Producer,
	visitsTopic string,
	log zerolog.Logger,
	opts ...AdmissionServiceOption,
) *AdmissionService {
	service := &AdmissionService{
		bookings:      bookings,
		subscriptions: subscriptions,
		branches:      branches,
		cache:         cache,
		producer:      producer,
		visitsTopic:   visitsTopic,
		now:           time.Now,
		log:           log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *AdmissionService) SubmitVisit(ctx context.Context, input SubmitVisitInput) (*VisitAdmission, error) {
	if input.IdempotencyKey == "" {
		return nil, domain.ErrInvalidInput
	}

	// All validation happens before any resource is touched.
	scheduledAt, err := timeparse.Resolve(input.Date, input.TimeLabel)
	if err != nil {
		return nil, err
	}
	if !scheduledAt.After(s.now()) {
		return nil, domain.ErrPastScheduledTime
	}

	branch, err := s.branches.GetByID(ctx, input.BranchID)
	if err != nil {
		return nil, err
	}
	if !branch.AcceptsBookings() {
		return nil, domain.ErrBranchUnavailable
	}

	subs, degraded := s.lookupSubscriptions(ctx, input.UserID, input.BranchID)
	if degraded && input.RequestedMode == domain.PaymentModeSubscription {
		return nil, domain.ErrSubscriptionLookupUnavailable
	}
	qualifying := pickQualifying(subs)

	mode, err := DecidePaymentMode(qualifying, input.RequestedMode)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:             uuid.New(),
		UserID:         input.UserID,
		BranchID:       input.BranchID,
		ScheduledAt:    scheduledAt,
		PaymentMode:    mode,
		IdempotencyKey: input.IdempotencyKey,
	}
	switch mode {
	case domain.PaymentModeSubscription:
		id := qualifying.ID
		booking.SubscriptionID = &id
	case domain.PaymentModeSingleCredit:
		cost := branch.VisitCreditCost
		booking.CreditsCost = &cost
	}

	created, err := s.bookings.CreateConfirmed(ctx, booking)
	if err != nil {
		return nil, err
	}

	// A differing id means the repository returned the stored booking for a
	// replayed key: nothing was debited, so nothing is invalidated or
	// announced again.
	if replayed := created.ID != booking.ID; !replayed {
		if created.PaymentMode == domain.PaymentModeSubscription && s.cache != nil {
			if err := s.cache.InvalidateSubscriptions(ctx, input.UserID, input.BranchID); err != nil {
				s.log.Warn().Err(err).Msg("invalidate subscription cache")
			}
		}

		if err := s.publish(ctx, kafka.EventVisitBooked, created); err != nil {
			s.log.Warn().Err(err).Str("booking_id", created.ID.String()).Msg("publish visit_booked event")
		}
	}

	admission := &VisitAdmission{Booking: created}
	if degraded {
		admission.Warnings = append(admission.Warnings, warnSubscriptionLookup)
	}
	return admission, nil
}

func (s *AdmissionService) GetBooking(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// ActiveSubscriptions returns the caller's qualifying subscriptions for the
// branch, soonest end date first.
func (s *AdmissionService) ActiveSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64) ([]domain.Subscription, error) {
	subs, err := s.subscriptions.ListActive(ctx, userID, branchID)
	if err != nil {
		return nil, err
	}
	return filterQualifying(subs), nil
}

// lookupSubscriptions reads through the cache. A failed store read is not
// fatal here: the engine proceeds as if no subscription exists and reports
// the degradation to the caller.
func (s *AdmissionService) lookupSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64) (subs []domain.Subscription, degraded bool) {
	if s.cache != nil {
		if cached, err := s.cache.GetSubscriptions(ctx, userID, branchID); err == nil && cached != nil {
			return cached, false
		}
	}

	subs, err := s.subscriptions.ListActive(ctx, userID, branchID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Int64("branch_id", branchID).Msg("subscription lookup failed, treating as no subscription")
		return nil, true
	}
	if s.cache != nil {
		_ = s.cache.SetSubscriptions(ctx, userID, branchID, subs)
	}
	return subs, false
}

// DecidePaymentMode picks the payment mode for a visit. It never falls back
// to credits when the caller explicitly asked for a subscription.
func DecidePaymentMode(qualifying *domain.Subscription, requested domain.PaymentMode) (domain.PaymentMode, error) {
	switch requested {
	case domain.PaymentModeSubscription:
		if qualifying == nil {
			return "", domain.ErrNoEligibleSubscription
		}
		return domain.PaymentModeSubscription, nil
	case domain.PaymentModeSingleCredit:
		// Honored even when a subscription exists: the user may prefer to
		// keep the remaining visits.
		return domain.PaymentModeSingleCredit, nil
	case "":
		if qualifying != nil {
			return domain.PaymentModeSubscription, nil
		}
		return domain.PaymentModeSingleCredit, nil
	default:
		return "", domain.ErrInvalidInput
	}
}

// pickQualifying selects the entitlement closest to expiry among the
// qualifying subscriptions, ties broken by id for determinism.
func pickQualifying(subs []domain.Subscription) *domain.Subscription {
	qualifying := filterQualifying(subs)
	if len(qualifying) == 0 {
		return nil
	}
	return &qualifying[0]
}

func filterQualifying(subs []domain.Subscription) []domain.Subscription {
	qualifying := make([]domain.Subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.Qualifies() {
			qualifying = append(qualifying, sub)
		}
	}
	sort.Slice(qualifying, func(i, j int) bool {
		if !qualifying[i].EndDate.Equal(qualifying[j].EndDate) {
			return qualifying[i].EndDate.Before(qualifying[j].EndDate)
		}
		return qualifying[i].ID.String() < qualifying[j].ID.String()
	})
	return qualifying
}

func (s *AdmissionService) publish(ctx context.Context, eventType string, booking *domain.Booking) error {
	if s.producer == nil || s.visitsTopic == "" {
		return nil
	}
	event := kafka.VisitEvent{
		Type:        eventType,
		BookingID:   booking.ID.String(),
		UserID:      booking.UserID.String(),
		BranchID:    booking.BranchID,
		ScheduledAt: booking.ScheduledAt,
		PaymentMode: string(booking.PaymentMode),
		Status:      string(booking.Status),
	}
	if err := s.producer.Publish(ctx, s.visitsTopic, event.BookingID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, event.BookingID, event)
	}
	return nil
}

var _ AdmissionUseCase = (*AdmissionService)(nil)

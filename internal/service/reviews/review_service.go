package reviews

import (
	"context"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/Domenick1991/gymvisits/internal/kafka"
	"github.com/Domenick1991/gymvisits/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ReviewUseCase interface {
	CanReview(ctx context.Context, bookingID uuid.UUID) (bool, error)
	SubmitReview(ctx context.Context, input SubmitReviewInput) (*domain.Review, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SubmitReviewInput struct {
	BookingID uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   string
}

type ReviewService struct {
	bookings    repository.BookingRepository
	reviews     repository.ReviewRepository
	producer    Producer
	visitsTopic string
	log         zerolog.Logger
}

func NewReviewService(bookings repository.BookingRepository, reviews repository.ReviewRepository, producer Producer, visitsTopic string, log zerolog.Logger) *ReviewService {
	return &ReviewService{
		bookings:    bookings,
		reviews:     reviews,
		producer:    producer,
		visitsTopic: visitsTopic,
		log:         log,
	}
}

// Eligible reports whether a booking may accept a review: the visit must be
// over (completed, cancelled or missed) and not reviewed yet. A merely
// confirmed booking never accepts one.
func Eligible(booking *domain.Booking) bool {
	if booking.HasReview {
		return false
	}
	switch booking.Status {
	case domain.BookingStatusCompleted, domain.BookingStatusCancelled, domain.BookingStatusNoShow:
		return true
	default:
		return false
	}
}

func (s *ReviewService) CanReview(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return false, err
	}
	return Eligible(booking), nil
}

func (s *ReviewService) SubmitReview(ctx context.Context, input SubmitReviewInput) (*domain.Review, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, domain.ErrInvalidInput
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if !Eligible(booking) {
		if booking.HasReview {
			return nil, domain.ErrReviewAlreadyExists
		}
		return nil, domain.ErrBookingNotEligibleForReview
	}

	review := &domain.Review{
		ID:        uuid.New(),
		BookingID: input.BookingID,
		UserID:    input.UserID,
		Rating:    input.Rating,
		Comment:   input.Comment,
	}
	// The repository re-checks has_review inside its transaction, so two
	// racing submissions produce exactly one review.
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	if s.producer != nil && s.visitsTopic != "" {
		event := kafka.VisitEvent{
			Type:        kafka.EventReviewSubmitted,
			BookingID:   booking.ID.String(),
			UserID:      booking.UserID.String(),
			BranchID:    booking.BranchID,
			ScheduledAt: booking.ScheduledAt,
			PaymentMode: string(booking.PaymentMode),
			Status:      string(booking.Status),
		}
		if err := s.producer.Publish(ctx, s.visitsTopic, event.BookingID, event); err != nil {
			s.log.Warn().Err(err).Str("booking_id", event.BookingID).Msg("publish review_submitted event")
		}
	}

	return review, nil
}

var _ ReviewUseCase = (*ReviewService)(nil)

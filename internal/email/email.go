package email

import (
	"context"

	"github.com/Domenick1991/gymvisits/internal/kafka"
	"github.com/rs/zerolog"
)

type Sender struct {
	log zerolog.Logger
}

func NewSender(log zerolog.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.VisitEvent) error {
	s.log.Info().
		Str("type", event.Type).
		Str("user_id", event.UserID).
		Str("booking_id", event.BookingID).
		Int64("branch_id", event.BranchID).
		Msg("send notification email")
	return nil
}

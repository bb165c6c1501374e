package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// CreateConfirmed atomically debits the chosen payment resource and
	// inserts the booking. A replayed idempotency key returns the original
	// booking without touching any resource.
	CreateConfirmed(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error)
	MarkNoShowBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, branch_id, scheduled_at, payment_mode, subscription_id, credits_cost, status, has_review, idempotency_key, created_at, updated_at`

func (r *PGBookingRepository) CreateConfirmed(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Retry with the same key must not debit twice.
	existing, err := scanBooking(tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE idempotency_key=$1`, booking.IdempotencyKey))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// Capacity check and debit are one conditional UPDATE, so concurrent
	// allocations against the same resource serialize on the row lock and
	// the loser sees zero rows affected.
	switch booking.PaymentMode {
	case domain.PaymentModeSubscription:
		if err := debitSubscription(ctx, tx, *booking.SubscriptionID); err != nil {
			return nil, err
		}
	case domain.PaymentModeSingleCredit:
		if err := debitWallet(ctx, tx, booking.UserID, *booking.CreditsCost); err != nil {
			return nil, err
		}
	default:
		return nil, domain.ErrResourceConflict
	}

	booking.Status = domain.BookingStatusConfirmed
	err = tx.QueryRow(ctx, `INSERT INTO bookings (id, user_id, branch_id, scheduled_at, payment_mode, subscription_id, credits_cost, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		booking.ID, booking.UserID, booking.BranchID, booking.ScheduledAt, booking.PaymentMode,
		booking.SubscriptionID, booking.CreditsCost, booking.Status, booking.IdempotencyKey).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent call with the same key committed first; its
			// booking is the one to return, this debit rolls back.
			_ = tx.Rollback(ctx)
			return r.GetByIdempotencyKey(ctx, booking.IdempotencyKey)
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return booking, nil
}

func debitSubscription(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	cmd, err := tx.Exec(ctx, `UPDATE subscriptions SET remaining_visits = remaining_visits - 1, updated_at = now()
		WHERE id=$1 AND status='ACTIVE' AND remaining_visits > 0`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	// Distinguish a drained subscription from one that was cancelled or
	// removed between eligibility check and commit.
	var remaining int
	err = tx.QueryRow(ctx, `SELECT remaining_visits FROM subscriptions WHERE id=$1 AND status='ACTIVE'`, id).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrResourceConflict
	}
	if err != nil {
		return err
	}
	if remaining <= 0 {
		return domain.ErrSubscriptionExhausted
	}
	return domain.ErrResourceConflict
}

func debitWallet(ctx context.Context, tx pgx.Tx, userID uuid.UUID, cost int64) error {
	cmd, err := tx.Exec(ctx, `UPDATE wallets SET balance_credits = balance_credits - $2, updated_at = now()
		WHERE user_id=$1 AND balance_credits >= $2`, userID, cost)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var balance int64
	err = tx.QueryRow(ctx, `SELECT balance_credits FROM wallets WHERE user_id=$1`, userID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrWalletNotFound
	}
	if err != nil {
		return err
	}
	if balance < cost {
		return domain.ErrInsufficientCredits
	}
	return domain.ErrResourceConflict
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *PGBookingRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE idempotency_key=$1`, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 RETURNING `+bookingColumns, status, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return b, err
}

func (r *PGBookingRepository) MarkNoShowBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND scheduled_at <= $3 RETURNING `+bookingColumns,
		domain.BookingStatusNoShow, domain.BookingStatusConfirmed, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marked []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		marked = append(marked, *b)
	}
	return marked, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.BranchID, &b.ScheduledAt, &b.PaymentMode, &b.SubscriptionID,
		&b.CreditsCost, &b.Status, &b.HasReview, &b.IdempotencyKey, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ BookingRepository = (*PGBookingRepository)(nil)

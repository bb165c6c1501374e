package repository

import (
	"context"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewRepository interface {
	// Create inserts the review and flips the booking's has_review flag in
	// one transaction. A booking that was reviewed in the meantime fails
	// with ErrReviewAlreadyExists.
	Create(ctx context.Context, review *domain.Review) error
}

type PGReviewRepository struct {
	db *pgxpool.Pool
}

func NewReviewRepository(db *pgxpool.Pool) ReviewRepository {
	return &PGReviewRepository{db: db}
}

func (r *PGReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE bookings SET has_review=true, updated_at=now() WHERE id=$1 AND has_review=false`, review.BookingID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrReviewAlreadyExists
	}

	if err := tx.QueryRow(ctx, `INSERT INTO reviews (id, booking_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		review.ID, review.BookingID, review.UserID, review.Rating, review.Comment).
		Scan(&review.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrReviewAlreadyExists
		}
		return err
	}

	return tx.Commit(ctx)
}

var _ ReviewRepository = (*PGReviewRepository)(nil)

package repository

import (
	"context"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository interface {
	// ListActive returns the caller's ACTIVE subscriptions for the branch,
	// soonest end date first. Remaining-visit filtering is the engine's job.
	ListActive(ctx context.Context, userID uuid.UUID, branchID int64) ([]domain.Subscription, error)
}

type PGSubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) SubscriptionRepository {
	return &PGSubscriptionRepository{db: db}
}

func (r *PGSubscriptionRepository) ListActive(ctx context.Context, userID uuid.UUID, branchID int64) ([]domain.Subscription, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id, branch_id, plan_name, remaining_visits, status, end_date, created_at, updated_at
		FROM subscriptions
		WHERE user_id=$1 AND branch_id=$2 AND status=$3
		ORDER BY end_date, id`, userID, branchID, domain.SubscriptionStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := make([]domain.Subscription, 0)
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.BranchID, &s.PlanName, &s.RemainingVisits, &s.Status, &s.EndDate, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

var _ SubscriptionRepository = (*PGSubscriptionRepository)(nil)

package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BranchRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Branch, error)
	ListSchedule(ctx context.Context, branchID int64) ([]domain.ScheduleSlot, error)
}

type PGBranchRepository struct {
	db *pgxpool.Pool
}

func NewBranchRepository(db *pgxpool.Pool) BranchRepository {
	return &PGBranchRepository{db: db}
}

func (r *PGBranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, status, visit_credit_cost, created_at, updated_at FROM branches WHERE id=$1`, id)
	var b domain.Branch
	if err := row.Scan(&b.ID, &b.Name, &b.Status, &b.VisitCreditCost, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBranchNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBranchRepository) ListSchedule(ctx context.Context, branchID int64) ([]domain.ScheduleSlot, error) {
	rows, err := r.db.Query(ctx, `SELECT branch_id, weekday, slot, activity FROM branch_schedule WHERE branch_id=$1 ORDER BY weekday, slot`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]domain.ScheduleSlot, 0)
	for rows.Next() {
		var s domain.ScheduleSlot
		if err := rows.Scan(&s.BranchID, &s.Weekday, &s.Slot, &s.Activity); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

var _ BranchRepository = (*PGBranchRepository)(nil)

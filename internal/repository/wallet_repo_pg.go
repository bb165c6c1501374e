package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WalletRepository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error)
}

type PGWalletRepository struct {
	db *pgxpool.Pool
}

func NewWalletRepository(db *pgxpool.Pool) WalletRepository {
	return &PGWalletRepository{db: db}
}

func (r *PGWalletRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*domain.Wallet, error) {
	row := r.db.QueryRow(ctx, `SELECT user_id, balance_credits, updated_at FROM wallets WHERE user_id=$1`, userID)
	var w domain.Wallet
	if err := row.Scan(&w.UserID, &w.BalanceCredits, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

var _ WalletRepository = (*PGWalletRepository)(nil)

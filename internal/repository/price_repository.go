package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaspindersingh83/s30mocks-backend/internal/model"
	"github.com/jaspindersingh83/s30mocks-backend/internal/repository/base"
)

type PriceRepository struct {
	*base.Repository
}

func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{Repository: base.NewRepository(pool)}
}

// Get returns the price for the type or nil when none is set
func (r *PriceRepository) Get(ctx context.Context, interviewType model.InterviewType) (*model.Price, error) {
	query := `
		SELECT interview_type, amount, currency, updated_by, updated_at
		FROM prices
		WHERE interview_type = $1
	`

	var p model.Price
	err := r.QueryRow(ctx, query, interviewType).Scan(
		&p.InterviewType,
		&p.Amount,
		&p.Currency,
		&p.UpdatedBy,
		&p.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get price: %w", err)
	}

	return &p, nil
}

// Upsert inserts or replaces the price of a type
func (r *PriceRepository) Upsert(ctx context.Context, p *model.Price) error {
	query := `
		INSERT INTO prices (interview_type, amount, currency, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (interview_type) DO UPDATE
		SET amount = EXCLUDED.amount,
		    currency = EXCLUDED.currency,
		    updated_by = EXCLUDED.updated_by,
		    updated_at = EXCLUDED.updated_at
		RETURNING updated_at
	`

	if err := r.QueryRow(ctx, query, p.InterviewType, p.Amount, p.Currency, p.UpdatedBy).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert price: %w", err)
	}

	return nil
}

// InsertIfMissing seeds a price without touching an existing one
func (r *PriceRepository) InsertIfMissing(ctx context.Context, p *model.Price) (bool, error) {
	query := `
		INSERT INTO prices (interview_type, amount, currency)
		VALUES ($1, $2, $3)
		ON CONFLICT (interview_type) DO NOTHING
	`

	affected, err := r.ExecAffected(ctx, query, p.InterviewType, p.Amount, p.Currency)
	if err != nil {
		return false, fmt.Errorf("seed price: %w", err)
	}

	return affected == 1, nil
}

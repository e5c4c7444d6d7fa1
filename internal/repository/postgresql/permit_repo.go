package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/repository"
)

type pgPermitRepository struct {
	db *sql.DB
}

func NewPgPermitRepository(db *sql.DB) repository.PermitRepository {
	return &pgPermitRepository{db: db}
}

func (r *pgPermitRepository) Create(ctx context.Context, p *domain.Permit) (*domain.Permit, error) {
	query := `INSERT INTO permits (id, type_id, holder_id, vehicle_id, active, expiration, payment_intent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, p.ID, p.TypeID, p.HolderID, p.VehicleID, p.Active, p.Expiration, p.PaymentIntentID).
		Scan(&p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("PermitRepository.Create: %w", err)
	}
	p.CreatedAt = p.CreatedAt.In(time.UTC)
	return p, nil
}

func (r *pgPermitRepository) FindByHolderID(ctx context.Context, holderID string) ([]domain.Permit, error) {
	query := `SELECT id, type_id, holder_id, vehicle_id, active, expiration, payment_intent_id, created_at
		FROM permits WHERE holder_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, holderID)
	if err != nil {
		return nil, fmt.Errorf("PermitRepository.FindByHolderID: %w", err)
	}
	defer rows.Close()

	var permits []domain.Permit
	for rows.Next() {
		var p domain.Permit
		if err := rows.Scan(&p.ID, &p.TypeID, &p.HolderID, &p.VehicleID, &p.Active, &p.Expiration, &p.PaymentIntentID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("PermitRepository.FindByHolderID (scanning row): %w", err)
		}
		p.Expiration = p.Expiration.In(time.UTC)
		p.CreatedAt = p.CreatedAt.In(time.UTC)
		permits = append(permits, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("PermitRepository.FindByHolderID (rows error): %w", err)
	}
	return permits, nil
}

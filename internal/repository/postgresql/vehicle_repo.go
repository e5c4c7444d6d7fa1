package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/repository"

	"github.com/lib/pq"
)

type pgVehicleRepository struct {
	db *sql.DB
}

func NewPgVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &pgVehicleRepository{db: db}
}

func (r *pgVehicleRepository) Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	query := `INSERT INTO vehicles (id, plate, state, holder_id) VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, v.ID, v.Plate, v.State, v.HolderID).Scan(&v.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				return nil, fmt.Errorf("%w: biển số '%s' (%s) đã được đăng ký", repository.ErrDuplicateEntry, v.Plate, v.State)
			}
		}
		return nil, fmt.Errorf("VehicleRepository.Create: %w", err)
	}
	v.CreatedAt = v.CreatedAt.In(time.UTC)
	return v, nil
}

func (r *pgVehicleRepository) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	query := `SELECT id, plate, state, holder_id, created_at FROM vehicles WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&v.ID, &v.Plate, &v.State, &v.HolderID, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByID: %w", err)
	}
	v.CreatedAt = v.CreatedAt.In(time.UTC)
	return v, nil
}

func (r *pgVehicleRepository) FindByPlateAndState(ctx context.Context, plate, state string) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	query := `SELECT id, plate, state, holder_id, created_at FROM vehicles WHERE plate = $1 AND state = $2`
	err := r.db.QueryRowContext(ctx, query, plate, state).Scan(&v.ID, &v.Plate, &v.State, &v.HolderID, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleRepository.FindByPlateAndState: %w", err)
	}
	v.CreatedAt = v.CreatedAt.In(time.UTC)
	return v, nil
}

func (r *pgVehicleRepository) FindByHolderID(ctx context.Context, holderID string) ([]domain.Vehicle, error) {
	query := `SELECT id, plate, state, holder_id, created_at FROM vehicles WHERE holder_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, holderID)
	if err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindByHolderID: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := rows.Scan(&v.ID, &v.Plate, &v.State, &v.HolderID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("VehicleRepository.FindByHolderID (scanning row): %w", err)
		}
		v.CreatedAt = v.CreatedAt.In(time.UTC)
		vehicles = append(vehicles, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("VehicleRepository.FindByHolderID (rows error): %w", err)
	}
	return vehicles, nil
}

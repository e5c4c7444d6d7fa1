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

// Bảng permit_types có partial unique index trên (classname, type) WHERE NOT deleted,
// nên ràng buộc "tối đa một bản ghi active cho mỗi cặp" được DB bảo đảm kể cả khi
// có hai request tạo đồng thời.
type pgPermitTypeRepository struct {
	db *sql.DB
}

func NewPgPermitTypeRepository(db *sql.DB) repository.PermitTypeRepository {
	return &pgPermitTypeRepository{db: db}
}

const permitTypeColumns = `id, classname, type, price, deleted, created_at, updated_at`

func scanPermitType(row interface{ Scan(...any) error }) (*domain.PermitType, error) {
	pt := &domain.PermitType{}
	err := row.Scan(&pt.ID, &pt.Classname, &pt.Type, &pt.Price, &pt.Deleted, &pt.CreatedAt, &pt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	pt.CreatedAt = pt.CreatedAt.In(time.UTC)
	pt.UpdatedAt = pt.UpdatedAt.In(time.UTC)
	return pt, nil
}

func (r *pgPermitTypeRepository) Create(ctx context.Context, pt *domain.PermitType) (*domain.PermitType, error) {
	query := `INSERT INTO permit_types (id, classname, type, price, deleted)
		VALUES ($1, $2, $3, $4, FALSE) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, pt.ID, pt.Classname, pt.Type, pt.Price).
		Scan(&pt.CreatedAt, &pt.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code.Name() == "unique_violation" {
				return nil, fmt.Errorf("%w: (%s, %s)", repository.ErrDuplicateActive, pt.Classname, pt.Type)
			}
		}
		return nil, fmt.Errorf("PermitTypeRepository.Create: %w", err)
	}
	pt.CreatedAt = pt.CreatedAt.In(time.UTC)
	pt.UpdatedAt = pt.UpdatedAt.In(time.UTC)
	return pt, nil
}

func (r *pgPermitTypeRepository) FindActiveByID(ctx context.Context, id string) (*domain.PermitType, error) {
	query := `SELECT ` + permitTypeColumns + ` FROM permit_types WHERE id = $1 AND deleted = FALSE`
	pt, err := scanPermitType(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("PermitTypeRepository.FindActiveByID: %w", err)
	}
	return pt, nil
}

func (r *pgPermitTypeRepository) FindDeletedByPair(ctx context.Context, classname, typeName string) (*domain.PermitType, error) {
	// Có thể tồn tại nhiều bản ghi deleted cho cùng một cặp; lấy bản mới nhất để revive.
	query := `SELECT ` + permitTypeColumns + ` FROM permit_types
		WHERE classname = $1 AND type = $2 AND deleted = TRUE
		ORDER BY updated_at DESC LIMIT 1`
	pt, err := scanPermitType(r.db.QueryRowContext(ctx, query, classname, typeName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("PermitTypeRepository.FindDeletedByPair: %w", err)
	}
	return pt, nil
}

func (r *pgPermitTypeRepository) Revive(ctx context.Context, id string, price float64) (*domain.PermitType, error) {
	query := `UPDATE permit_types SET deleted = FALSE, price = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted = TRUE RETURNING ` + permitTypeColumns
	pt, err := scanPermitType(r.db.QueryRowContext(ctx, query, id, price))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		if pqErr, ok := err.(*pq.Error); ok {
			// Một request khác đã tạo bản ghi active cho cặp này trong lúc revive.
			if pqErr.Code.Name() == "unique_violation" {
				return nil, repository.ErrDuplicateActive
			}
		}
		return nil, fmt.Errorf("PermitTypeRepository.Revive: %w", err)
	}
	return pt, nil
}

func (r *pgPermitTypeRepository) UpdatePrice(ctx context.Context, id string, price float64) (*domain.PermitType, error) {
	// Bản ghi đã soft-delete không được phép cập nhật giá: coi như không tồn tại.
	query := `UPDATE permit_types SET price = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted = FALSE RETURNING ` + permitTypeColumns
	pt, err := scanPermitType(r.db.QueryRowContext(ctx, query, id, price))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("PermitTypeRepository.UpdatePrice: %w", err)
	}
	return pt, nil
}

func (r *pgPermitTypeRepository) SoftDelete(ctx context.Context, id string) (*domain.PermitType, error) {
	query := `UPDATE permit_types SET deleted = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND deleted = FALSE RETURNING ` + permitTypeColumns
	pt, err := scanPermitType(r.db.QueryRowContext(ctx, query, id))
	if err == nil {
		return pt, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("PermitTypeRepository.SoftDelete: %w", err)
	}

	// Phân biệt id không tồn tại với id đã bị xóa trước đó.
	var deleted bool
	err = r.db.QueryRowContext(ctx, `SELECT deleted FROM permit_types WHERE id = $1`, id).Scan(&deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("PermitTypeRepository.SoftDelete (kiểm tra trạng thái): %w", err)
	}
	if deleted {
		return nil, repository.ErrAlreadyDeleted
	}
	// Bản ghi vừa được revive bởi request khác giữa hai câu lệnh; báo not found để caller thử lại.
	return nil, repository.ErrNotFound
}

func (r *pgPermitTypeRepository) FindAllActive(ctx context.Context) ([]domain.PermitType, error) {
	return r.findMany(ctx, `SELECT `+permitTypeColumns+` FROM permit_types WHERE deleted = FALSE ORDER BY created_at`)
}

func (r *pgPermitTypeRepository) FindAll(ctx context.Context) ([]domain.PermitType, error) {
	return r.findMany(ctx, `SELECT `+permitTypeColumns+` FROM permit_types ORDER BY created_at`)
}

func (r *pgPermitTypeRepository) findMany(ctx context.Context, query string) ([]domain.PermitType, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("PermitTypeRepository.findMany: %w", err)
	}
	defer rows.Close()

	var types []domain.PermitType
	for rows.Next() {
		pt, err := scanPermitType(rows)
		if err != nil {
			return nil, fmt.Errorf("PermitTypeRepository.findMany (scanning row): %w", err)
		}
		types = append(types, *pt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("PermitTypeRepository.findMany (rows error): %w", err)
	}
	return types, nil
}

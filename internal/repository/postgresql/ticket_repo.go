package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/repository"
)

type pgTicketRepository struct {
	db *sql.DB
}

func NewPgTicketRepository(db *sql.DB) repository.TicketRepository {
	return &pgTicketRepository{db: db}
}

const ticketColumns = `id, vehicle_id, cost, issued, deadline, status, challenge_description, paid_at, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	err := row.Scan(&t.ID, &t.VehicleID, &t.Cost, &t.Issued, &t.Deadline, &t.Status,
		&t.ChallengeDescription, &t.PaidAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Issued = t.Issued.In(time.UTC)
	t.Deadline = t.Deadline.In(time.UTC)
	t.CreatedAt = t.CreatedAt.In(time.UTC)
	t.UpdatedAt = t.UpdatedAt.In(time.UTC)
	return t, nil
}

func (r *pgTicketRepository) Create(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	query := `INSERT INTO tickets (id, vehicle_id, cost, issued, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, t.ID, t.VehicleID, t.Cost, t.Issued, t.Deadline, t.Status).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("TicketRepository.Create: %w", err)
	}
	t.CreatedAt = t.CreatedAt.In(time.UTC)
	t.UpdatedAt = t.UpdatedAt.In(time.UTC)
	return t, nil
}

func (r *pgTicketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	t, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("TicketRepository.FindByID: %w", err)
	}
	return t, nil
}

func (r *pgTicketRepository) FindByVehicleID(ctx context.Context, vehicleID string) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE vehicle_id = $1 ORDER BY issued`
	return r.findMany(ctx, query, vehicleID)
}

func (r *pgTicketRepository) FindByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status = $1 ORDER BY issued`
	return r.findMany(ctx, query, status)
}

// MarkPaid chuyển unpaid -> paid bằng một câu UPDATE duy nhất. Điều kiện status
// nằm ngay trong WHERE nên hai request thanh toán đồng thời không thể cùng thành công.
func (r *pgTicketRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) (*domain.Ticket, error) {
	query := `UPDATE tickets SET status = $3, paid_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = $4 RETURNING ` + ticketColumns
	t, err := scanTicket(r.db.QueryRowContext(ctx, query, id, paidAt, domain.TicketPaid, domain.TicketUnpaid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.resolveTransitionFailure(ctx, id)
		}
		return nil, fmt.Errorf("TicketRepository.MarkPaid: %w", err)
	}
	return t, nil
}

func (r *pgTicketRepository) MarkChallenged(ctx context.Context, id string, description string) (*domain.Ticket, error) {
	query := `UPDATE tickets SET status = $3, challenge_description = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = $4 RETURNING ` + ticketColumns
	t, err := scanTicket(r.db.QueryRowContext(ctx, query, id, description, domain.TicketChallenged, domain.TicketUnpaid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.resolveTransitionFailure(ctx, id)
		}
		return nil, fmt.Errorf("TicketRepository.MarkChallenged: %w", err)
	}
	return t, nil
}

func (r *pgTicketRepository) Adjudicate(ctx context.Context, id string, to domain.TicketStatus, newCost float64) (*domain.Ticket, error) {
	query := `UPDATE tickets SET status = $3, cost = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND status = $4 RETURNING ` + ticketColumns
	t, err := scanTicket(r.db.QueryRowContext(ctx, query, id, newCost, to, domain.TicketChallenged))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.resolveTransitionFailure(ctx, id)
		}
		return nil, fmt.Errorf("TicketRepository.Adjudicate: %w", err)
	}
	return t, nil
}

// resolveTransitionFailure phân giải một UPDATE không khớp dòng nào thành lỗi cụ thể:
// id không tồn tại, hay ticket đang ở trạng thái không cho phép chuyển.
func (r *pgTicketRepository) resolveTransitionFailure(ctx context.Context, id string) error {
	var status domain.TicketStatus
	err := r.db.QueryRowContext(ctx, `SELECT status FROM tickets WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("TicketRepository.resolveTransitionFailure: %w", err)
	}
	return fmt.Errorf("%w (trạng thái hiện tại: %s)", repository.ErrInvalidState, status)
}

func (r *pgTicketRepository) findMany(ctx context.Context, query string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("TicketRepository.findMany: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("TicketRepository.findMany (scanning row): %w", err)
		}
		tickets = append(tickets, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("TicketRepository.findMany (rows error): %w", err)
	}
	return tickets, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
)

var ErrNotFound = errors.New("không tìm thấy bản ghi")
var ErrDuplicateEntry = errors.New("bản ghi đã tồn tại")
var ErrDuplicateActive = errors.New("đã có permit type đang hoạt động cho cặp classname/type này")
var ErrAlreadyDeleted = errors.New("permit type đã bị xóa trước đó")
var ErrInvalidState = errors.New("trạng thái hiện tại của ticket không cho phép thao tác này")

type PermitTypeRepository interface {
	Create(ctx context.Context, pt *domain.PermitType) (*domain.PermitType, error)
	FindActiveByID(ctx context.Context, id string) (*domain.PermitType, error)
	// FindDeletedByPair tìm bản ghi soft-deleted mới nhất cho cặp (classname, type).
	FindDeletedByPair(ctx context.Context, classname, typeName string) (*domain.PermitType, error)
	// Revive xóa cờ deleted và ghi đè price; chỉ áp dụng cho bản ghi đang deleted.
	Revive(ctx context.Context, id string, price float64) (*domain.PermitType, error)
	// UpdatePrice chỉ áp dụng cho bản ghi active; bản ghi deleted coi như không tồn tại.
	UpdatePrice(ctx context.Context, id string, price float64) (*domain.PermitType, error)
	// SoftDelete phân biệt ErrNotFound (id không tồn tại) với ErrAlreadyDeleted.
	SoftDelete(ctx context.Context, id string) (*domain.PermitType, error)
	FindAllActive(ctx context.Context) ([]domain.PermitType, error)
	FindAll(ctx context.Context) ([]domain.PermitType, error)
}

type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error)
	FindByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindByVehicleID(ctx context.Context, vehicleID string) ([]domain.Ticket, error)
	FindByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
	// Các hàm chuyển trạng thái đều là compare-and-set trên (id, trạng thái yêu cầu):
	// 0 rows affected được phân giải thành ErrNotFound hoặc ErrInvalidState.
	MarkPaid(ctx context.Context, id string, paidAt time.Time) (*domain.Ticket, error)
	MarkChallenged(ctx context.Context, id string, description string) (*domain.Ticket, error)
	Adjudicate(ctx context.Context, id string, to domain.TicketStatus, newCost float64) (*domain.Ticket, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error)
	FindByID(ctx context.Context, id string) (*domain.Vehicle, error)
	FindByPlateAndState(ctx context.Context, plate, state string) (*domain.Vehicle, error)
	FindByHolderID(ctx context.Context, holderID string) ([]domain.Vehicle, error)
}

type PermitRepository interface {
	Create(ctx context.Context, p *domain.Permit) (*domain.Permit, error)
	FindByHolderID(ctx context.Context, holderID string) ([]domain.Permit, error)
}

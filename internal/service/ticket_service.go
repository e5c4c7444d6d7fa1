package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/repository"

	"github.com/google/uuid"
)

var ErrNoChallenges = errors.New("không có ticket nào đang bị khiếu nại")
var ErrNotVehicleOwner = errors.New("vehicle không thuộc về driver này")

// DriverDirectory phân giải holder id thành thông tin driver (tên, email).
type DriverDirectory interface {
	GetDriver(ctx context.Context, holderID string) (*domain.DriverInfo, error)
}

// TicketEventBroadcaster đẩy event vòng đời ticket đến ops dashboard (best-effort).
type TicketEventBroadcaster interface {
	BroadcastTicketEvent(event domain.TicketEventNotification)
}

// TicketService sở hữu máy trạng thái của ticket:
// unpaid -> paid | challenged; challenged -> accepted | denied.
// Mọi bước chuyển là compare-and-set trong repo nên hai request đồng thời
// trên cùng một ticket không thể cùng thành công.
type TicketService struct {
	ticketRepo  repository.TicketRepository
	vehicleRepo repository.VehicleRepository
	directory   DriverDirectory
	notifier    *Notifier
	broadcaster TicketEventBroadcaster
	gracePeriod time.Duration
}

func NewTicketService(
	ticketRepo repository.TicketRepository,
	vehicleRepo repository.VehicleRepository,
	directory DriverDirectory,
	notifier *Notifier,
	broadcaster TicketEventBroadcaster,
	gracePeriod time.Duration,
) *TicketService {
	return &TicketService{
		ticketRepo:  ticketRepo,
		vehicleRepo: vehicleRepo,
		directory:   directory,
		notifier:    notifier,
		broadcaster: broadcaster,
		gracePeriod: gracePeriod,
	}
}

// MakeTicket lập vé phạt cho vehicle theo (plate, state). Tra cứu driver ở directory
// là bắt buộc và diễn ra TRƯỚC khi ghi ticket: directory không khả dụng thì không
// có mutation nào xảy ra. Gửi mail sau commit là best-effort.
func (s *TicketService) MakeTicket(ctx context.Context, dto domain.MakeTicketDTO) (*domain.Ticket, error) {
	vehicle, err := s.vehicleRepo.FindByPlateAndState(ctx, strings.TrimSpace(dto.Plate), strings.TrimSpace(dto.State))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: không có vehicle với biển số '%s' (%s)", repository.ErrNotFound, dto.Plate, dto.State)
		}
		return nil, fmt.Errorf("lỗi tìm vehicle: %w", err)
	}

	driver, err := s.directory.GetDriver(ctx, vehicle.HolderID)
	if err != nil {
		return nil, fmt.Errorf("lỗi tra cứu driver '%s': %w", vehicle.HolderID, err)
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		ID:        uuid.NewString(),
		VehicleID: vehicle.ID,
		Cost:      dto.Cost,
		Issued:    now,
		Deadline:  now.Add(s.gracePeriod),
		Status:    domain.TicketUnpaid,
	}
	created, err := s.ticketRepo.Create(ctx, ticket)
	if err != nil {
		return nil, fmt.Errorf("lỗi tạo ticket: %w", err)
	}
	log.Printf("Đã lập ticket %s cho vehicle %s, phí %.2f, hạn %s",
		created.ID, vehicle.ID, created.Cost, created.Deadline.Format(time.RFC3339))

	s.notifier.TicketIssued(driver, created)
	s.broadcast(created, domain.TicketEventIssued, "Vé phạt mới được lập")
	return created, nil
}

// PayTicket chuyển unpaid -> paid; chỉ driver sở hữu vehicle của ticket được phép.
func (s *TicketService) PayTicket(ctx context.Context, subjectID, ticketID string) (*domain.Ticket, error) {
	ticket, vehicle, err := s.ownedTicket(ctx, subjectID, ticketID)
	if err != nil {
		return nil, err
	}

	// Tra cứu directory trước khi mutate: nếu directory trả lỗi thì ticket giữ nguyên unpaid.
	driver, err := s.directory.GetDriver(ctx, vehicle.HolderID)
	if err != nil {
		return nil, fmt.Errorf("lỗi tra cứu driver '%s': %w", vehicle.HolderID, err)
	}

	paid, err := s.ticketRepo.MarkPaid(ctx, ticket.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	log.Printf("Ticket %s đã được thanh toán bởi driver %s", paid.ID, subjectID)

	s.notifier.TicketPaid(driver, paid)
	s.broadcast(paid, domain.TicketEventPaid, "Vé phạt đã được thanh toán")
	return paid, nil
}

// ChallengeTicket chuyển unpaid -> challenged và lưu mô tả khiếu nại.
func (s *TicketService) ChallengeTicket(ctx context.Context, subjectID, ticketID, description string) (*domain.Ticket, error) {
	ticket, _, err := s.ownedTicket(ctx, subjectID, ticketID)
	if err != nil {
		return nil, err
	}

	challenged, err := s.ticketRepo.MarkChallenged(ctx, ticket.ID, description)
	if err != nil {
		return nil, err
	}
	log.Printf("Ticket %s bị khiếu nại bởi driver %s: %s", challenged.ID, subjectID, description)

	s.broadcast(challenged, domain.TicketEventChallenged, "Có khiếu nại mới cần xử lý")
	return challenged, nil
}

// AcceptChallenge chấp nhận khiếu nại: challenged -> accepted, phí được xóa về 0.
func (s *TicketService) AcceptChallenge(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	accepted, err := s.ticketRepo.Adjudicate(ctx, ticketID, domain.TicketAccepted, 0)
	if err != nil {
		return nil, err
	}
	log.Printf("Khiếu nại của ticket %s được chấp nhận, phí đã xóa", accepted.ID)

	s.broadcast(accepted, domain.TicketEventAdjudicated, "Khiếu nại được chấp nhận")
	return accepted, nil
}

// DenyChallenge từ chối khiếu nại: challenged -> denied (trạng thái cuối),
// phí và hạn nộp giữ nguyên.
func (s *TicketService) DenyChallenge(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	current, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	denied, err := s.ticketRepo.Adjudicate(ctx, ticketID, domain.TicketDenied, current.Cost)
	if err != nil {
		return nil, err
	}
	log.Printf("Khiếu nại của ticket %s bị từ chối", denied.ID)

	s.broadcast(denied, domain.TicketEventAdjudicated, "Khiếu nại bị từ chối")
	return denied, nil
}

// GetChallenges liệt kê các ticket đang chờ xử lý khiếu nại; danh sách rỗng là lỗi
// nghiệp vụ để admin dashboard phân biệt với lỗi truy vấn.
func (s *TicketService) GetChallenges(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.ticketRepo.FindByStatus(ctx, domain.TicketChallenged)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, ErrNoChallenges
	}
	return tickets, nil
}

func (s *TicketService) GetTicketByID(ctx context.Context, subjectID, ticketID string) (*domain.Ticket, error) {
	ticket, _, err := s.ownedTicket(ctx, subjectID, ticketID)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) GetTicketsByVehicle(ctx context.Context, subjectID, vehicleID string) ([]domain.Ticket, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.HolderID != subjectID {
		return nil, ErrNotVehicleOwner
	}
	return s.ticketRepo.FindByVehicleID(ctx, vehicleID)
}

// ownedTicket tải ticket và xác nhận vehicle của nó thuộc về subject.
func (s *TicketService) ownedTicket(ctx context.Context, subjectID, ticketID string) (*domain.Ticket, *domain.Vehicle, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	vehicle, err := s.vehicleRepo.FindByID(ctx, ticket.VehicleID)
	if err != nil {
		return nil, nil, fmt.Errorf("lỗi tìm vehicle của ticket %s: %w", ticketID, err)
	}
	if vehicle.HolderID != subjectID {
		return nil, nil, ErrNotVehicleOwner
	}
	return ticket, vehicle, nil
}

func (s *TicketService) broadcast(t *domain.Ticket, eventType domain.TicketEventType, message string) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastTicketEvent(domain.TicketEventNotification{
		EventID:   uuid.NewString(),
		TicketID:  t.ID,
		VehicleID: t.VehicleID,
		EventType: eventType,
		Status:    t.Status,
		Cost:      t.Cost,
		Timestamp: time.Now().UTC(),
		Message:   message,
	})
}

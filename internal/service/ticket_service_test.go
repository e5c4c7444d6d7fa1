package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/client"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/repository"

	"github.com/google/uuid"
	"gopkg.in/guregu/null.v4"
)

// fakeTicketRepo mô phỏng ngữ nghĩa compare-and-set của pgTicketRepository.
type fakeTicketRepo struct {
	rows map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{rows: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, t *domain.Ticket) (*domain.Ticket, error) {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.rows[t.ID] = t
	return t, nil
}

func (r *fakeTicketRepo) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeTicketRepo) FindByVehicleID(ctx context.Context, vehicleID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.rows {
		if t.VehicleID == vehicleID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) FindByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range r.rows {
		if t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) cas(id string, from, to domain.TicketStatus, apply func(*domain.Ticket)) (*domain.Ticket, error) {
	t, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if t.Status != from {
		return nil, fmt.Errorf("%w (trạng thái hiện tại: %s)", repository.ErrInvalidState, t.Status)
	}
	t.Status = to
	apply(t)
	t.UpdatedAt = time.Now().UTC()
	copied := *t
	return &copied, nil
}

func (r *fakeTicketRepo) MarkPaid(ctx context.Context, id string, paidAt time.Time) (*domain.Ticket, error) {
	return r.cas(id, domain.TicketUnpaid, domain.TicketPaid, func(t *domain.Ticket) {
		t.PaidAt = null.TimeFrom(paidAt)
	})
}

func (r *fakeTicketRepo) MarkChallenged(ctx context.Context, id string, description string) (*domain.Ticket, error) {
	return r.cas(id, domain.TicketUnpaid, domain.TicketChallenged, func(t *domain.Ticket) {
		t.ChallengeDescription = null.StringFrom(description)
	})
}

func (r *fakeTicketRepo) Adjudicate(ctx context.Context, id string, to domain.TicketStatus, newCost float64) (*domain.Ticket, error) {
	return r.cas(id, domain.TicketChallenged, to, func(t *domain.Ticket) {
		t.Cost = newCost
	})
}

type fakeVehicleRepo struct {
	rows map[string]*domain.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{rows: make(map[string]*domain.Vehicle)}
}

func (r *fakeVehicleRepo) Create(ctx context.Context, v *domain.Vehicle) (*domain.Vehicle, error) {
	for _, existing := range r.rows {
		if existing.Plate == v.Plate && existing.State == v.State {
			return nil, repository.ErrDuplicateEntry
		}
	}
	v.CreatedAt = time.Now().UTC()
	r.rows[v.ID] = v
	return v, nil
}

func (r *fakeVehicleRepo) FindByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	v, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (r *fakeVehicleRepo) FindByPlateAndState(ctx context.Context, plate, state string) (*domain.Vehicle, error) {
	for _, v := range r.rows {
		if v.Plate == plate && v.State == state {
			return v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeVehicleRepo) FindByHolderID(ctx context.Context, holderID string) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for _, v := range r.rows {
		if v.HolderID == holderID {
			out = append(out, *v)
		}
	}
	return out, nil
}

type fakeDirectory struct {
	err   error
	calls int
}

func (d *fakeDirectory) GetDriver(ctx context.Context, holderID string) (*domain.DriverInfo, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return &domain.DriverInfo{ID: holderID, Name: "Nguyen Van A", Email: "a@example.com"}, nil
}

type fakeMailer struct {
	err  error
	sent []domain.EmailNotification
}

func (m *fakeMailer) Send(ctx context.Context, mail domain.EmailNotification) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail)
	return nil
}

type fakeBroadcaster struct {
	events []domain.TicketEventNotification
}

func (b *fakeBroadcaster) BroadcastTicketEvent(event domain.TicketEventNotification) {
	b.events = append(b.events, event)
}

type ticketFixture struct {
	svc         *TicketService
	ticketRepo  *fakeTicketRepo
	vehicleRepo *fakeVehicleRepo
	directory   *fakeDirectory
	mailer      *fakeMailer
	broadcaster *fakeBroadcaster
	vehicle     *domain.Vehicle
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	ticketRepo := newFakeTicketRepo()
	vehicleRepo := newFakeVehicleRepo()
	directory := &fakeDirectory{}
	mailer := &fakeMailer{}
	broadcaster := &fakeBroadcaster{}

	vehicle := &domain.Vehicle{ID: uuid.NewString(), Plate: "51A12345", State: "HN", HolderID: "driver-1"}
	if _, err := vehicleRepo.Create(context.Background(), vehicle); err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}

	notifier := NewNotifier(mailer, "no-reply@parkwise.app", time.Second)
	svc := NewTicketService(ticketRepo, vehicleRepo, directory, notifier, broadcaster, 14*24*time.Hour)
	return &ticketFixture{
		svc:         svc,
		ticketRepo:  ticketRepo,
		vehicleRepo: vehicleRepo,
		directory:   directory,
		mailer:      mailer,
		broadcaster: broadcaster,
		vehicle:     vehicle,
	}
}

func (f *ticketFixture) makeTicket(t *testing.T, cost float64) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.MakeTicket(context.Background(), domain.MakeTicketDTO{
		Plate: f.vehicle.Plate, State: f.vehicle.State, Cost: cost,
	})
	if err != nil {
		t.Fatalf("MakeTicket: %v", err)
	}
	return ticket
}

func TestIssueChallengeAccept(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket := f.makeTicket(t, 50)
	if ticket.Status != domain.TicketUnpaid {
		t.Fatalf("expected unpaid after issue, got %s", ticket.Status)
	}
	if got := ticket.Deadline.Sub(ticket.Issued); got != 14*24*time.Hour {
		t.Fatalf("expected deadline = issued + grace, got %v", got)
	}

	challenged, err := f.svc.ChallengeTicket(ctx, "driver-1", ticket.ID, "wrong spot")
	if err != nil {
		t.Fatalf("ChallengeTicket: %v", err)
	}
	if challenged.Status != domain.TicketChallenged {
		t.Fatalf("expected challenged, got %s", challenged.Status)
	}
	if challenged.ChallengeDescription.String != "wrong spot" {
		t.Fatalf("expected description stored, got %+v", challenged.ChallengeDescription)
	}

	accepted, err := f.svc.AcceptChallenge(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("AcceptChallenge: %v", err)
	}
	if accepted.Status != domain.TicketAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}
	if accepted.Cost != 0 {
		t.Fatalf("expected cost waived on accept, got %.2f", accepted.Cost)
	}
}

func TestDenyChallengeKeepsCostAndIsTerminal(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket := f.makeTicket(t, 75)
	if _, err := f.svc.ChallengeTicket(ctx, "driver-1", ticket.ID, "không đồng ý"); err != nil {
		t.Fatalf("ChallengeTicket: %v", err)
	}

	denied, err := f.svc.DenyChallenge(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("DenyChallenge: %v", err)
	}
	if denied.Status != domain.TicketDenied {
		t.Fatalf("expected denied, got %s", denied.Status)
	}
	if denied.Cost != 75 {
		t.Fatalf("expected cost unchanged on deny, got %.2f", denied.Cost)
	}

	// denied là trạng thái cuối: không thể thanh toán hay khiếu nại lại
	if _, err := f.svc.PayTicket(ctx, "driver-1", ticket.ID); !errors.Is(err, repository.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState paying denied ticket, got %v", err)
	}
	if _, err := f.svc.ChallengeTicket(ctx, "driver-1", ticket.ID, "lần nữa"); !errors.Is(err, repository.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState re-challenging denied ticket, got %v", err)
	}
}

func TestTransitionPreconditions(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket := f.makeTicket(t, 20)
	if _, err := f.svc.PayTicket(ctx, "driver-1", ticket.ID); err != nil {
		t.Fatalf("PayTicket: %v", err)
	}

	if _, err := f.svc.PayTicket(ctx, "driver-1", ticket.ID); !errors.Is(err, repository.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState paying paid ticket, got %v", err)
	}
	if _, err := f.svc.ChallengeTicket(ctx, "driver-1", ticket.ID, "x"); !errors.Is(err, repository.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState challenging paid ticket, got %v", err)
	}
	if _, err := f.svc.AcceptChallenge(ctx, ticket.ID); !errors.Is(err, repository.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState accepting non-challenged ticket, got %v", err)
	}

	if _, err := f.svc.PayTicket(ctx, "driver-1", "khong-ton-tai"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestGetChallengesEmptyIsDomainError(t *testing.T) {
	f := newTicketFixture(t)

	if _, err := f.svc.GetChallenges(context.Background()); !errors.Is(err, ErrNoChallenges) {
		t.Fatalf("expected ErrNoChallenges, got %v", err)
	}
}

func TestPayTicketDirectoryFailureLeavesStateUnchanged(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket := f.makeTicket(t, 50)
	f.directory.err = fmt.Errorf("%w: directory trả về status 404", client.ErrUpstream)

	_, err := f.svc.PayTicket(ctx, "driver-1", ticket.ID)
	if !errors.Is(err, client.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	current, err := f.ticketRepo.FindByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if current.Status != domain.TicketUnpaid {
		t.Fatalf("expected ticket unchanged (unpaid), got %s", current.Status)
	}
	if current.PaidAt.Valid {
		t.Fatalf("expected no paid_at on failed payment")
	}
}

func TestMakeTicketDirectoryFailureCreatesNothing(t *testing.T) {
	f := newTicketFixture(t)
	f.directory.err = fmt.Errorf("%w: connection refused", client.ErrUpstream)

	_, err := f.svc.MakeTicket(context.Background(), domain.MakeTicketDTO{
		Plate: f.vehicle.Plate, State: f.vehicle.State, Cost: 30,
	})
	if !errors.Is(err, client.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if len(f.ticketRepo.rows) != 0 {
		t.Fatalf("expected no ticket persisted, got %d", len(f.ticketRepo.rows))
	}
}

func TestMailFailureDoesNotFailOperation(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket := f.makeTicket(t, 50)
	f.mailer.err = errors.New("mail provider down")

	paid, err := f.svc.PayTicket(ctx, "driver-1", ticket.ID)
	if err != nil {
		t.Fatalf("expected payment to succeed despite mail failure, got %v", err)
	}
	if paid.Status != domain.TicketPaid {
		t.Fatalf("expected paid, got %s", paid.Status)
	}
	if !paid.PaidAt.Valid {
		t.Fatalf("expected paid_at set")
	}
}

func TestNotificationsSentOnIssueAndPay(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket := f.makeTicket(t, 50)
	if _, err := f.svc.PayTicket(ctx, "driver-1", ticket.ID); err != nil {
		t.Fatalf("PayTicket: %v", err)
	}

	if len(f.mailer.sent) != 2 {
		t.Fatalf("expected 2 mails (issued + paid), got %d", len(f.mailer.sent))
	}
	if f.mailer.sent[0].To != "a@example.com" {
		t.Fatalf("expected mail to owner, got %s", f.mailer.sent[0].To)
	}
	if len(f.broadcaster.events) != 2 {
		t.Fatalf("expected 2 ws events, got %d", len(f.broadcaster.events))
	}
	if f.broadcaster.events[0].EventType != domain.TicketEventIssued {
		t.Fatalf("expected first event ticket_issued, got %s", f.broadcaster.events[0].EventType)
	}
}

func TestOwnershipScoping(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	ticket := f.makeTicket(t, 50)

	// driver khác không được thanh toán, khiếu nại hay đọc ticket này
	if _, err := f.svc.PayTicket(ctx, "driver-2", ticket.ID); !errors.Is(err, ErrNotVehicleOwner) {
		t.Fatalf("expected ErrNotVehicleOwner on pay, got %v", err)
	}
	if _, err := f.svc.ChallengeTicket(ctx, "driver-2", ticket.ID, "x"); !errors.Is(err, ErrNotVehicleOwner) {
		t.Fatalf("expected ErrNotVehicleOwner on challenge, got %v", err)
	}
	if _, err := f.svc.GetTicketByID(ctx, "driver-2", ticket.ID); !errors.Is(err, ErrNotVehicleOwner) {
		t.Fatalf("expected ErrNotVehicleOwner on read, got %v", err)
	}
	if _, err := f.svc.GetTicketsByVehicle(ctx, "driver-2", f.vehicle.ID); !errors.Is(err, ErrNotVehicleOwner) {
		t.Fatalf("expected ErrNotVehicleOwner on vehicle listing, got %v", err)
	}

	current, err := f.ticketRepo.FindByID(ctx, ticket.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if current.Status != domain.TicketUnpaid {
		t.Fatalf("expected ticket untouched by foreign driver, got %s", current.Status)
	}

	// chủ xe đọc được bình thường
	tickets, err := f.svc.GetTicketsByVehicle(ctx, "driver-1", f.vehicle.ID)
	if err != nil {
		t.Fatalf("GetTicketsByVehicle: %v", err)
	}
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets))
	}
}

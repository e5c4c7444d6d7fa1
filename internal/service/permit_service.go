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

// PaymentGateway tạo payment intent cho luồng checkout; core chỉ lưu lại intent id.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount float64, description string) (string, error)
}

// PermitService phụ trách khu vực tài khoản driver: đăng ký vehicle và mua permit.
type PermitService struct {
	permitRepo  repository.PermitRepository
	vehicleRepo repository.VehicleRepository
	typeRepo    repository.PermitTypeRepository
	payment     PaymentGateway
}

func NewPermitService(
	permitRepo repository.PermitRepository,
	vehicleRepo repository.VehicleRepository,
	typeRepo repository.PermitTypeRepository,
	payment PaymentGateway,
) *PermitService {
	return &PermitService{
		permitRepo:  permitRepo,
		vehicleRepo: vehicleRepo,
		typeRepo:    typeRepo,
		payment:     payment,
	}
}

func (s *PermitService) RegisterVehicle(ctx context.Context, subjectID string, dto domain.RegisterVehicleDTO) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{
		ID:       uuid.NewString(),
		Plate:    strings.ToUpper(strings.TrimSpace(dto.Plate)),
		State:    strings.ToUpper(strings.TrimSpace(dto.State)),
		HolderID: subjectID,
	}
	created, err := s.vehicleRepo.Create(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	log.Printf("Driver %s đã đăng ký vehicle %s (%s %s)", subjectID, created.ID, created.Plate, created.State)
	return created, nil
}

func (s *PermitService) MyVehicles(ctx context.Context, subjectID string) ([]domain.Vehicle, error) {
	return s.vehicleRepo.FindByHolderID(ctx, subjectID)
}

// Checkout mua permit cho một vehicle của driver. Payment intent được tạo TRƯỚC
// khi ghi permit: gateway lỗi thì không có permit nào được lưu.
func (s *PermitService) Checkout(ctx context.Context, subjectID string, dto domain.PermitCheckoutDTO) (*domain.Permit, error) {
	vehicle, err := s.vehicleRepo.FindByID(ctx, dto.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle.HolderID != subjectID {
		return nil, ErrNotVehicleOwner
	}

	pt, err := s.typeRepo.FindActiveByID(ctx, dto.PermitTypeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: permit type '%s' không tồn tại hoặc đã ngừng bán", repository.ErrNotFound, dto.PermitTypeID)
		}
		return nil, err
	}

	description := fmt.Sprintf("Permit %s/%s cho vehicle %s", pt.Classname, pt.Type, vehicle.Plate)
	intentID, err := s.payment.CreateIntent(ctx, pt.Price, description)
	if err != nil {
		return nil, fmt.Errorf("lỗi tạo payment intent: %w", err)
	}

	permit := &domain.Permit{
		ID:              uuid.NewString(),
		TypeID:          pt.ID,
		HolderID:        subjectID,
		VehicleID:       vehicle.ID,
		Active:          true,
		Expiration:      time.Now().UTC().Add(permitDuration(pt.Type)),
		PaymentIntentID: intentID,
	}
	created, err := s.permitRepo.Create(ctx, permit)
	if err != nil {
		return nil, fmt.Errorf("lỗi lưu permit: %w", err)
	}
	log.Printf("Driver %s đã mua permit %s (%s/%s) cho vehicle %s, hết hạn %s",
		subjectID, created.ID, pt.Classname, pt.Type, vehicle.ID, created.Expiration.Format("02/01/2006"))
	return created, nil
}

func (s *PermitService) MyPermits(ctx context.Context, subjectID string) ([]domain.Permit, error) {
	return s.permitRepo.FindByHolderID(ctx, subjectID)
}

// permitDuration suy ra thời hạn từ nhãn chu kỳ tính phí của permit type.
func permitDuration(typeName string) time.Duration {
	switch strings.ToLower(typeName) {
	case "day":
		return 24 * time.Hour
	case "week":
		return 7 * 24 * time.Hour
	case "month":
		return 30 * 24 * time.Hour
	case "year":
		return 365 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

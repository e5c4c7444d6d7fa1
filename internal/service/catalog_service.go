package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/repository"

	"github.com/google/uuid"
)

// Catalog rỗng khi listing được coi là lỗi cấu hình, không phải kết quả rỗng hợp lệ.
var ErrCatalogEmpty = errors.New("catalog permit type đang rỗng")
var ErrInvalidPrice = errors.New("giá không được âm")

// CatalogService sở hữu các bản ghi PermitType và các bất biến soft-delete/revive.
type CatalogService struct {
	typeRepo repository.PermitTypeRepository
}

func NewCatalogService(typeRepo repository.PermitTypeRepository) *CatalogService {
	return &CatalogService{typeRepo: typeRepo}
}

// CreateOrRevive tạo permit type mới cho cặp (classname, type), hoặc revive bản ghi
// soft-deleted nếu có. Nếu đã có bản ghi active cho cặp này thì trả về ErrDuplicateActive
// (ràng buộc cuối cùng do partial unique index trong DB bảo đảm, kể cả khi race).
func (s *CatalogService) CreateOrRevive(ctx context.Context, dto domain.CreatePermitTypeDTO) (*domain.PermitType, error) {
	classname := strings.TrimSpace(dto.Classname)
	typeName := strings.TrimSpace(dto.Type)
	if dto.Price < 0 {
		return nil, ErrInvalidPrice
	}

	deleted, err := s.typeRepo.FindDeletedByPair(ctx, classname, typeName)
	if err == nil {
		// Revive giữ nguyên identity cũ, chỉ xóa cờ deleted và ghi đè giá.
		revived, err := s.typeRepo.Revive(ctx, deleted.ID, dto.Price)
		if err != nil {
			return nil, fmt.Errorf("lỗi revive permit type (%s, %s): %w", classname, typeName, err)
		}
		log.Printf("Đã revive permit type %s (%s, %s) với giá mới %.2f", revived.ID, classname, typeName, dto.Price)
		return revived, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lỗi tìm bản ghi deleted cho (%s, %s): %w", classname, typeName, err)
	}

	pt := &domain.PermitType{
		ID:        uuid.NewString(),
		Classname: classname,
		Type:      typeName,
		Price:     dto.Price,
	}
	created, err := s.typeRepo.Create(ctx, pt)
	if err != nil {
		return nil, err
	}
	log.Printf("Đã tạo permit type %s (%s, %s) giá %.2f", created.ID, classname, typeName, dto.Price)
	return created, nil
}

// UpdatePrice chỉ áp dụng cho bản ghi active; id không tồn tại hoặc đã deleted
// đều là ErrNotFound. Hai lần update liên tiếp đều thành công, lần sau thắng.
func (s *CatalogService) UpdatePrice(ctx context.Context, id string, price float64) (*domain.PermitType, error) {
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	return s.typeRepo.UpdatePrice(ctx, id, price)
}

func (s *CatalogService) SoftDelete(ctx context.Context, id string) (*domain.PermitType, error) {
	return s.typeRepo.SoftDelete(ctx, id)
}

func (s *CatalogService) GetActiveByID(ctx context.Context, id string) (*domain.PermitType, error) {
	return s.typeRepo.FindActiveByID(ctx, id)
}

func (s *CatalogService) ListActive(ctx context.Context) ([]domain.PermitType, error) {
	types, err := s.typeRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, ErrCatalogEmpty
	}
	return types, nil
}

func (s *CatalogService) ListAll(ctx context.Context) ([]domain.PermitType, error) {
	types, err := s.typeRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return nil, ErrCatalogEmpty
	}
	return types, nil
}

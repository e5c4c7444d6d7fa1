package handler

import (
	"errors"
	"net/http"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/repository"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type PermitTypeHandler struct {
	catalogService *service.CatalogService
}

func NewPermitTypeHandler(cs *service.CatalogService) *PermitTypeHandler {
	return &PermitTypeHandler{catalogService: cs}
}

// POST /permit-types
func (h *PermitTypeHandler) CreateOrRevive(c *gin.Context) {
	var dto domain.CreatePermitTypeDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	pt, err := h.catalogService.CreateOrRevive(c.Request.Context(), dto)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateActive) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, service.ErrInvalidPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo permit type", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, pt)
}

// PUT /permit-types/:id/price
func (h *PermitTypeHandler) UpdatePrice(c *gin.Context) {
	var dto domain.UpdatePermitPriceDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	pt, err := h.catalogService.UpdatePrice(c.Request.Context(), c.Param("id"), dto.Price)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy permit type đang hoạt động với id này"})
			return
		}
		if errors.Is(err, service.ErrInvalidPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật giá", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pt)
}

// DELETE /permit-types/:id
func (h *PermitTypeHandler) SoftDelete(c *gin.Context) {
	pt, err := h.catalogService.SoftDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyDeleted) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy permit type"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa permit type", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pt)
}

// GET /permit-types/active/:id
func (h *PermitTypeHandler) GetActiveByID(c *gin.Context) {
	pt, err := h.catalogService.GetActiveByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy permit type"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy permit type"})
		return
	}
	c.JSON(http.StatusOK, pt)
}

// GET /permit-types/active
func (h *PermitTypeHandler) ListActive(c *gin.Context) {
	types, err := h.catalogService.ListActive(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrCatalogEmpty) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách permit type"})
		return
	}
	c.JSON(http.StatusOK, types)
}

// GET /permit-types
func (h *PermitTypeHandler) ListAll(c *gin.Context) {
	types, err := h.catalogService.ListAll(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrCatalogEmpty) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách permit type"})
		return
	}
	c.JSON(http.StatusOK, types)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/AspectOfMagic/Parkwise-sub001/internal/api/middleware"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/client"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/repository"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

type PermitHandler struct {
	permitService *service.PermitService
}

func NewPermitHandler(ps *service.PermitService) *PermitHandler {
	return &PermitHandler{permitService: ps}
}

// POST /vehicles
func (h *PermitHandler) RegisterVehicle(c *gin.Context) {
	var dto domain.RegisterVehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	vehicle, err := h.permitService.RegisterVehicle(c.Request.Context(), middleware.SubjectID(c), dto)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đăng ký vehicle", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// GET /vehicles
func (h *PermitHandler) MyVehicles(c *gin.Context) {
	vehicles, err := h.permitService.MyVehicles(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách vehicle"})
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// POST /permits/checkout
func (h *PermitHandler) Checkout(c *gin.Context) {
	var dto domain.PermitCheckoutDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	permit, err := h.permitService.Checkout(c.Request.Context(), middleware.SubjectID(c), dto)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotVehicleOwner), errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy vehicle hoặc permit type"})
		case errors.Is(err, client.ErrUpstream):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway tạm thời không khả dụng"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể mua permit", "details": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, permit)
}

// GET /permits
func (h *PermitHandler) MyPermits(c *gin.Context) {
	permits, err := h.permitService.MyPermits(c.Request.Context(), middleware.SubjectID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách permit"})
		return
	}
	c.JSON(http.StatusOK, permits)
}

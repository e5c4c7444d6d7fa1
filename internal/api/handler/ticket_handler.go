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

type TicketHandler struct {
	ticketService *service.TicketService
}

func NewTicketHandler(ts *service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ts}
}

// POST /tickets
func (h *TicketHandler) MakeTicket(c *gin.Context) {
	var dto domain.MakeTicketDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	ticket, err := h.ticketService.MakeTicket(c.Request.Context(), dto)
	if err != nil {
		h.writeError(c, err, "Không thể lập vé phạt")
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

// POST /tickets/:id/pay
func (h *TicketHandler) PayTicket(c *gin.Context) {
	ticket, err := h.ticketService.PayTicket(c.Request.Context(), middleware.SubjectID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Không thể thanh toán vé phạt")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// POST /tickets/:id/challenge
func (h *TicketHandler) ChallengeTicket(c *gin.Context) {
	var dto domain.ChallengeTicketDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dữ liệu không hợp lệ: " + err.Error()})
		return
	}

	ticket, err := h.ticketService.ChallengeTicket(c.Request.Context(), middleware.SubjectID(c), c.Param("id"), dto.Description)
	if err != nil {
		h.writeError(c, err, "Không thể khiếu nại vé phạt")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// POST /tickets/:id/accept
func (h *TicketHandler) AcceptChallenge(c *gin.Context) {
	ticket, err := h.ticketService.AcceptChallenge(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Không thể chấp nhận khiếu nại")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// POST /tickets/:id/deny
func (h *TicketHandler) DenyChallenge(c *gin.Context) {
	ticket, err := h.ticketService.DenyChallenge(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Không thể từ chối khiếu nại")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GET /tickets/challenged
func (h *TicketHandler) GetChallenges(c *gin.Context) {
	tickets, err := h.ticketService.GetChallenges(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoChallenges) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Lỗi khi lấy danh sách khiếu nại"})
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// GET /tickets/:id
func (h *TicketHandler) GetTicketByID(c *gin.Context) {
	ticket, err := h.ticketService.GetTicketByID(c.Request.Context(), middleware.SubjectID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err, "Lỗi khi lấy vé phạt")
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// GET /tickets?vehicleId=...
func (h *TicketHandler) GetTickets(c *gin.Context) {
	vehicleID := c.Query("vehicleId")
	if vehicleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu tham số vehicleId"})
		return
	}

	tickets, err := h.ticketService.GetTicketsByVehicle(c.Request.Context(), middleware.SubjectID(c), vehicleID)
	if err != nil {
		h.writeError(c, err, "Lỗi khi lấy danh sách vé phạt")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

// writeError ánh xạ sentinel error của tầng dưới sang HTTP status.
// ErrNotVehicleOwner trả về 404 thay vì 403 để không lộ sự tồn tại của ticket.
func (h *TicketHandler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotVehicleOwner), errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy vé phạt"})
	case errors.Is(err, repository.ErrInvalidState):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, client.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Dịch vụ bên ngoài tạm thời không khả dụng"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback, "details": err.Error()})
	}
}

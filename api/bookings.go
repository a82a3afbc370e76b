package api

import (
	"net/http"
	"time"

	"github.com/divinecircle/poojabook/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookingCreatedResponse struct {
	ID            int64  `json:"id"`
	PaymentStatus string `json:"payment_status"`
	CreatedAt     string `json:"created_at"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/bookings", h.create)
	router.POST("/contact", h.contact)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req booking.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bookingCreatedResponse{
		ID:            created.ID,
		PaymentStatus: string(created.PaymentStatus),
		CreatedAt:     created.CreatedAt.Format(time.RFC3339),
	})
}

func (h *BookingHandler) contact(c *gin.Context) {
	var req booking.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	msg, err := h.service.SubmitContact(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"id":         msg.ID,
		"created_at": msg.CreatedAt.Format(time.RFC3339),
	})
}

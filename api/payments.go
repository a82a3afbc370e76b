package api

import (
	"net/http"

	"github.com/divinecircle/poojabook/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
}

func NewPaymentHandler(service payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/order", h.createOrder)
	router.POST("/confirm", h.confirm)
}

func (h *PaymentHandler) createOrder(c *gin.Context) {
	var req payment.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	order, err := h.service.CreateOrder(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *PaymentHandler) confirm(c *gin.Context) {
	var req payment.ConfirmInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if req.BookingID == 0 || req.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing booking_id or order_id"})
		return
	}

	booking, err := h.service.Confirm(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"payment_status": string(booking.PaymentStatus),
	})
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/divinecircle/poojabook/internal/domain"
	"github.com/divinecircle/poojabook/internal/service/events"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service events.EventUseCase
}

type eventSummary struct {
	ID        int64   `json:"id"`
	Date      string  `json:"date"`
	Title     string  `json:"title"`
	PoojaType string  `json:"pooja_type"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type slotResponse struct {
	ID          int64   `json:"id"`
	StartTime   string  `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Capacity    int     `json:"capacity"`
	BookedCount int     `json:"booked_count"`
	Remaining   int     `json:"remaining"`
}

type eventDetailResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	PoojaType   string         `json:"pooja_type"`
	Samagri     string         `json:"samagri"`
	Description string         `json:"description"`
	StartTime   *string        `json:"start_time"`
	EndTime     *string        `json:"end_time"`
	Slots       []slotResponse `json:"slots"`
}

func NewEventHandler(service events.EventUseCase) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.listMonth)
	router.GET("/:date", h.listDate)
}

func (h *EventHandler) listMonth(c *gin.Context) {
	now := time.Now()
	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil || month < 1 || month > 12 {
		year, month = now.Year(), int(now.Month())
	}

	view, err := h.service.ListMonth(c.Request.Context(), year, month)
	if err != nil {
		writeError(c, err)
		return
	}

	summaries := make([]eventSummary, 0, len(view.Events))
	for _, e := range view.Events {
		summaries = append(summaries, toSummary(e))
	}
	c.JSON(http.StatusOK, gin.H{
		"events":             summaries,
		"remaining_per_date": view.RemainingPerDate,
	})
}

func (h *EventHandler) listDate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date"})
		return
	}

	details, err := h.service.ListDate(c.Request.Context(), date)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]eventDetailResponse, 0, len(details))
	for _, d := range details {
		slots := make([]slotResponse, 0, len(d.Slots))
		for _, s := range d.Slots {
			slots = append(slots, slotResponse{
				ID:          s.ID,
				StartTime:   s.StartTime,
				EndTime:     s.EndTime,
				Capacity:    s.Capacity,
				BookedCount: s.BookedCount,
				Remaining:   s.Remaining(),
			})
		}
		out = append(out, eventDetailResponse{
			ID:          d.Event.ID,
			Title:       d.Event.Title,
			PoojaType:   d.Event.PoojaType,
			Samagri:     d.Event.Samagri,
			Description: d.Event.Description,
			StartTime:   d.Event.StartTime,
			EndTime:     d.Event.EndTime,
			Slots:       slots,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"date":   date.Format("2006-01-02"),
		"events": out,
	})
}

func toSummary(e domain.Event) eventSummary {
	return eventSummary{
		ID:        e.ID,
		Date:      e.Date.Format("2006-01-02"),
		Title:     e.Title,
		PoojaType: e.PoojaType,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
	}
}

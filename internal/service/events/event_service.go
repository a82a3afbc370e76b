package events

import (
	"context"
	"time"

	"github.com/divinecircle/poojabook/internal/domain"
	"github.com/divinecircle/poojabook/internal/repository"
)

type EventUseCase interface {
	ListMonth(ctx context.Context, year, month int) (*domain.MonthView, error)
	ListDate(ctx context.Context, date time.Time) ([]domain.EventDetail, error)
}

// Cache holds the month availability view. Everything it serves is
// advisory and may lag concurrent reservations.
type Cache interface {
	GetMonthView(ctx context.Context, year, month int) (*domain.MonthView, error)
	SetMonthView(ctx context.Context, year, month int, view *domain.MonthView) error
	InvalidateMonth(ctx context.Context, year, month int) error
}

type EventService struct {
	repo  repository.EventRepository
	cache Cache
}

func NewEventService(repo repository.EventRepository, cache Cache) *EventService {
	return &EventService{repo: repo, cache: cache}
}

func (s *EventService) ListMonth(ctx context.Context, year, month int) (*domain.MonthView, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetMonthView(ctx, year, month); err == nil && cached != nil {
			return cached, nil
		}
	}

	events, err := s.repo.ListMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	remaining, err := s.repo.RemainingByDate(ctx, year, month)
	if err != nil {
		return nil, err
	}

	view := &domain.MonthView{Events: events, RemainingPerDate: remaining}
	if s.cache != nil {
		_ = s.cache.SetMonthView(ctx, year, month, view)
	}
	return view, nil
}

func (s *EventService) ListDate(ctx context.Context, date time.Time) ([]domain.EventDetail, error) {
	events, err := s.repo.ListDate(ctx, date)
	if err != nil {
		return nil, err
	}

	details := make([]domain.EventDetail, 0, len(events))
	for _, e := range events {
		slots, err := s.repo.SlotsForEvent(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, domain.EventDetail{Event: e, Slots: slots})
	}
	return details, nil
}

var _ EventUseCase = (*EventService)(nil)

package booking

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/divinecircle/poojabook/internal/domain"
	"github.com/divinecircle/poojabook/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	SubmitContact(ctx context.Context, input ContactInput) (*domain.ContactMessage, error)
}

type CreateBookingInput struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Message       string `json:"message"`
	EventID       *int64 `json:"event_id"`
	SlotID        *int64 `json:"slot_id"`
	PreferredDate string `json:"preferred_date"`
	PreferredSlot string `json:"preferred_slot"`
	PoojaType     string `json:"pooja_type"`
}

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type BookingService struct {
	bookings repository.BookingRepository
	events   repository.EventRepository
	slots    repository.SlotRepository
}

func NewBookingService(bookings repository.BookingRepository, events repository.EventRepository, slots repository.SlotRepository) *BookingService {
	return &BookingService{bookings: bookings, events: events, slots: slots}
}

// CreateBooking validates the request and persists it unpaid. The
// remaining-capacity check here is advisory only: the authoritative gate
// is the ledger reservation at confirmation time.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	input.normalize()

	if input.Name == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}

	if _, _, err := s.validateTarget(ctx, input.EventID, input.SlotID); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		EventID:       input.EventID,
		SlotID:        input.SlotID,
		Name:          input.Name,
		Email:         input.Email,
		Phone:         input.Phone,
		Message:       input.Message,
		PreferredDate: input.PreferredDate,
		PreferredSlot: input.PreferredSlot,
		PoojaType:     input.PoojaType,
		Currency:      "USD",
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) SubmitContact(ctx context.Context, input ContactInput) (*domain.ContactMessage, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Message = strings.TrimSpace(input.Message)

	if input.Name == "" || input.Email == "" || input.Message == "" {
		return nil, fmt.Errorf("%w: name, email and message are required", domain.ErrValidation)
	}

	msg := &domain.ContactMessage{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Message: input.Message,
	}
	if err := s.bookings.CreateContact(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// validateTarget is the single validation path for an optional event and
// slot pair: the slot must exist, be active, belong to the supplied event
// when one was given, and still show remaining capacity.
func (s *BookingService) validateTarget(ctx context.Context, eventID, slotID *int64) (*domain.Event, *domain.Slot, error) {
	var event *domain.Event
	if eventID != nil {
		var err error
		event, err = s.events.GetByID(ctx, *eventID)
		if err != nil {
			return nil, nil, err
		}
	}

	var slot *domain.Slot
	if slotID != nil {
		var err error
		slot, err = s.slots.GetByID(ctx, *slotID)
		if err != nil {
			return nil, nil, err
		}
		if !slot.IsActive {
			return nil, nil, domain.ErrNotFound
		}
		if event != nil && slot.EventID != event.ID {
			return nil, nil, fmt.Errorf("%w: slot does not belong to selected event", domain.ErrValidation)
		}
		if slot.Remaining() == 0 {
			return nil, nil, fmt.Errorf("%w: selected slot is fully booked", domain.ErrValidation)
		}
	}
	return event, slot, nil
}

func (in *CreateBookingInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	in.PreferredDate = strings.TrimSpace(in.PreferredDate)
	in.PreferredSlot = strings.TrimSpace(in.PreferredSlot)
	in.PoojaType = strings.TrimSpace(in.PoojaType)
}

var _ BookingUseCase = (*BookingService)(nil)

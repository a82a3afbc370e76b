package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/divinecircle/poojabook/config"
	"github.com/divinecircle/poojabook/internal/domain"
	"github.com/divinecircle/poojabook/internal/fx"
	"github.com/divinecircle/poojabook/internal/gateway"
	"github.com/divinecircle/poojabook/internal/kafka"
	"github.com/divinecircle/poojabook/internal/repository"
	"github.com/divinecircle/poojabook/internal/service/booking"
	"github.com/divinecircle/poojabook/internal/service/events"
	"github.com/google/uuid"
)

type PaymentUseCase interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderOutput, error)
	Confirm(ctx context.Context, input ConfirmInput) (*domain.Booking, error)
}

type CreateOrderInput struct {
	booking.CreateBookingInput
	Currency string `json:"currency"`
	Provider string `json:"provider"`
}

type OrderOutput struct {
	BookingID   int64  `json:"booking_id"`
	OrderID     string `json:"order_id"`
	Provider    string `json:"provider"`
	Amount      string `json:"amount"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

type ConfirmInput struct {
	BookingID int64  `json:"booking_id"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// Gateways resolves a provider by name. *gateway.Selector satisfies it.
type Gateways interface {
	Get(name string) (gateway.PaymentGateway, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// PaymentService drives the two-phase protocol: open a provider-side
// order for an unpaid booking, then on the provider's confirmation commit
// slot reservation and paid status as one transaction. No gateway call
// ever runs inside that transaction.
type PaymentService struct {
	bookings booking.BookingUseCase
	repo     repository.BookingRepository
	events   repository.EventRepository
	gateways Gateways
	fx       fx.Converter
	pricing  config.PricingConfig

	cache              events.Cache
	producer           Producer
	notificationsTopic string
}

type PaymentServiceOption func(*PaymentService)

func WithCache(c events.Cache) PaymentServiceOption {
	return func(s *PaymentService) { s.cache = c }
}

func WithNotifications(p Producer, topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.producer = p
		s.notificationsTopic = topic
	}
}

func NewPaymentService(
	bookings booking.BookingUseCase,
	repo repository.BookingRepository,
	eventRepo repository.EventRepository,
	gateways Gateways,
	converter fx.Converter,
	pricing config.PricingConfig,
	opts ...PaymentServiceOption,
) *PaymentService {
	service := &PaymentService{
		bookings: bookings,
		repo:     repo,
		events:   eventRepo,
		gateways: gateways,
		fx:       converter,
		pricing:  pricing,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateOrder persists the booking unpaid, then opens the provider-side
// order. A gateway rejection leaves the unpaid row behind and touches no
// capacity.
func (s *PaymentService) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderOutput, error) {
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	gw, err := s.gateways.Get(input.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	amountMinor, err := s.amountMinor(ctx, currency)
	if err != nil {
		return nil, err
	}

	created, err := s.bookings.CreateBooking(ctx, input.CreateBookingInput)
	if err != nil {
		return nil, err
	}

	order, err := gw.CreateOrder(ctx, gateway.CreateOrderInput{
		AmountMinor: amountMinor,
		Currency:    currency,
		Receipt:     uuid.NewString(),
		Description: "Pooja booking " + created.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrGateway, err)
	}

	if err := s.repo.AttachOrder(ctx, created.ID, gw.Name(), order.ID, amountMinor, currency); err != nil {
		return nil, err
	}

	return &OrderOutput{
		BookingID:   created.ID,
		OrderID:     order.ID,
		Provider:    gw.Name(),
		Amount:      gateway.DecimalValue(amountMinor, currency),
		AmountMinor: amountMinor,
		Currency:    currency,
	}, nil
}

// Confirm verifies the payment with the provider and, on success, commits
// slot reservation and paid status atomically. A repeated callback for an
// already paid booking is a no-op. A slot that filled up between order
// creation and confirmation surfaces as ErrCapacityConflict: money has
// moved but capacity cannot be granted, so the booking stays unpaid for
// manual reconciliation.
func (s *PaymentService) Confirm(ctx context.Context, input ConfirmInput) (*domain.Booking, error) {
	b, err := s.repo.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Paid() {
		return b, nil
	}
	if b.GatewayOrderID == "" {
		return nil, fmt.Errorf("%w: booking has no payment order", domain.ErrValidation)
	}
	if input.OrderID != "" && input.OrderID != b.GatewayOrderID {
		return nil, fmt.Errorf("%w: order id does not match booking", domain.ErrValidation)
	}

	gw, err := s.gateways.Get(b.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	result, err := gw.Confirm(ctx, gateway.Proof{
		OrderID:   b.GatewayOrderID,
		PaymentID: input.PaymentID,
		Signature: input.Signature,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrGateway, err)
	}
	if !result.Verified {
		return nil, fmt.Errorf("%w: provider status %s", domain.ErrPaymentNotVerified, result.Status)
	}

	paymentID := result.PaymentID
	if paymentID == "" {
		paymentID = input.PaymentID
	}

	updated, err := s.repo.ConfirmPaid(ctx, b.ID, paymentID, input.Signature)
	if err != nil {
		if errors.Is(err, domain.ErrSlotFull) {
			return nil, domain.ErrCapacityConflict
		}
		return nil, err
	}

	s.afterConfirm(ctx, updated)
	return updated, nil
}

// afterConfirm runs the best-effort side effects. Failures are logged and
// never affect the already committed confirmation.
func (s *PaymentService) afterConfirm(ctx context.Context, b *domain.Booking) {
	if s.producer != nil && s.notificationsTopic != "" {
		event := kafka.BookingEvent{
			Type:          "booking_confirmed",
			BookingID:     b.ID,
			EventID:       b.EventID,
			SlotID:        b.SlotID,
			Name:          b.Name,
			Email:         b.Email,
			Phone:         b.Phone,
			PoojaType:     b.PoojaType,
			PreferredDate: b.PreferredDate,
			PreferredSlot: b.PreferredSlot,
			AmountMinor:   b.AmountMinor,
			Currency:      b.Currency,
			Provider:      b.Provider,
			PaymentStatus: string(b.PaymentStatus),
			CreatedAt:     b.CreatedAt,
		}
		if err := s.producer.Publish(ctx, s.notificationsTopic, fmt.Sprintf("booking-%d", b.ID), event); err != nil {
			log.Printf("publish booking_confirmed for booking %d: %v", b.ID, err)
		}
	}

	if s.cache != nil && b.EventID != nil {
		if ev, err := s.events.GetByID(ctx, *b.EventID); err == nil {
			_ = s.cache.InvalidateMonth(ctx, ev.Date.Year(), int(ev.Date.Month()))
		}
	}
}

func (s *PaymentService) amountMinor(ctx context.Context, currency string) (int64, error) {
	base := s.pricing.BaseUSD
	if base <= 0 {
		return 0, fmt.Errorf("base price is not configured")
	}

	amount := base
	if currency != "USD" {
		converted, err := s.fx.Convert(ctx, base, "USD", currency)
		if err != nil || converted <= 0 {
			rate := s.pricing.FallbackRates[currency]
			if rate <= 0 {
				return 0, fmt.Errorf("%w: unsupported currency %s", domain.ErrValidation, currency)
			}
			log.Printf("fx lookup unavailable for %s, using fallback rate %.4f", currency, rate)
			converted = base * rate
		}
		amount = converted
	}
	return gateway.MinorUnits(amount, currency), nil
}

var _ PaymentUseCase = (*PaymentService)(nil)

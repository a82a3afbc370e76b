package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/divinecircle/poojabook/config"
	"github.com/divinecircle/poojabook/internal/domain"
	"github.com/divinecircle/poojabook/internal/gateway"
	"github.com/divinecircle/poojabook/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) SubmitContact(ctx context.Context, input booking.ContactInput) (*domain.ContactMessage, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactMessage), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) AttachOrder(ctx context.Context, id int64, provider, orderID string, amountMinor int64, currency string) error {
	args := m.Called(ctx, id, provider, orderID, amountMinor, currency)
	return args.Error(0)
}

func (m *MockBookingRepository) ConfirmPaid(ctx context.Context, id int64, paymentID, signature string) (*domain.Booking, error) {
	args := m.Called(ctx, id, paymentID, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) PurgeUnpaidBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) CreateContact(ctx context.Context, msg *domain.ContactMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Name() string { return "mockpay" }

func (m *MockGateway) CreateOrder(ctx context.Context, input gateway.CreateOrderInput) (*gateway.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Order), args.Error(1)
}

func (m *MockGateway) Confirm(ctx context.Context, proof gateway.Proof) (*gateway.Result, error) {
	args := m.Called(ctx, proof)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Result), args.Error(1)
}

type stubGateways struct {
	gw  gateway.PaymentGateway
	err error
}

func (s *stubGateways) Get(name string) (gateway.PaymentGateway, error) {
	return s.gw, s.err
}

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, amount float64, from, to string) (float64, error) {
	args := m.Called(ctx, amount, from, to)
	return args.Get(0).(float64), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func ptrInt64(v int64) *int64 { return &v }

func newService(bookings *MockBookingUseCase, repo *MockBookingRepository, gw gateway.PaymentGateway, converter *MockConverter, opts ...PaymentServiceOption) *PaymentService {
	pricing := config.PricingConfig{
		BaseUSD:       99.0,
		FallbackRates: map[string]float64{"INR": 83.0},
	}
	return NewPaymentService(bookings, repo, nil, &stubGateways{gw: gw}, converter, pricing, opts...)
}

func TestPaymentService_CreateOrder_USDMinorUnits(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	created := &domain.Booking{ID: 7, Name: "Asha", Email: "asha@example.com"}

	mockBookings.On("CreateBooking", ctx, mock.Anything).Return(created, nil).Once()
	mockGw.On("CreateOrder", ctx, mock.MatchedBy(func(in gateway.CreateOrderInput) bool {
		return in.AmountMinor == 9900 && in.Currency == "USD" && in.Receipt != ""
	})).Return(&gateway.Order{ID: "order-1", Provider: "mockpay"}, nil).Once()
	mockRepo.On("AttachOrder", ctx, int64(7), "mockpay", "order-1", int64(9900), "USD").Return(nil).Once()

	out, err := service.CreateOrder(ctx, CreateOrderInput{
		CreateBookingInput: booking.CreateBookingInput{Name: "Asha", Email: "asha@example.com"},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(9900), out.AmountMinor)
	assert.Equal(t, "99.00", out.Amount)
	assert.Equal(t, "order-1", out.OrderID)

	mockBookings.AssertExpectations(t)
	mockGw.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
	mockFx.AssertNotCalled(t, "Convert")
}

func TestPaymentService_CreateOrder_ZeroDecimalCurrency(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	created := &domain.Booking{ID: 8, Name: "Kenji", Email: "kenji@example.com"}

	mockFx.On("Convert", ctx, 99.0, "USD", "JPY").Return(30.0, nil).Once()
	mockBookings.On("CreateBooking", ctx, mock.Anything).Return(created, nil).Once()
	// 30 JPY stays 30, never multiplied by 100
	mockGw.On("CreateOrder", ctx, mock.MatchedBy(func(in gateway.CreateOrderInput) bool {
		return in.AmountMinor == 30 && in.Currency == "JPY"
	})).Return(&gateway.Order{ID: "order-jp", Provider: "mockpay"}, nil).Once()
	mockRepo.On("AttachOrder", ctx, int64(8), "mockpay", "order-jp", int64(30), "JPY").Return(nil).Once()

	out, err := service.CreateOrder(ctx, CreateOrderInput{
		CreateBookingInput: booking.CreateBookingInput{Name: "Kenji", Email: "kenji@example.com"},
		Currency:           "JPY",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(30), out.AmountMinor)
	assert.Equal(t, "30", out.Amount)

	mockFx.AssertExpectations(t)
	mockGw.AssertExpectations(t)
}

func TestPaymentService_CreateOrder_FXFallbackRate(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	created := &domain.Booking{ID: 9, Name: "Ravi", Email: "ravi@example.com"}

	mockFx.On("Convert", ctx, 99.0, "USD", "INR").Return(0.0, errors.New("rate service down")).Once()
	mockBookings.On("CreateBooking", ctx, mock.Anything).Return(created, nil).Once()
	// 99 * 83.0 fallback = 8217.00 INR -> 821700 paise
	mockGw.On("CreateOrder", ctx, mock.MatchedBy(func(in gateway.CreateOrderInput) bool {
		return in.AmountMinor == 821700 && in.Currency == "INR"
	})).Return(&gateway.Order{ID: "order-in", Provider: "mockpay"}, nil).Once()
	mockRepo.On("AttachOrder", ctx, int64(9), "mockpay", "order-in", int64(821700), "INR").Return(nil).Once()

	out, err := service.CreateOrder(ctx, CreateOrderInput{
		CreateBookingInput: booking.CreateBookingInput{Name: "Ravi", Email: "ravi@example.com"},
		Currency:           "INR",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(821700), out.AmountMinor)

	mockFx.AssertExpectations(t)
}

func TestPaymentService_CreateOrder_UnsupportedCurrency(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	mockFx.On("Convert", ctx, 99.0, "USD", "XTS").Return(0.0, errors.New("no rate")).Once()

	out, err := service.CreateOrder(ctx, CreateOrderInput{
		CreateBookingInput: booking.CreateBookingInput{Name: "A", Email: "a@example.com"},
		Currency:           "XTS",
	})

	assert.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrValidation)
	mockBookings.AssertNotCalled(t, "CreateBooking")
	mockGw.AssertNotCalled(t, "CreateOrder")
}

func TestPaymentService_CreateOrder_GatewayRejected(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	created := &domain.Booking{ID: 11, Name: "Dev", Email: "dev@example.com"}

	mockBookings.On("CreateBooking", ctx, mock.Anything).Return(created, nil).Once()
	mockGw.On("CreateOrder", ctx, mock.Anything).Return(nil, errors.New("provider rejected")).Once()

	out, err := service.CreateOrder(ctx, CreateOrderInput{
		CreateBookingInput: booking.CreateBookingInput{Name: "Dev", Email: "dev@example.com"},
	})

	assert.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrGateway)
	// the unpaid booking row stays behind, no order attached
	mockRepo.AssertNotCalled(t, "AttachOrder")
}

func TestPaymentService_Confirm_Success(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}
	mockProducer := &MockProducer{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx,
		WithNotifications(mockProducer, "booking.notifications"))

	ctx := context.Background()
	unpaid := &domain.Booking{
		ID:             3,
		SlotID:         ptrInt64(42),
		Name:           "Asha",
		Email:          "asha@example.com",
		PaymentStatus:  domain.PaymentStatusUnpaid,
		Provider:       "mockpay",
		GatewayOrderID: "order-3",
	}
	paid := &domain.Booking{
		ID:               3,
		SlotID:           ptrInt64(42),
		Name:             "Asha",
		Email:            "asha@example.com",
		PaymentStatus:    domain.PaymentStatusPaid,
		Provider:         "mockpay",
		GatewayOrderID:   "order-3",
		GatewayPaymentID: "pay-3",
	}

	mockRepo.On("GetByID", ctx, int64(3)).Return(unpaid, nil).Once()
	mockGw.On("Confirm", ctx, gateway.Proof{OrderID: "order-3", PaymentID: "pay-3", Signature: "sig"}).
		Return(&gateway.Result{Verified: true, Status: "completed", PaymentID: "pay-3"}, nil).Once()
	mockRepo.On("ConfirmPaid", ctx, int64(3), "pay-3", "sig").Return(paid, nil).Once()
	mockProducer.On("Publish", ctx, "booking.notifications", "booking-3", mock.Anything).Return(nil).Once()

	got, err := service.Confirm(ctx, ConfirmInput{BookingID: 3, OrderID: "order-3", PaymentID: "pay-3", Signature: "sig"})

	assert.NoError(t, err)
	assert.True(t, got.Paid())

	mockRepo.AssertExpectations(t)
	mockGw.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestPaymentService_Confirm_AlreadyPaidIsIdempotent(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	paid := &domain.Booking{ID: 4, PaymentStatus: domain.PaymentStatusPaid, Provider: "mockpay", GatewayOrderID: "order-4"}

	mockRepo.On("GetByID", ctx, int64(4)).Return(paid, nil).Once()

	got, err := service.Confirm(ctx, ConfirmInput{BookingID: 4, OrderID: "order-4"})

	assert.NoError(t, err)
	assert.True(t, got.Paid())
	mockGw.AssertNotCalled(t, "Confirm")
	mockRepo.AssertNotCalled(t, "ConfirmPaid")
}

func TestPaymentService_Confirm_NotVerified(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	unpaid := &domain.Booking{ID: 5, PaymentStatus: domain.PaymentStatusUnpaid, Provider: "mockpay", GatewayOrderID: "order-5"}

	mockRepo.On("GetByID", ctx, int64(5)).Return(unpaid, nil).Once()
	mockGw.On("Confirm", ctx, mock.Anything).Return(&gateway.Result{Verified: false, Status: "failed"}, nil).Once()

	got, err := service.Confirm(ctx, ConfirmInput{BookingID: 5, OrderID: "order-5"})

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrPaymentNotVerified)
	mockRepo.AssertNotCalled(t, "ConfirmPaid")
}

func TestPaymentService_Confirm_GatewayError(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	unpaid := &domain.Booking{ID: 6, PaymentStatus: domain.PaymentStatusUnpaid, Provider: "mockpay", GatewayOrderID: "order-6"}

	mockRepo.On("GetByID", ctx, int64(6)).Return(unpaid, nil).Once()
	mockGw.On("Confirm", ctx, mock.Anything).Return(nil, errors.New("network")).Once()

	got, err := service.Confirm(ctx, ConfirmInput{BookingID: 6, OrderID: "order-6"})

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrGateway)
	mockRepo.AssertNotCalled(t, "ConfirmPaid")
}

func TestPaymentService_Confirm_CapacityConflict(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}
	mockProducer := &MockProducer{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx,
		WithNotifications(mockProducer, "booking.notifications"))

	ctx := context.Background()
	unpaid := &domain.Booking{ID: 12, SlotID: ptrInt64(42), PaymentStatus: domain.PaymentStatusUnpaid, Provider: "mockpay", GatewayOrderID: "order-12"}

	mockRepo.On("GetByID", ctx, int64(12)).Return(unpaid, nil).Once()
	mockGw.On("Confirm", ctx, mock.Anything).Return(&gateway.Result{Verified: true, Status: "completed", PaymentID: "pay-12"}, nil).Once()
	mockRepo.On("ConfirmPaid", ctx, int64(12), "pay-12", "").Return(nil, domain.ErrSlotFull).Once()

	got, err := service.Confirm(ctx, ConfirmInput{BookingID: 12, OrderID: "order-12"})

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrCapacityConflict)
	// no success notification for a failed assignment
	mockProducer.AssertNotCalled(t, "Publish")
}

func TestPaymentService_Confirm_OrderMismatch(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	unpaid := &domain.Booking{ID: 13, PaymentStatus: domain.PaymentStatusUnpaid, Provider: "mockpay", GatewayOrderID: "order-13"}

	mockRepo.On("GetByID", ctx, int64(13)).Return(unpaid, nil).Once()

	got, err := service.Confirm(ctx, ConfirmInput{BookingID: 13, OrderID: "order-other"})

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrValidation)
	mockGw.AssertNotCalled(t, "Confirm")
}

func TestPaymentService_Confirm_NotificationFailureIgnored(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}
	mockProducer := &MockProducer{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx,
		WithNotifications(mockProducer, "booking.notifications"))

	ctx := context.Background()
	unpaid := &domain.Booking{ID: 14, PaymentStatus: domain.PaymentStatusUnpaid, Provider: "mockpay", GatewayOrderID: "order-14"}
	paid := &domain.Booking{ID: 14, PaymentStatus: domain.PaymentStatusPaid, Provider: "mockpay", GatewayOrderID: "order-14"}

	mockRepo.On("GetByID", ctx, int64(14)).Return(unpaid, nil).Once()
	mockGw.On("Confirm", ctx, mock.Anything).Return(&gateway.Result{Verified: true, Status: "completed", PaymentID: "pay-14"}, nil).Once()
	mockRepo.On("ConfirmPaid", ctx, int64(14), "pay-14", "").Return(paid, nil).Once()
	mockProducer.On("Publish", ctx, "booking.notifications", "booking-14", mock.Anything).Return(errors.New("kafka down")).Once()

	got, err := service.Confirm(ctx, ConfirmInput{BookingID: 14, OrderID: "order-14"})

	assert.NoError(t, err)
	assert.True(t, got.Paid())
	mockProducer.AssertExpectations(t)
}

func TestPaymentService_Confirm_BookingNotFound(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	mockRepo.On("GetByID", ctx, int64(999)).Return(nil, domain.ErrNotFound).Once()

	got, err := service.Confirm(ctx, ConfirmInput{BookingID: 999, OrderID: "x"})

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPaymentService_Confirm_NoOrderAttached(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockRepo := &MockBookingRepository{}
	mockGw := &MockGateway{}
	mockFx := &MockConverter{}

	service := newService(mockBookings, mockRepo, mockGw, mockFx)

	ctx := context.Background()
	unpaid := &domain.Booking{ID: 15, PaymentStatus: domain.PaymentStatusUnpaid}

	mockRepo.On("GetByID", ctx, int64(15)).Return(unpaid, nil).Once()

	got, err := service.Confirm(ctx, ConfirmInput{BookingID: 15, OrderID: "order-15"})

	assert.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrValidation)
	mockGw.AssertNotCalled(t, "Confirm")
}

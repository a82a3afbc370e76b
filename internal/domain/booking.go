package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "no"
	PaymentStatusPaid   PaymentStatus = "yes"
)

const (
	ProviderPayPal   = "paypal"
	ProviderRazorpay = "razorpay"
)

// Booking references its event and slot weakly: deleting either leaves the
// booking behind with a null reference.
type Booking struct {
	ID            int64
	EventID       *int64
	SlotID        *int64
	Name          string
	Email         string
	Phone         string
	Message       string
	PreferredDate string
	PreferredSlot string
	PoojaType     string
	PaymentStatus PaymentStatus
	Provider      string
	// Gateway correlation, opaque strings.
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	AmountMinor      int64
	Currency         string
	CreatedAt        time.Time
}

func (b Booking) Paid() bool {
	return b.PaymentStatus == PaymentStatusPaid
}

type ContactMessage struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Message   string
	CreatedAt time.Time
}

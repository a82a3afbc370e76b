package gateway

import "context"

// CreateOrderInput describes a provider-side order to open. Amount is in
// the currency's minor units already.
type CreateOrderInput struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Description string
}

// Order is the provider-side session handle correlated to a booking.
type Order struct {
	ID       string
	Provider string
}

// Proof is the client-supplied evidence of payment. Which fields matter
// depends on the provider: PayPal needs only the order id (the capture
// call is the authoritative check), Razorpay needs payment id plus the
// signature over order|payment.
type Proof struct {
	OrderID   string
	PaymentID string
	Signature string
}

type Result struct {
	Verified  bool
	Status    string
	PaymentID string
}

// PaymentGateway is the external payment collaborator. Implementations
// must verify through the provider, never by trusting the caller.
type PaymentGateway interface {
	Name() string
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error)
	Confirm(ctx context.Context, proof Proof) (*Result, error)
}

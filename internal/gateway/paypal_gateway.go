package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/divinecircle/poojabook/config"
	"github.com/plutov/paypal/v4"
)

// PayPalGateway drives the wallet-style provider. Confirmation is a
// server-side capture call: the payment counts only when the provider
// reports COMPLETED.
type PayPalGateway struct {
	client *paypal.Client
}

func NewPayPalGateway(ctx context.Context, cfg config.PayPalConfig) (*PayPalGateway, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("paypal credentials are required")
	}

	base := paypal.APIBaseSandBox
	if cfg.Environment == "live" {
		base = paypal.APIBaseLive
	}

	client, err := paypal.NewClient(cfg.ClientID, cfg.ClientSecret, base)
	if err != nil {
		return nil, fmt.Errorf("create paypal client: %w", err)
	}
	if _, err := client.GetAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("paypal access token: %w", err)
	}

	return &PayPalGateway{client: client}, nil
}

func (g *PayPalGateway) Name() string { return "paypal" }

func (g *PayPalGateway) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	units := []paypal.PurchaseUnitRequest{
		{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: input.Currency,
				Value:    DecimalValue(input.AmountMinor, input.Currency),
			},
			Description: input.Description,
			CustomID:    input.Receipt,
		},
	}

	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("paypal create order: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("paypal returned an empty order id")
	}
	return &Order{ID: order.ID, Provider: g.Name()}, nil
}

func (g *PayPalGateway) Confirm(ctx context.Context, proof Proof) (*Result, error) {
	capture, err := g.client.CaptureOrder(ctx, proof.OrderID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, fmt.Errorf("paypal capture order: %w", err)
	}

	status := strings.ToUpper(capture.Status)
	res := &Result{
		Verified: status == "COMPLETED",
		Status:   status,
	}
	if len(capture.PurchaseUnits) > 0 && capture.PurchaseUnits[0].Payments != nil && len(capture.PurchaseUnits[0].Payments.Captures) > 0 {
		res.PaymentID = capture.PurchaseUnits[0].Payments.Captures[0].ID
	}
	return res, nil
}

var _ PaymentGateway = (*PayPalGateway)(nil)

package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/divinecircle/poojabook/config"
	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway drives the card/UPI provider. Confirmation verifies the
// HMAC signature Razorpay issues over "order_id|payment_id" and then
// fetches the payment to check its status; the client-side success flag is
// never trusted.
type RazorpayGateway struct {
	client    *razorpay.Client
	keySecret string
}

func NewRazorpayGateway(cfg config.RazorpayConfig) (*RazorpayGateway, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay credentials are required")
	}
	return &RazorpayGateway{
		client:    razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		keySecret: cfg.KeySecret,
	}, nil
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

func (g *RazorpayGateway) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	data := map[string]interface{}{
		"amount":   input.AmountMinor,
		"currency": input.Currency,
		"receipt":  input.Receipt,
	}
	if input.Description != "" {
		data["notes"] = map[string]interface{}{"description": input.Description}
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay returned an empty order id")
	}
	return &Order{ID: id, Provider: g.Name()}, nil
}

func (g *RazorpayGateway) Confirm(ctx context.Context, proof Proof) (*Result, error) {
	if !verifySignature(proof.OrderID, proof.PaymentID, proof.Signature, g.keySecret) {
		return &Result{Verified: false, Status: "signature_mismatch"}, nil
	}

	payment, err := g.client.Payment.Fetch(proof.PaymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay fetch payment: %w", err)
	}

	status, _ := payment["status"].(string)
	return &Result{
		Verified:  status == "captured" || status == "authorized",
		Status:    status,
		PaymentID: proof.PaymentID,
	}, nil
}

func verifySignature(orderID, paymentID, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

var _ PaymentGateway = (*RazorpayGateway)(nil)

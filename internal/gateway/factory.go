package gateway

import (
	"context"
	"fmt"

	"github.com/divinecircle/poojabook/config"
)

// Selector holds the configured provider clients, keyed by name. Built
// once at process start and injected into the payment service.
type Selector struct {
	gateways map[string]PaymentGateway
	fallback string
}

func NewSelector(ctx context.Context, cfg config.PaymentsConfig) (*Selector, error) {
	s := &Selector{
		gateways: make(map[string]PaymentGateway),
		fallback: cfg.DefaultProvider,
	}

	if cfg.PayPal.ClientID != "" {
		pp, err := NewPayPalGateway(ctx, cfg.PayPal)
		if err != nil {
			return nil, err
		}
		s.gateways[pp.Name()] = pp
	}
	if cfg.Razorpay.KeyID != "" {
		rz, err := NewRazorpayGateway(cfg.Razorpay)
		if err != nil {
			return nil, err
		}
		s.gateways[rz.Name()] = rz
	}

	if len(s.gateways) == 0 {
		return nil, fmt.Errorf("no payment gateway configured")
	}
	if s.fallback == "" {
		for name := range s.gateways {
			s.fallback = name
			break
		}
	}
	return s, nil
}

func (s *Selector) Get(name string) (PaymentGateway, error) {
	if name == "" {
		name = s.fallback
	}
	gw, ok := s.gateways[name]
	if !ok {
		return nil, fmt.Errorf("unknown payment provider %q", name)
	}
	return gw, nil
}

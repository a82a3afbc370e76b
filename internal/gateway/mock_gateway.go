package gateway

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// MockGateway is an in-memory provider for tests and local development.
// It records created orders and verifies any proof whose order id it has
// seen, unless told to fail.
type MockGateway struct {
	FailCreate  bool
	DenyConfirm bool

	mu     sync.Mutex
	orders map[string]CreateOrderInput
	seq    atomic.Int64
}

func NewMockGateway() *MockGateway {
	return &MockGateway{orders: make(map[string]CreateOrderInput)}
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) CreateOrder(ctx context.Context, input CreateOrderInput) (*Order, error) {
	if g.FailCreate {
		return nil, fmt.Errorf("mock gateway rejected order creation")
	}
	id := fmt.Sprintf("order_mock_%d", g.seq.Add(1))
	g.mu.Lock()
	g.orders[id] = input
	g.mu.Unlock()
	return &Order{ID: id, Provider: g.Name()}, nil
}

func (g *MockGateway) Confirm(ctx context.Context, proof Proof) (*Result, error) {
	g.mu.Lock()
	_, known := g.orders[proof.OrderID]
	g.mu.Unlock()

	if !known || g.DenyConfirm {
		return &Result{Verified: false, Status: "failed"}, nil
	}
	return &Result{Verified: true, Status: "completed", PaymentID: "pay_mock_" + proof.OrderID}, nil
}

var _ PaymentGateway = (*MockGateway)(nil)

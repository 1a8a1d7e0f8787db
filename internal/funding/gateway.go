package funding

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ChargeRequest is what the payment gateway needs to move money. Reference
// is the idempotency key: submitting the same reference twice must not
// charge twice.
type ChargeRequest struct {
	Reference string
	Amount    int64
	Currency  string
	DonorID   string
	ProjectID string
}

// ChargeResult reports a settled charge.
type ChargeResult struct {
	Reference string
	Provider  string
	// Demo marks charges settled by the simulated gateway rather than a
	// live provider; donations record a demo-completed status for them.
	Demo      bool
	ChargedAt time.Time
}

// Gateway is the payment collaborator. Implementations must be idempotent
// by reference: a retried charge for an already-settled reference returns
// the prior result without moving money again.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// SimulatedGateway is the demo-mode Paystack stand-in. It settles every
// well-formed charge after a configurable delay and remembers settled
// references so retries observe the idempotency contract the processor is
// written against.
type SimulatedGateway struct {
	delay time.Duration

	mu      sync.Mutex
	settled map[string]*ChargeResult
}

// NewSimulatedGateway builds a gateway that settles after the given delay.
func NewSimulatedGateway(delay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{delay: delay, settled: make(map[string]*ChargeResult)}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.Reference == "" {
		return nil, fmt.Errorf("charge: reference is required")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("charge: amount must be positive")
	}

	g.mu.Lock()
	if prior, ok := g.settled[req.Reference]; ok {
		g.mu.Unlock()
		return prior, nil
	}
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	result := &ChargeResult{
		Reference: req.Reference,
		Provider:  "paystack",
		Demo:      true,
		ChargedAt: time.Now(),
	}

	g.mu.Lock()
	if prior, ok := g.settled[req.Reference]; ok {
		result = prior
	} else {
		g.settled[req.Reference] = result
	}
	g.mu.Unlock()

	return result, nil
}

// NewPaymentReference generates a unique per-attempt transaction reference.
func NewPaymentReference() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("BACKED_%d_%s", time.Now().UnixMilli(), suffix)
}

// NewReceiptNumber generates a display receipt id.
func NewReceiptNumber() string {
	ms := time.Now().UnixMilli()
	return fmt.Sprintf("RCP-%08d", ms%100000000)
}

var _ Gateway = (*SimulatedGateway)(nil)

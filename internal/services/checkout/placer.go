package checkout

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"food-ordering/internal/models"
)

// ErrServiceUnavailable is the simulated network failure
var ErrServiceUnavailable = errors.New("network error: order service unavailable")

// Placer submits an order to the backend and returns the accepted order id
type Placer interface {
	PlaceOrder(ctx context.Context, order models.Order) (string, error)
}

// PlacerFunc adapts a function to Placer
type PlacerFunc func(ctx context.Context, order models.Order) (string, error)

func (f PlacerFunc) PlaceOrder(ctx context.Context, order models.Order) (string, error) {
	return f(ctx, order)
}

// SimulatedPlacer waits a network-like delay and fails at a fixed rate
type SimulatedPlacer struct {
	delay       time.Duration
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedPlacer creates a placer. A nil rng uses a time-seeded source.
func NewSimulatedPlacer(delay time.Duration, failureRate float64, rng *rand.Rand) *SimulatedPlacer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return &SimulatedPlacer{delay: delay, failureRate: failureRate, rng: rng}
}

func (p *SimulatedPlacer) PlaceOrder(ctx context.Context, order models.Order) (string, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	roll := p.rng.Float64()
	p.mu.Unlock()

	if roll < p.failureRate {
		return "", ErrServiceUnavailable
	}
	return order.ID, nil
}

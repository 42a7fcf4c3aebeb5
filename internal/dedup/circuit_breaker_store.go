package dedup

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"

	"bodgate/pkg/circuitbreaker"
)

// CircuitBreakerStore shields the request path from a misbehaving remote
// store. When the breaker is open, Add fails fast and the service applies
// its configured on_store_error fallback.
type CircuitBreakerStore struct {
	store Store
	cb    *circuitbreaker.Wrapper
}

func NewCircuitBreakerStore(store Store, cfg circuitbreaker.Config) *CircuitBreakerStore {
	return &CircuitBreakerStore{
		store: store,
		cb:    circuitbreaker.NewWrapper(cfg),
	}
}

func (s *CircuitBreakerStore) Add(ctx context.Context, id string) (bool, error) {
	result, err := s.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return s.store.Add(ctx, id)
	})

	s.cb.RecordRequest(err == nil)

	if err != nil {
		if s.cb.IsOpen() {
			return false, fmt.Errorf("circuit breaker is open for dedup store: %w", err)
		}
		return false, err
	}

	added, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("dedup store returned invalid result type")
	}

	return added, nil
}

func (s *CircuitBreakerStore) Len(ctx context.Context) (int, error) {
	result, err := s.cb.ExecuteWithContext(ctx, func() (interface{}, error) {
		return s.store.Len(ctx)
	})

	s.cb.RecordRequest(err == nil)

	if err != nil {
		if s.cb.IsOpen() {
			return 0, fmt.Errorf("circuit breaker is open for dedup store: %w", err)
		}
		return 0, err
	}

	size, ok := result.(int)
	if !ok {
		return 0, fmt.Errorf("dedup store returned invalid result type")
	}

	return size, nil
}

func (s *CircuitBreakerStore) State() gobreaker.State {
	return s.cb.State()
}

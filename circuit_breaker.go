package redis

import (
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/pior/redis/resp"
)

// CircuitBreakerState mirrors gobreaker's state (closed, half-open, open).
type CircuitBreakerState = gobreaker.State

// CircuitBreaker guards requests to a single server.
// *gobreaker.CircuitBreaker[*resp.Reply] satisfies this directly.
type CircuitBreaker interface {
	Execute(fn func() (*resp.Reply, error)) (*resp.Reply, error)
	State() CircuitBreakerState
}

// NewCircuitBreakerConfig returns a function that creates circuit breakers
// for servers, suitable for Config.NewCircuitBreaker.
// The breaker trips when at least 3 requests were seen and 60% of them
// failed within the interval.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(serverAddr string) CircuitBreaker {
	return func(serverAddr string) CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return gobreaker.NewCircuitBreaker[*resp.Reply](settings)
	}
}

package simulation

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/kjstillabower/mock-weather-service/internal/models"
)

// Injector decides the synthetic delay and whether a request fails.
type Injector interface {
	Latency() time.Duration
	Fail() bool
}

// Generator produces the random payload values.
type Generator interface {
	Temperature() int
	Condition() string
	RequestsToday() int
	ActiveUsers() int
}

// LatencyPolicy bounds the injected delay. Both ends are inclusive.
type LatencyPolicy struct {
	Min time.Duration
	Max time.Duration
}

// DefaultLatency is the 100ms-500ms window used when nothing is configured.
var DefaultLatency = LatencyPolicy{Min: 100 * time.Millisecond, Max: 500 * time.Millisecond}

// DefaultFailureRate is the probability of a simulated outage per weather request.
const DefaultFailureRate = 0.1

// Random implements Injector and Generator from a single random source.
// Safe for concurrent use.
type Random struct {
	mu          sync.Mutex
	rng         *rand.Rand
	latency     LatencyPolicy
	failureRate float64
}

// NewRandom returns a Random seeded from the runtime's entropy.
func NewRandom(latency LatencyPolicy, failureRate float64) *Random {
	return NewSeededRandom(rand.Uint64(), latency, failureRate)
}

// NewSeededRandom returns a Random with a deterministic sequence for the given seed.
func NewSeededRandom(seed uint64, latency LatencyPolicy, failureRate float64) *Random {
	if latency.Max < latency.Min {
		latency.Max = latency.Min
	}
	return &Random{
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		latency:     latency,
		failureRate: failureRate,
	}
}

// Latency returns a duration drawn uniformly from [Min, Max].
func (r *Random) Latency() time.Duration {
	span := int64(r.latency.Max - r.latency.Min)
	if span <= 0 {
		return r.latency.Min
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latency.Min + time.Duration(r.rng.Int64N(span+1))
}

// Fail reports true with probability failureRate.
func (r *Random) Fail() bool {
	if r.failureRate <= 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() < r.failureRate
}

// Temperature returns an integer in [MinTemperature, MaxTemperature].
func (r *Random) Temperature() int {
	return r.intInclusive(models.MinTemperature, models.MaxTemperature)
}

// Condition returns one of the known conditions, uniformly.
func (r *Random) Condition() string {
	return models.ConditionAt(r.intInclusive(0, models.ConditionCount()-1))
}

// RequestsToday returns an integer in [MinRequestsToday, MaxRequestsToday].
func (r *Random) RequestsToday() int {
	return r.intInclusive(models.MinRequestsToday, models.MaxRequestsToday)
}

// ActiveUsers returns an integer in [MinActiveUsers, MaxActiveUsers].
func (r *Random) ActiveUsers() int {
	return r.intInclusive(models.MinActiveUsers, models.MaxActiveUsers)
}

func (r *Random) intInclusive(lo, hi int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.rng.IntN(hi-lo+1)
}

// Fixed is a deterministic Injector: constant delay, constant outcome.
type Fixed struct {
	Delay   time.Duration
	Failing bool
}

func (f Fixed) Latency() time.Duration { return f.Delay }
func (f Fixed) Fail() bool              { return f.Failing }

// Sleep blocks for d or until ctx is done, whichever comes first.
// Returns ctx.Err() when the context ends the wait.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

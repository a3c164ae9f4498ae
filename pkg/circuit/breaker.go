// Package circuit implements a small circuit breaker used to guard calls to
// external collaborators.
package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"adboard/pkg/logging"
	"adboard/pkg/metrics"
)

// State represents the circuit breaker state
// Closed: normal operation; HalfOpen: testing; Open: fail fast.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

// ErrOpen indicates the breaker is open and calls are short-circuited.
var ErrOpen = errors.New("circuit open")

// Config tunes a circuit breaker instance.
type Config struct {
	Name string

	OperationTimeout  time.Duration // per-call timeout
	OpenFor           time.Duration // how long to stay open before probing
	MaxConsecFailures int           // consecutive failures to open
}

type Breaker struct {
	cfg        Config
	mu         sync.Mutex
	st         State
	nextProbe  time.Time
	consecFail int

	log *logging.ComponentLogger

	mOpen    *metrics.Counter
	mSuccess *metrics.Counter
	mFailure *metrics.Counter
	mState   *metrics.Gauge
}

func New(cfg Config, log *logging.Logger) *Breaker {
	if cfg.MaxConsecFailures <= 0 {
		cfg.MaxConsecFailures = 5
	}
	if cfg.OpenFor <= 0 {
		cfg.OpenFor = 30 * time.Second
	}
	b := &Breaker{
		cfg:      cfg,
		st:       Closed,
		mOpen:    metrics.Default.Counter("cb_"+cfg.Name+"_opens_total", "Circuit opened events"),
		mSuccess: metrics.Default.Counter("cb_"+cfg.Name+"_success_total", "Successful calls through circuit"),
		mFailure: metrics.Default.Counter("cb_"+cfg.Name+"_failure_total", "Failed calls through circuit"),
		mState:   metrics.Default.Gauge("cb_"+cfg.Name+"_state", "Circuit breaker state (0=closed,1=open,2=half-open)"),
	}
	if log != nil {
		b.log = log.WithComponent("circuit")
	}
	return b
}

// Do runs fn through the breaker, applying the per-call timeout when configured.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.allow() {
		return ErrOpen
	}

	if b.cfg.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.OperationTimeout)
		defer cancel()
	}

	err := fn(ctx)
	b.record(err == nil)
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.st {
	case Closed:
		return true
	case Open:
		if time.Now().After(b.nextProbe) {
			b.setStateLocked(HalfOpen)
			return true
		}
		return false
	default: // HalfOpen admits one probe at a time
		return false
	}
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if success {
		b.mSuccess.Inc(1)
		b.consecFail = 0
		if b.st != Closed {
			b.setStateLocked(Closed)
		}
		return
	}

	b.mFailure.Inc(1)
	b.consecFail++
	if b.st == HalfOpen || b.consecFail >= b.cfg.MaxConsecFailures {
		b.setStateLocked(Open)
		b.nextProbe = time.Now().Add(b.cfg.OpenFor)
	}
}

func (b *Breaker) setStateLocked(st State) {
	if b.st == st {
		return
	}
	b.st = st
	switch st {
	case Open:
		b.mOpen.Inc(1)
		b.mState.Set(1)
	case HalfOpen:
		b.mState.Set(2)
	case Closed:
		b.mState.Set(0)
	}
	if b.log != nil {
		b.log.Info("breaker state change",
			logging.String("name", b.cfg.Name), logging.Int("state", int(st)))
	}
}

// CurrentState reports the state for health/debug endpoints.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.st
}

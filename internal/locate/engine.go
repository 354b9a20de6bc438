package locate

import (
	"context"
	"errors"
	"time"
)

// Outcome records which stop condition ended an acquisition attempt.
type Outcome string

const (
	OutcomePrecise     Outcome = "precise"
	OutcomeStabilized  Outcome = "stabilized"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeApproximate Outcome = "approximate"
)

type Options struct {
	TargetAccuracyM     float64
	GoodEnoughAccuracyM float64
	MinStableReadings   int
	Timeout             time.Duration
}

func DefaultOptions() Options {
	return Options{
		TargetAccuracyM:     10,
		GoodEnoughAccuracyM: 15,
		MinStableReadings:   3,
		Timeout:             60 * time.Second,
	}
}

// Result is the single emission of one acquisition attempt.
type Result struct {
	Reading Reading
	Outcome Outcome
}

// Engine drives a position source to convergence: it keeps the best (lowest
// error) reading seen and stops when the latest reading hits the target
// accuracy, the recent readings stabilize, or the timeout ceiling fires.
type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	if opts.MinStableReadings <= 0 {
		opts.MinStableReadings = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Engine{opts: opts}
}

// accumulator holds the best-so-far reading and the bounded window of recent
// accuracies used for the stability check. It is owned by one attempt only.
type accumulator struct {
	best   *Reading
	window []float64
	size   int
}

func newAccumulator(size int) *accumulator {
	return &accumulator{size: size}
}

// step applies one reading. Readings captured before the current best are
// discarded so an out-of-order stale fix can never displace a newer one.
func (a *accumulator) step(r Reading) bool {
	if a.best != nil && r.Timestamp.Before(a.best.Timestamp) {
		return false
	}

	a.window = append(a.window, r.Accuracy)
	if len(a.window) > a.size {
		a.window = a.window[len(a.window)-a.size:]
	}

	if a.best == nil || r.Accuracy < a.best.Accuracy {
		best := r
		a.best = &best
	}
	return true
}

// stable reports whether the last size accuracies have variance below 25 m²
// with a mean at or under the good-enough threshold.
func (a *accumulator) stable(goodEnough float64) bool {
	if len(a.window) < a.size {
		return false
	}

	mean := 0.0
	for _, acc := range a.window {
		mean += acc
	}
	mean /= float64(len(a.window))

	variance := 0.0
	for _, acc := range a.window {
		d := acc - mean
		variance += d * d
	}
	variance /= float64(len(a.window))

	return variance < 25 && mean <= goodEnough
}

// Acquire runs one attempt against src. The source watch is torn down on any
// stop and never restarted. A source that ends before any stop condition is
// treated like the timeout ceiling: best reading if one exists, ErrNoFix
// otherwise.
func (e *Engine) Acquire(ctx context.Context, src Source) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readings, err := src.Watch(ctx)
	if err != nil {
		return Result{}, err
	}

	timer := time.NewTimer(e.opts.Timeout)
	defer timer.Stop()

	acc := newAccumulator(e.opts.MinStableReadings)
	for {
		select {
		case r, ok := <-readings:
			if !ok {
				if acc.best == nil {
					return Result{}, ErrNoFix
				}
				return Result{Reading: *acc.best, Outcome: OutcomeTimeout}, nil
			}
			if !acc.step(r) {
				continue
			}
			if r.Accuracy <= e.opts.TargetAccuracyM {
				return Result{Reading: *acc.best, Outcome: OutcomePrecise}, nil
			}
			if acc.stable(e.opts.GoodEnoughAccuracyM) {
				return Result{Reading: *acc.best, Outcome: OutcomeStabilized}, nil
			}
		case <-timer.C:
			if acc.best == nil {
				return Result{}, ErrNoFix
			}
			return Result{Reading: *acc.best, Outcome: OutcomeTimeout}, nil
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
}

// AcquireWithFallback tries a full acquisition on primary, then takes a single
// approximate reading from each fallback in order. Permission denial is never
// papered over with a fallback; the operator has to see it.
func (e *Engine) AcquireWithFallback(ctx context.Context, primary Source, fallbacks ...Source) (Result, error) {
	res, err := e.Acquire(ctx, primary)
	if err == nil {
		return res, nil
	}
	if errors.Is(err, ErrPermissionDenied) {
		return Result{}, err
	}

	for _, fb := range fallbacks {
		if r, ok := firstReading(ctx, fb); ok {
			return Result{Reading: r, Outcome: OutcomeApproximate}, nil
		}
	}
	return Result{}, err
}

func firstReading(ctx context.Context, src Source) (Reading, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readings, err := src.Watch(ctx)
	if err != nil {
		return Reading{}, false
	}
	select {
	case r, ok := <-readings:
		return r, ok
	case <-ctx.Done():
		return Reading{}, false
	}
}

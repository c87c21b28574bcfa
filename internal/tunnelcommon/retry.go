/*
Copyright 2024 Terrazzo Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tunnelcommon

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryStrategy computes successive delays for a retrying caller. Peek
// reports the delay the next Delay call would return without consuming
// state; Delay advances state and returns the delay to wait before the
// next attempt; MaxDelay reports the ceiling every future Delay is
// bounded by, mirroring the Rust original's recursive per-variant
// max_delay().
type RetryStrategy interface {
	Peek() time.Duration
	Delay() time.Duration
	MaxDelay() time.Duration
}

// Fixed always returns the same delay.
type Fixed time.Duration

// NewFixed constructs a Fixed strategy.
func NewFixed(d time.Duration) Fixed { return Fixed(d) }

func (f Fixed) Peek() time.Duration     { return time.Duration(f) }
func (f Fixed) Delay() time.Duration    { return time.Duration(f) }
func (f Fixed) MaxDelay() time.Duration { return time.Duration(f) }

// ExponentialBackoff builds a strategy whose base delay grows on every
// call to Delay, building on f as the initial interval, multiplying by
// exponent, and clamping to max.
func (f Fixed) ExponentialBackoff(exponent float64, max time.Duration) RetryStrategy {
	return ExponentialBackoff(time.Duration(f), exponent, max)
}

// exponentialBackoff tracks its own current/multiplier/max so Peek can
// report the next delay without consuming it (cenkalti/backoff's
// NextBackOff always advances); the wrapped ExponentialBackOff is still
// driven on every Delay call so its elapsed-time bookkeeping stays live.
type exponentialBackoff struct {
	mu         sync.Mutex
	b          *backoff.ExponentialBackOff
	current    time.Duration
	multiplier float64
	max        time.Duration
}

// ExponentialBackoff multiplies base by exponent on every Delay call,
// clamped to max.
func ExponentialBackoff(base time.Duration, exponent float64, max time.Duration) RetryStrategy {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = base
	b.Multiplier = exponent
	b.MaxInterval = max
	b.RandomizationFactor = 0
	b.Reset()
	return &exponentialBackoff{b: b, current: base, multiplier: exponent, max: max}
}

func (e *exponentialBackoff) Peek() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return clampDuration(e.current, e.max)
}

func (e *exponentialBackoff) Delay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := clampDuration(e.current, e.max)
	e.current = clampDuration(time.Duration(float64(e.current) * e.multiplier), e.max)
	_ = e.b.NextBackOff()
	return d
}

// MaxDelay reports the ceiling this strategy's delays saturate to: once
// current grows past max, Delay keeps clamping to it forever.
func (e *exponentialBackoff) MaxDelay() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.max
}

func clampDuration(d, max time.Duration) time.Duration {
	if d > max {
		return max
	}
	return d
}

// Mult scales every delay inner produces by factor.
type multStrategy struct {
	inner  RetryStrategy
	factor float64
}

// Mult builds a strategy whose peek/delay equal inner's times factor.
func Mult(inner RetryStrategy, factor float64) RetryStrategy {
	return &multStrategy{inner: inner, factor: factor}
}

func (m *multStrategy) Peek() time.Duration     { return scale(m.inner.Peek(), m.factor) }
func (m *multStrategy) Delay() time.Duration    { return scale(m.inner.Delay(), m.factor) }
func (m *multStrategy) MaxDelay() time.Duration { return scale(m.inner.MaxDelay(), m.factor) }

func scale(d time.Duration, factor float64) time.Duration {
	return time.Duration(float64(d) * factor)
}

// Plus sums the delays of a and b.
type plusStrategy struct{ a, b RetryStrategy }

// Plus builds a strategy whose peek/delay equal a's plus b's.
func Plus(a, b RetryStrategy) RetryStrategy {
	return &plusStrategy{a: a, b: b}
}

func (p *plusStrategy) Peek() time.Duration  { return p.a.Peek() + p.b.Peek() }
func (p *plusStrategy) Delay() time.Duration { return p.a.Delay() + p.b.Delay() }
func (p *plusStrategy) MaxDelay() time.Duration {
	return p.a.MaxDelay() + p.b.MaxDelay()
}

// sequenceStrategy emits first's delay exactly times times, then falls
// through to then permanently.
type sequenceStrategy struct {
	mu    sync.Mutex
	first RetryStrategy
	times int
	then  RetryStrategy
}

// Sequence builds a strategy that draws from first for the next times
// calls to Delay, then from then forever after.
func Sequence(first RetryStrategy, times int, then RetryStrategy) RetryStrategy {
	return &sequenceStrategy{first: first, times: times, then: then}
}

func (s *sequenceStrategy) Peek() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.times > 0 {
		return s.first.Peek()
	}
	return s.then.Peek()
}

func (s *sequenceStrategy) Delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.times > 0 {
		s.times--
		return s.first.Delay()
	}
	return s.then.Delay()
}

// MaxDelay reports the larger of the two phases' ceilings, since both
// are reachable over the strategy's lifetime.
func (s *sequenceStrategy) MaxDelay() time.Duration {
	first, then := s.first.MaxDelay(), s.then.MaxDelay()
	if first > then {
		return first
	}
	return then
}

// randomStrategy draws delays in [min, max), folding each emitted delay
// back into its internal state so successive draws are not independent
// of the sequence's own history.
type randomStrategy struct {
	mu       sync.Mutex
	min, max time.Duration
	state    uint64
}

// Random builds a strategy that draws uniformly from [min, max).
func Random(min, max time.Duration) RetryStrategy {
	return &randomStrategy{min: min, max: max, state: uint64(time.Now().UnixNano())}
}

func (r *randomStrategy) next() time.Duration {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	span := uint64(r.max - r.min)
	if span == 0 {
		return r.min
	}
	return r.min + time.Duration(r.state%span)
}

func (r *randomStrategy) Peek() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := r.state
	d := r.next()
	r.state = saved
	return d
}

func (r *randomStrategy) Delay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.next()
	r.state ^= uint64(d)
	return d
}

// MaxDelay reports the top of this strategy's draw range, exclusive in
// next but an honest ceiling for callers sizing timeouts off it.
func (r *randomStrategy) MaxDelay() time.Duration { return r.max }

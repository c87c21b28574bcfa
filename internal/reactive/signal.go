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

package reactive

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// UpdateResult is the return value of Signal.Update/UpdateMut: the new
// value (nil/zero NewValue means "no change, no fan-out") plus whatever
// auxiliary result the caller wants back.
type UpdateResult[N, R any] struct {
	NewValue N
	Result   R
}

type signalState[T any] struct {
	value   T
	version Version
}

// Signal is a mutable cell with subscribers. It supports Set/Force/Update,
// integrates with Batch, and can be Derive'd or View'd into another signal.
type Signal[T any] struct {
	name     string
	producer *Producer[Version]
	equal    func(a, b T) bool

	mu      sync.Mutex
	current signalState[T]

	immutable atomic.Pointer[T]

	dropMu  sync.Mutex
	onDrop  []func()
	dropped atomic.Bool
}

// NewSignal creates a signal with the given debug name and initial value.
// equal defaults to reflect.DeepEqual when nil.
func NewSignal[T any](name string, value T, equal func(a, b T) bool) *Signal[T] {
	if equal == nil {
		equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	return &Signal[T]{
		name:     name,
		producer: NewProducer[Version](name),
		equal:    equal,
		current:  signalState[T]{value: value, version: CurrentVersion()},
	}
}

// Name returns the signal's debug name.
func (s *Signal[T]) Name() string {
	return s.name
}

// GetValueUntracked reads the current value without subscribing to changes.
func (s *Signal[T]) GetValueUntracked() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.value
}

// AddSubscriber registers a callback that runs whenever the signal's
// producer fans out a version strictly greater than the last one this
// subscriber observed; this dedups deliveries that reach the same
// subscriber via more than one path in a shared reactive graph.
func (s *Signal[T]) AddSubscriber(closure func(T)) *Consumer[Version] {
	var lastVersion atomic.Uint64
	return s.producer.Register("[closure]", ZeroDepth, func(version Version) {
		last := Version(lastVersion.Swap(uint64(version)))
		if last < version {
			closure(s.GetValueUntracked())
		}
	})
}

// Set stores newValue and bumps the version only if it differs from the
// current value by equal.
func (s *Signal[T]) Set(newValue T) {
	s.updateImpl(func(old T) UpdateResult[*T, any] {
		if s.equal(old, newValue) {
			log.WithField("signal", s.name).Debug("set skipped: value unchanged")
			return UpdateResult[*T, any]{}
		}
		v := newValue
		return UpdateResult[*T, any]{NewValue: &v}
	})
}

// Update computes a new value (and an auxiliary result) from the current
// one. Returning a nil NewValue means "no change, no fan-out".
func Update[T, R any](s *Signal[T], compute func(T) UpdateResult[*T, R]) R {
	return updateTyped(s, compute)
}

// UpdateMut computes a new value in place from the current one, as a
// convenience over Update for callers that always produce a value.
func UpdateMut[T, R any](s *Signal[T], compute func(T) UpdateResult[T, R]) R {
	return updateTyped(s, func(old T) UpdateResult[*T, R] {
		r := compute(old)
		v := r.NewValue
		return UpdateResult[*T, R]{NewValue: &v, Result: r.Result}
	})
}

func updateTyped[T, R any](s *Signal[T], compute func(T) UpdateResult[*T, R]) R {
	var result R
	s.mu.Lock()
	old := s.current.value
	r := compute(old)
	if r.NewValue == nil {
		s.mu.Unlock()
		return r.Result
	}
	s.current.value = *r.NewValue
	s.current.version = NextVersion()
	version := s.current.version
	result = r.Result
	s.mu.Unlock()

	s.processOrBatch(version)
	return result
}

func (s *Signal[T]) updateImpl(compute func(T) UpdateResult[*T, any]) {
	s.mu.Lock()
	old := s.current.value
	r := compute(old)
	if r.NewValue == nil {
		s.mu.Unlock()
		return
	}
	s.current.value = *r.NewValue
	s.current.version = NextVersion()
	version := s.current.version
	s.mu.Unlock()

	s.processOrBatch(version)
}

// Force stores newValue and fans out unconditionally, even if it equals the
// current value.
func (s *Signal[T]) Force(newValue T) {
	s.mu.Lock()
	s.current.value = newValue
	s.current.version = NextVersion()
	version := s.current.version
	s.mu.Unlock()

	log.WithFields(logrus.Fields{"signal": s.name, "version": version}).Debug("force fan-out")
	s.processOrBatch(version)
}

func (s *Signal[T]) processOrBatch(version Version) {
	accepted := tryPush(func() batchedCallback {
		return func(v Version) { s.producer.Process(v) }
	})
	if !accepted {
		s.producer.Process(version)
	}
}

// OnDrop registers a hook to run when Close is called. Used by Derive to
// tie a cross-subscription's lifetime to its signal.
func (s *Signal[T]) OnDrop(hook func()) {
	s.dropMu.Lock()
	defer s.dropMu.Unlock()
	s.onDrop = append(s.onDrop, hook)
}

// Close drops the signal: it snapshots the final value into an immutable
// cell (so a closure that captured this signal but lost its strong
// reference elsewhere can still observe one last read) and runs every
// on-drop hook, such as the cross-subscription teardown installed by
// Derive.
func (s *Signal[T]) Close() error {
	if !s.dropped.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	v := s.current.value
	s.mu.Unlock()
	s.immutable.Store(&v)

	s.dropMu.Lock()
	hooks := s.onDrop
	s.onDrop = nil
	s.dropMu.Unlock()
	log.WithFields(logrus.Fields{"signal": s.name, "on_drop_hooks": len(hooks)}).Debug("closing signal")
	for _, hook := range hooks {
		hook()
	}
	return nil
}

// ImmutableSnapshot returns the last value stored before Close, if the
// signal has been closed; ok is false otherwise.
func (s *Signal[T]) ImmutableSnapshot() (value T, ok bool) {
	p := s.immutable.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

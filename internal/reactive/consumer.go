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

import "sync/atomic"

// ConsumerID disambiguates consumers that share the same sort key.
type ConsumerID uint64

var nextConsumerID uint64

func newConsumerID() ConsumerID {
	return ConsumerID(atomic.AddUint64(&nextConsumerID, 1))
}

// Consumer is a subscription handle returned by Producer.Register. A
// reference-counted language would deregister a consumer when its handle is
// dropped; Go has no deterministic destructors, so Close plays that role and
// must be called by whoever owns the handle (typically via a struct's own
// Close path, e.g. ReactiveClosure or Signal.Derive's cross-registration).
type Consumer[V any] struct {
	id       ConsumerID
	name     string
	sortKey  Depth
	producer *Producer[V]
	closure  func(V)
	closed   atomic.Bool
}

func newConsumer[V any](name string, producer *Producer[V], sortKey Depth, closure func(V)) *Consumer[V] {
	return &Consumer[V]{
		id:       newConsumerID(),
		name:     name,
		sortKey:  sortKey,
		producer: producer,
		closure:  closure,
	}
}

// Consume invokes the consumer's closure unless it has been closed.
func (c *Consumer[V]) Consume(value V) {
	if c.closed.Load() {
		return
	}
	c.closure(value)
}

// CompositeKey is the (Depth, ConsumerID) pair Producer sorts consumers by.
func (c *Consumer[V]) CompositeKey() (Depth, ConsumerID) {
	return c.sortKey, c.id
}

// Alive reports whether Close has not yet been called.
func (c *Consumer[V]) Alive() bool {
	return !c.closed.Load()
}

// Close deregisters the consumer from its producer. Idempotent.
func (c *Consumer[V]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.producer != nil {
		c.producer.remove(c.id)
	}
	return nil
}

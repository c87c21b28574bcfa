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

import "sync"

// Producer holds a set of consumers and fans values out to them in ascending
// (Depth, ConsumerID) order. Closed consumers are skipped and pruned lazily,
// on the next call that needs the sorted, compacted list.
type Producer[V any] struct {
	name string

	mu        sync.Mutex
	consumers []*Consumer[V]
	sorted    bool
}

// NewProducer creates a named producer. The name is used only for logging.
func NewProducer[V any](name string) *Producer[V] {
	return &Producer[V]{name: name, sorted: true}
}

// Name returns the producer's debug name.
func (p *Producer[V]) Name() string {
	return p.name
}

// Register adds consumerClosure as a new consumer at sortKey and returns a
// handle whose Close removes it again.
func (p *Producer[V]) Register(consumerName string, sortKey Depth, consumerClosure func(V)) *Consumer[V] {
	consumer := newConsumer(consumerName, p, sortKey, consumerClosure)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sorted && len(p.consumers) > 0 {
		last := p.consumers[len(p.consumers)-1]
		lastDepth, lastID := last.CompositeKey()
		if sortKey < lastDepth || (sortKey == lastDepth && consumer.id < lastID) {
			p.sorted = false
		}
	}
	p.consumers = append(p.consumers, consumer)
	return consumer
}

// Consumers returns the live consumers in ascending (Depth, ConsumerID)
// order, pruning any that have been closed since the last call.
func (p *Producer[V]) Consumers() []*Consumer[V] {
	p.mu.Lock()
	defer p.mu.Unlock()

	live := p.consumers[:0:0]
	for _, c := range p.consumers {
		if c.Alive() {
			live = append(live, c)
		}
	}
	p.consumers = live

	if !p.sorted {
		sortConsumers(p.consumers)
		p.sorted = true
	}

	out := make([]*Consumer[V], len(p.consumers))
	copy(out, p.consumers)
	return out
}

// Process fans value out to every live consumer, ancestors (lower Depth)
// first.
func (p *Producer[V]) Process(value V) {
	for _, c := range p.Consumers() {
		c.Consume(value)
	}
}

func (p *Producer[V]) remove(id ConsumerID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.consumers {
		if c.id == id {
			p.consumers = append(p.consumers[:i], p.consumers[i+1:]...)
			return
		}
	}
}

func sortConsumers[V any](consumers []*Consumer[V]) {
	// Small insertion sort: producers typically hold a handful of
	// consumers (attributes/children of one element), and keeping this
	// allocation-free avoids pulling in sort.Slice's reflection path on
	// a hot reconciliation loop.
	for i := 1; i < len(consumers); i++ {
		for j := i; j > 0 && less(consumers[j], consumers[j-1]); j-- {
			consumers[j], consumers[j-1] = consumers[j-1], consumers[j]
		}
	}
}

func less[V any](a, b *Consumer[V]) bool {
	ad, aid := a.CompositeKey()
	bd, bid := b.CompositeKey()
	if ad != bd {
		return ad < bd
	}
	return aid < bid
}

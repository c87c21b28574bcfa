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

package ui

import (
	"sync"
	"sync/atomic"

	"github.com/terrazzo-project/terrazzo/internal/domtree"
)

var nextCallbackID uint64

// NewCallbackID allocates a process-wide unique id, used as an Event's
// CallbackID so mergeEvents can tell two closures apart without relying
// on Go function values being comparable.
func NewCallbackID() uint64 {
	return atomic.AddUint64(&nextCallbackID, 1)
}

// OwnedCallback is a reference-counted handler cell: a host element
// retains it for as long as it's attached, and whoever constructed the
// closure retains it for as long as the owning data lives. The
// underlying closure is released once both sides have let go, standing
// in for a host-language destructor that would otherwise detach
// dangling listeners.
type OwnedCallback struct {
	id uint64

	mu   sync.Mutex
	fn   func(domtree.Event)
	refs int
}

// NewOwnedCallback wraps fn with one initial reference.
func NewOwnedCallback(fn func(domtree.Event)) *OwnedCallback {
	return &OwnedCallback{id: NewCallbackID(), fn: fn, refs: 1}
}

func (c *OwnedCallback) ID() uint64 { return c.id }

// Retain adds a reference and returns c, for chaining at call sites
// that hand the same callback to more than one Event.
func (c *OwnedCallback) Retain() *OwnedCallback {
	c.mu.Lock()
	c.refs++
	c.mu.Unlock()
	return c
}

// Release drops a reference, freeing the closure once none remain.
func (c *OwnedCallback) Release() {
	c.mu.Lock()
	c.refs--
	done := c.refs <= 0
	c.mu.Unlock()
	if done {
		c.mu.Lock()
		c.fn = nil
		c.mu.Unlock()
		log.WithField("callback", c.id).Debug("callback released")
	}
}

// Call invokes the wrapped closure, if it hasn't been released yet.
func (c *OwnedCallback) Call(e domtree.Event) {
	c.mu.Lock()
	fn := c.fn
	c.mu.Unlock()
	if fn != nil {
		fn(e)
	}
}

// AsEvent builds an Event bound to this callback's identity.
func (c *OwnedCallback) AsEvent(eventType string) Event {
	return Event{Type: eventType, CallbackID: c.id, Handler: c.Call}
}

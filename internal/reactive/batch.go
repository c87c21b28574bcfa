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

import "github.com/sirupsen/logrus"

// batchedCallback is queued while a Batch is active and run, with the
// Version current at drop time, once the batch is drained.
type batchedCallback func(Version)

type batchFrame struct {
	callbacks []batchedCallback
}

// Batch is not safe for concurrent use: it mirrors the UI runtime's
// single-threaded cooperative model, using a goroutine-local stack
// emulated with a package-level variable that callers are expected to
// only touch from the UI's single event loop goroutine.
var currentBatch *batchFrame

// Batch is an accumulator frame pushed by NewBatch. Signal updates performed while
// the returned Batch is open are deferred until Close (or falling out of
// scope via defer) drains them, in FIFO order, stamped with the Version
// current at drain time rather than at enqueue time.
type Batch struct {
	name string
	prev *batchFrame
}

// NewBatch starts a new batch scope.
func NewBatch(name string) *Batch {
	log.WithField("batch", name).Debug("batch opened")
	b := &Batch{name: name, prev: currentBatch}
	currentBatch = &batchFrame{}
	return b
}

// tryPush enqueues a deferred callback if a batch is active. It reports
// whether a batch accepted it; if not, the caller must run its effect
// immediately.
func tryPush(makeCallback func() batchedCallback) bool {
	if currentBatch == nil {
		return false
	}
	currentBatch.callbacks = append(currentBatch.callbacks, makeCallback())
	return true
}

// Close drains the batch, restoring the previous (possibly nil) frame first
// so nested batches unwind correctly, then running every queued callback
// with the version current at drain time.
func (b *Batch) Close() error {
	drained := currentBatch
	currentBatch = b.prev
	if drained == nil {
		return nil
	}
	version := CurrentVersion()
	log.WithFields(logrus.Fields{"batch": b.name, "deferred": len(drained.callbacks)}).Debug("batch drained")
	for _, cb := range drained.callbacks {
		cb(version)
	}
	return nil
}

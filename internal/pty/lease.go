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

package pty

import (
	"context"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gravitational/trace"
)

// ErrOutputNotSet is returned by LeaseOutput when a terminal's output
// cell has never been populated.
var ErrOutputNotSet = trace.NotFound("process output not set")

// Frame is one unit yielded by a lease's Stream.
type Frame struct {
	Data []byte
	EOS  bool
	Err  error
}

// OutputSource is anything a lease can read chunked output from:
// *OutputReader for a local PTY, or an adapter over a remote agent's
// gRPC output stream. The lease hand-off protocol is indifferent to
// which.
type OutputSource interface {
	Read() OutputFrame
}

// ProcessOutputExchange is the cell a ProcessIoEntry hands leases out of.
// It starts holding the output reader directly; once a lease is minted,
// the exchange's returned channel is fed by that lease's Release, which
// fires when the exchange's signal channel is written to (revoking the
// lease).
type ProcessOutputExchange struct {
	signal   chan struct{}
	returned chan OutputSource
}

func newExchange() *ProcessOutputExchange {
	return &ProcessOutputExchange{
		signal:   make(chan struct{}, 1),
		returned: make(chan OutputSource, 1),
	}
}

// ProcessOutputLease is an at-most-one-consumer borrow of a terminal's
// output. Its signal channel fires when a subsequent LeaseOutput call
// revokes it; Release (ReleaseOnDrop's Go analogue) must be called at
// least once to hand the output back for the next lease.
type ProcessOutputLease struct {
	output   OutputSource
	returnTo *ProcessOutputExchange
	once     sync.Once
}

// Signal fires when this lease has been revoked by a subsequent
// LeaseOutput call and should wind down.
func (l *ProcessOutputLease) Signal() <-chan struct{} {
	return l.returnTo.signal
}

// Release returns the output to the exchange for the next lease. Safe to
// call more than once; only the first call has effect.
func (l *ProcessOutputLease) Release() {
	l.once.Do(func() {
		l.returnTo.returned <- l.output
	})
}

// Stream reads frames from the lease's output until EOS, an error, or
// revocation (Signal firing), releasing the lease when it stops either
// way. Each read races against revocation and cancellation in its own
// goroutine, rather than being checked only before a blocking read
// starts: on an idle terminal, the latter would leave a subsequent
// LeaseOutput call blocked until the next frame arrived, possibly
// never.
func (l *ProcessOutputLease) Stream(ctx context.Context) <-chan Frame {
	out := make(chan Frame, 1)
	go func() {
		defer close(out)
		defer l.Release()
		var total uint64
		for {
			read := make(chan OutputFrame, 1)
			go func() { read <- l.output.Read() }()

			select {
			case <-l.Signal():
				log.WithField("bytes_read", humanize.Bytes(total)).Debug("output lease revoked mid-stream")
				out <- Frame{EOS: true}
				return
			case <-ctx.Done():
				log.WithField("bytes_read", humanize.Bytes(total)).Debug("output stream cancelled")
				out <- Frame{EOS: true}
				return
			case frame := <-read:
				switch {
				case frame.Err != nil:
					out <- Frame{Err: frame.Err}
					return
				case frame.EOS:
					log.WithField("bytes_read", humanize.Bytes(total)).Debug("output stream reached EOS")
					out <- Frame{EOS: true}
					return
				default:
					total += uint64(len(frame.Data))
					out <- Frame{Data: frame.Data}
				}
			}
		}
	}()
	return out
}

// ProcessIoEntry is a terminal's registration: it owns the output cell
// that at most one lease can hold at a time.
type ProcessIoEntry struct {
	mu       sync.Mutex
	exchange *ProcessOutputExchange
}

// NewProcessIoEntry wraps a freshly split output reader in its initial
// exchange.
func NewProcessIoEntry(output OutputSource) *ProcessIoEntry {
	exchange := newExchange()
	exchange.returned <- output
	return &ProcessIoEntry{exchange: exchange}
}

// LeaseOutput implements the hand-off protocol: revoke any outstanding
// lease, wait for it to release the output, then mint a fresh lease
// bound to a brand-new exchange.
func (e *ProcessIoEntry) LeaseOutput(ctx context.Context) (*ProcessOutputLease, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	old := e.exchange
	if old == nil {
		return nil, trace.Wrap(ErrOutputNotSet)
	}

	select {
	case old.signal <- struct{}{}:
	default:
	}

	var output OutputSource
	select {
	case output = <-old.returned:
	case <-ctx.Done():
		return nil, trace.Wrap(ctx.Err())
	}

	next := newExchange()
	e.exchange = next
	log.Debug("output lease handed off")
	return &ProcessOutputLease{output: output, returnTo: next}, nil
}

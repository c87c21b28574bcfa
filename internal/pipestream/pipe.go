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

// Package pipestream multiplexes one browser client's leased terminal
// output streams onto a single long-poll HTTP body.
package pipestream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"

	"github.com/terrazzo-project/terrazzo/internal/pty"
)

// TerminalID identifies one PTY-backed terminal.
type TerminalID string

// NewTerminalID allocates a fresh terminal id.
func NewTerminalID() TerminalID {
	return TerminalID(uuid.NewString())
}

// CorrelationID is chosen by the browser client to associate one or more
// terminals with a single pipe body.
type CorrelationID string

// idleWindow is how long a pipe body may go without producing a frame
// before the watchdog aborts it.
const idleWindow = 5 * time.Second

// maxBatch is the largest number of consecutive chunks from one lease a
// pipe concatenates into a single frame before flushing.
const maxBatch = 10

// Frame is one line of the pipe's newline-delimited JSON body. A frame
// with Data absent signals EOS for TerminalID.
type Frame struct {
	TerminalID TerminalID `json:"terminal_id"`
	Data       []byte     `json:"data,omitempty"`
}

type leased struct {
	id    TerminalID
	lease *pty.ProcessOutputLease
}

type pipeEntry struct {
	ch    chan leased
	count int
}

// Registration maps a CorrelationID to the set of terminals currently
// feeding its pipe.
type Registration struct {
	mu      sync.Mutex
	entries map[CorrelationID]*pipeEntry
}

// NewRegistration returns an empty registration table.
func NewRegistration() *Registration {
	return &Registration{entries: make(map[CorrelationID]*pipeEntry)}
}

// Register attaches lease, identified by id, to correlation's pipe,
// creating the registration entry if this is the first terminal on it.
func (r *Registration) Register(correlation CorrelationID, id TerminalID, lease *pty.ProcessOutputLease) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[correlation]
	if !ok {
		entry = &pipeEntry{ch: make(chan leased, 16)}
		r.entries[correlation] = entry
	}
	entry.count++

	select {
	case entry.ch <- leased{id: id, lease: lease}:
	default:
		return trace.LimitExceeded("pipe %q: registration channel full", correlation)
	}
	log.WithFields(logrus.Fields{"correlation": correlation, "terminal": id}).Debug("terminal registered on pipe")
	return nil
}

// Unregister drops one terminal's hold on correlation's registration,
// removing the entry entirely once none remain and closing its channel
// so a WriteTo serving it can finish.
func (r *Registration) Unregister(correlation CorrelationID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[correlation]
	if !ok {
		return
	}
	entry.count--
	if entry.count <= 0 {
		delete(r.entries, correlation)
		close(entry.ch)
		log.WithField("correlation", correlation).Debug("pipe registration dropped")
	}
}

func (r *Registration) channel(correlation CorrelationID) (chan leased, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[correlation]
	if !ok {
		return nil, trace.NotFound("pipe %q: not registered", correlation)
	}
	return entry.ch, nil
}

// WriteTo streams correlation's merged, newline-delimited JSON body to w.
// It stops when the 5s idle watchdog fires, ctx is cancelled, or the
// registration has been dropped by Unregister and every lease it
// delivered has reached EOS or errored.
func (r *Registration) WriteTo(ctx context.Context, correlation CorrelationID, w io.Writer) error {
	ch, err := r.channel(correlation)
	if err != nil {
		return trace.Wrap(err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return trace.ConnectionProblem(err, "pipe %q: write preamble", correlation)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan Frame, 16)
	var wg sync.WaitGroup
	intake := make(chan struct{})

	go func() {
		defer close(intake)
		for {
			select {
			case item, ok := <-ch:
				if !ok {
					return
				}
				wg.Add(1)
				go r.pumpLease(ctx, item, frames, &wg)
			case <-ctx.Done():
				return
			}
		}
	}()

	done := make(chan struct{})
	go func() {
		<-intake
		wg.Wait()
		close(done)
	}()

	idle := time.NewTimer(idleWindow)
	defer idle.Stop()

	enc := json.NewEncoder(w)
	for {
		select {
		case f := <-frames:
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(idleWindow)
			if err := enc.Encode(f); err != nil {
				return trace.ConnectionProblem(err, "pipe %q: encode frame", correlation)
			}
		case <-idle.C:
			log.WithField("correlation", correlation).Warn("pipe idle watchdog fired")
			return trace.ConnectionProblem(nil, "pipe %q: idle for %s", correlation, idleWindow)
		case <-done:
			return nil
		case <-ctx.Done():
			return trace.Wrap(ctx.Err())
		}
	}
}

func (r *Registration) pumpLease(ctx context.Context, item leased, out chan<- Frame, wg *sync.WaitGroup) {
	defer wg.Done()

	stream := item.lease.Stream(ctx)
	var batch [][]byte
	flush := func() {
		if len(batch) == 0 {
			return
		}
		var buf bytes.Buffer
		for _, b := range batch {
			buf.Write(b)
		}
		out <- Frame{TerminalID: item.id, Data: buf.Bytes()}
		batch = batch[:0]
	}

	for frame := range stream {
		switch {
		case frame.Err != nil:
			log.WithError(frame.Err).WithField("terminal", item.id).Warn("terminal stream error")
			flush()
			out <- Frame{TerminalID: item.id}
			return
		case frame.EOS:
			flush()
			out <- Frame{TerminalID: item.id}
			return
		default:
			batch = append(batch, frame.Data)
			if len(batch) >= maxBatch || len(stream) == 0 {
				flush()
			}
		}
	}
}

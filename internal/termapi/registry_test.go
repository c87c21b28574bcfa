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

package termapi

import (
	"context"
	"io"
	"testing"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"

	"github.com/terrazzo-project/terrazzo/internal/pipestream"
	"github.com/terrazzo-project/terrazzo/internal/pty"
)

// fakeOutputSource yields a single chunk then EOS, enough for Register
// to complete its lease hand-off without a real PTY.
type fakeOutputSource struct {
	chunk []byte
	sent  bool
}

func (f *fakeOutputSource) Read() pty.OutputFrame {
	if f.sent {
		return pty.OutputFrame{EOS: true}
	}
	f.sent = true
	return pty.OutputFrame{Data: f.chunk}
}

// fakeBackend is a minimal Backend double for exercising Registry
// without spawning a real shell.
type fakeBackend struct {
	written []byte
	rows    int
	cols    int
	closed  bool
	entry   *pty.ProcessIoEntry
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{entry: pty.NewProcessIoEntry(&fakeOutputSource{chunk: []byte("hello")})}
}

func (b *fakeBackend) Write(p []byte) (int, error) {
	b.written = append(b.written, p...)
	return len(p), nil
}

func (b *fakeBackend) Resize(rows, cols int) error {
	b.rows, b.cols = rows, cols
	return nil
}

func (b *fakeBackend) Entry() *pty.ProcessIoEntry { return b.entry }

func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

func TestRegistryCreateListWriteResize(t *testing.T) {
	r := NewRegistry()
	id := r.NewID()
	backend := newFakeBackend()
	r.Create(context.Background(), id, backend, "browser-1")

	defs := r.List()
	require.Len(t, defs, 1)
	require.Equal(t, id, defs[0].ID)
	require.Equal(t, "browser-1", defs[0].Client)

	require.NoError(t, r.Write(id, []byte("ls\n")))
	require.Equal(t, []byte("ls\n"), backend.written)

	require.NoError(t, r.Resize(id, 40, 120))
	require.Equal(t, 40, backend.rows)
	require.Equal(t, 120, backend.cols)

	require.NoError(t, r.SetTitle(id, "renamed"))
	defs = r.List()
	require.Equal(t, "renamed", defs[0].Title)
}

func TestRegistryUnknownIDErrors(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Write(pipestream.TerminalID("missing"), []byte("x")))
	require.Error(t, r.Resize(pipestream.TerminalID("missing"), 1, 1))
	require.Error(t, r.Close(pipestream.TerminalID("missing")))
}

func TestRegistryRegisterAndCloseUnregistersPipe(t *testing.T) {
	r := NewRegistry()
	id := r.NewID()
	backend := newFakeBackend()
	r.Create(context.Background(), id, backend, "browser-1")

	correlation := pipestream.CorrelationID("corr-1")
	require.NoError(t, r.Register(context.Background(), id, correlation))

	require.NoError(t, r.Close(id))
	require.True(t, backend.closed)

	err := r.Pipes().WriteTo(context.Background(), correlation, io.Discard)
	require.True(t, trace.IsNotFound(err), "closing the pipe's only terminal should drop its registration")

	defs := r.List()
	require.Empty(t, defs)
}

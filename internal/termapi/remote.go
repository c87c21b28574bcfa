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

	"github.com/gravitational/trace"
	"google.golang.org/grpc"

	"github.com/terrazzo-project/terrazzo/internal/pipestream"
	"github.com/terrazzo-project/terrazzo/internal/pty"
	"github.com/terrazzo-project/terrazzo/internal/tunnelproto"
)

// ChannelPicker selects a pooled tunnel channel for a client name,
// satisfied by tunnelserver.ConnectionPool. Declared here rather than
// imported so termapi doesn't need to depend on the tunnel server's
// health-check and load-balancing internals, only on the ability to
// get a *grpc.ClientConn.
type ChannelPicker interface {
	Pick(client string) (*grpc.ClientConn, error)
}

// RemoteBackend runs the terminal's process on a remote agent, reached
// through the client name's pooled tunnel channel, and exposes it
// through the same Backend interface LocalBackend does.
type RemoteBackend struct {
	client     tunnelproto.PtyServiceClient
	terminalID string
	entry      *pty.ProcessIoEntry
}

// NewRemoteBackend opens terminalID on the agent reachable through
// picker under clientName, running shell there.
func NewRemoteBackend(ctx context.Context, picker ChannelPicker, clientName string, terminalID pipestream.TerminalID, shell string) (*RemoteBackend, error) {
	conn, err := picker.Pick(clientName)
	if err != nil {
		return nil, trace.Wrap(err, "pick tunnel channel for %q", clientName)
	}
	client := tunnelproto.NewPtyServiceClient(conn)

	if _, err := client.Open(ctx, &tunnelproto.OpenRequest{TerminalId: string(terminalID), Shell: shell}); err != nil {
		return nil, trace.Wrap(err, "open remote terminal")
	}
	stream, err := client.Read(ctx, &tunnelproto.ReadRequest{TerminalId: string(terminalID)})
	if err != nil {
		return nil, trace.Wrap(err, "open remote terminal read stream")
	}
	return &RemoteBackend{
		client:     client,
		terminalID: string(terminalID),
		entry:      pty.NewProcessIoEntry(&remoteOutputSource{stream: stream}),
	}, nil
}

func (b *RemoteBackend) Write(p []byte) (int, error) {
	ctx := context.Background()
	if _, err := b.client.Write(ctx, &tunnelproto.WriteRequest{TerminalId: b.terminalID, Data: p}); err != nil {
		return 0, trace.Wrap(err, "write to remote terminal")
	}
	return len(p), nil
}

func (b *RemoteBackend) Resize(rows, cols int) error {
	_, err := b.client.Resize(context.Background(), &tunnelproto.ResizeRequest{
		TerminalId: b.terminalID,
		Rows:       uint32(rows),
		Cols:       uint32(cols),
	})
	return trace.Wrap(err, "resize remote terminal")
}

func (b *RemoteBackend) Entry() *pty.ProcessIoEntry { return b.entry }

func (b *RemoteBackend) Close() error {
	_, err := b.client.Close(context.Background(), &tunnelproto.CloseRequest{TerminalId: b.terminalID})
	return trace.Wrap(err, "close remote terminal")
}

// remoteOutputSource adapts a PtyService Read stream to pty.OutputSource
// so a remote terminal's output can flow through the same
// ProcessIoEntry/lease hand-off machinery as a local PTY's.
type remoteOutputSource struct {
	stream tunnelproto.PtyService_ReadClient
}

func (r *remoteOutputSource) Read() pty.OutputFrame {
	chunk, err := r.stream.Recv()
	if err != nil {
		if err == io.EOF {
			return pty.OutputFrame{EOS: true}
		}
		return pty.OutputFrame{Err: trace.Wrap(err, "read remote terminal output")}
	}
	if chunk.Error != "" {
		return pty.OutputFrame{Err: trace.ConnectionProblem(nil, "remote terminal: %s", chunk.Error)}
	}
	if chunk.Eos {
		return pty.OutputFrame{EOS: true}
	}
	return pty.OutputFrame{Data: chunk.Data}
}

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

package tunnelclient

import (
	"context"
	"sync"
	"time"

	"github.com/gravitational/trace"

	"github.com/terrazzo-project/terrazzo/internal/termapi"
	"github.com/terrazzo-project/terrazzo/internal/tunnelproto"
)

// PtyServer implements tunnelproto.PtyServiceServer over locally spawned
// terminals, letting the gateway run commands on this host as if they
// were local, through the same termapi.Backend used for the gateway's
// own local terminals.
type PtyServer struct {
	tunnelproto.UnimplementedPtyServiceServer

	mu        sync.Mutex
	terminals map[string]*termapi.LocalBackend
}

// NewPtyServer returns an empty server ready to register with grpc.
func NewPtyServer() *PtyServer {
	return &PtyServer{terminals: make(map[string]*termapi.LocalBackend)}
}

func (s *PtyServer) get(id string) (*termapi.LocalBackend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.terminals[id]
	if !ok {
		return nil, trace.NotFound("terminal %q not found", id)
	}
	return b, nil
}

func (s *PtyServer) Open(ctx context.Context, req *tunnelproto.OpenRequest) (*tunnelproto.OpenResponse, error) {
	backend, err := termapi.NewLocalBackend(context.Background(), req.Shell)
	if err != nil {
		return nil, trace.Wrap(err, "open terminal %q", req.TerminalId)
	}
	s.mu.Lock()
	s.terminals[req.TerminalId] = backend
	s.mu.Unlock()
	return &tunnelproto.OpenResponse{}, nil
}

func (s *PtyServer) Write(ctx context.Context, req *tunnelproto.WriteRequest) (*tunnelproto.WriteResponse, error) {
	backend, err := s.get(req.TerminalId)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	_, err = backend.Write(req.Data)
	return &tunnelproto.WriteResponse{}, trace.Wrap(err)
}

func (s *PtyServer) Resize(ctx context.Context, req *tunnelproto.ResizeRequest) (*tunnelproto.ResizeResponse, error) {
	backend, err := s.get(req.TerminalId)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &tunnelproto.ResizeResponse{}, trace.Wrap(backend.Resize(int(req.Rows), int(req.Cols)))
}

func (s *PtyServer) Close(ctx context.Context, req *tunnelproto.CloseRequest) (*tunnelproto.CloseResponse, error) {
	backend, err := s.get(req.TerminalId)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	s.mu.Lock()
	delete(s.terminals, req.TerminalId)
	s.mu.Unlock()
	return &tunnelproto.CloseResponse{}, trace.Wrap(backend.Close())
}

// Read streams req.TerminalId's output, leasing it the same way
// termapi's registry does for a gateway-local terminal, forwarding
// frames as DataChunks until EOS, an error, or the stream's context
// is cancelled.
func (s *PtyServer) Read(req *tunnelproto.ReadRequest, stream tunnelproto.PtyService_ReadServer) error {
	backend, err := s.get(req.TerminalId)
	if err != nil {
		return trace.Wrap(err)
	}
	lease, err := backend.Entry().LeaseOutput(stream.Context())
	if err != nil {
		return trace.Wrap(err, "lease output for %q", req.TerminalId)
	}

	for frame := range lease.Stream(stream.Context()) {
		switch {
		case frame.Err != nil:
			return stream.Send(&tunnelproto.DataChunk{Error: frame.Err.Error()})
		case frame.EOS:
			return stream.Send(&tunnelproto.DataChunk{Eos: true})
		default:
			if err := stream.Send(&tunnelproto.DataChunk{Data: frame.Data}); err != nil {
				return trace.Wrap(err, "send output chunk")
			}
		}
	}
	return nil
}

// HealthServer answers PingPong for the gateway's connection pool health
// check, waiting out the delay the caller asked for and echoing its
// connection id.
type HealthServer struct {
	tunnelproto.UnimplementedHealthServiceServer
}

func (HealthServer) PingPong(ctx context.Context, req *tunnelproto.PingRequest) (*tunnelproto.PingResponse, error) {
	if req.DelayMs > 0 {
		select {
		case <-time.After(time.Duration(req.DelayMs) * time.Millisecond):
		case <-ctx.Done():
			return nil, trace.Wrap(ctx.Err())
		}
	}
	return &tunnelproto.PingResponse{ConnectionId: req.ConnectionId}, nil
}

// CalculatorServer is the tunnel's end-to-end smoke test service.
type CalculatorServer struct {
	tunnelproto.UnimplementedCalculatorServiceServer
}

func (CalculatorServer) Add(ctx context.Context, req *tunnelproto.BinaryOpRequest) (*tunnelproto.BinaryOpResponse, error) {
	return &tunnelproto.BinaryOpResponse{Result: req.A + req.B}, nil
}

func (CalculatorServer) Sub(ctx context.Context, req *tunnelproto.BinaryOpRequest) (*tunnelproto.BinaryOpResponse, error) {
	return &tunnelproto.BinaryOpResponse{Result: req.A - req.B}, nil
}

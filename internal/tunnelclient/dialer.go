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
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gravitational/trace"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
	"github.com/terrazzo-project/terrazzo/internal/tunnelproto"
)

// Dialer repeatedly establishes the reverse tunnel: dial the gateway's
// websocket endpoint, layer an inner mutually-authenticated TLS
// handshake over it with the agent playing the TLS server role, then
// serve grpc over that connection until it drops, per spec.md §4.2's
// "Handshake roles".
type Dialer struct {
	GatewayURL string
	ClientName string
	Identity   *Identity
	Trust      tunnelcommon.TrustStore
	Retry      tunnelcommon.RetryStrategy
}

// Run dials and serves in a loop, retrying with d.Retry's delays until
// ctx is cancelled.
func (d *Dialer) Run(ctx context.Context) error {
	server := d.newGRPCServer()
	for {
		if ctx.Err() != nil {
			return trace.Wrap(ctx.Err())
		}
		if err := d.runOnce(ctx, server); err != nil {
			log.WithError(err).Warn("tunnel connection failed, retrying")
		}
		select {
		case <-ctx.Done():
			return trace.Wrap(ctx.Err())
		case <-time.After(d.Retry.Delay()):
		}
	}
}

// newGRPCServer builds the grpc.Server the agent serves over the inner
// tunnel connection, instrumented with otelgrpc's stats handler so the
// PTY and health RPCs carry spans the same way the gateway's outbound
// channel does.
func (d *Dialer) newGRPCServer() *grpc.Server {
	server := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	tunnelproto.RegisterPtyServiceServer(server, NewPtyServer())
	tunnelproto.RegisterHealthServiceServer(server, HealthServer{})
	tunnelproto.RegisterCalculatorServiceServer(server, CalculatorServer{})
	return server
}

func (d *Dialer) runOnce(ctx context.Context, server *grpc.Server) error {
	wsURL, err := tunnelWebsocketURL(d.GatewayURL, d.ClientName)
	if err != nil {
		return trace.Wrap(err)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		status := "no response"
		if resp != nil {
			status = resp.Status
		}
		return trace.ConnectionProblem(err, "dial tunnel websocket (%s)", status)
	}
	stream := tunnelcommon.NewWSByteStream(conn)
	netConn := tunnelcommon.StreamConn{ReadWriteCloser: stream}

	roots, err := d.Trust.RootPool()
	if err != nil {
		return trace.Wrap(err, "load trust roots")
	}
	tlsConn := tls.Server(netConn, &tls.Config{
		Certificates: []tls.Certificate{d.Identity.TLSCertificate()},
		ClientCAs:    roots,
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS13,
	})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return trace.ConnectionProblem(err, "inner tls handshake")
	}
	log.WithField("client", d.ClientName).Info("tunnel established")

	listener := newSingleConnListener(tlsConn)
	return trace.Wrap(server.Serve(listener))
}

// tunnelWebsocketURL builds the wss:// (or ws:// for an http gateway)
// URL the agent dials to open its reverse tunnel.
func tunnelWebsocketURL(gatewayURL, clientName string) (string, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return "", trace.BadParameter("parse gateway url: %v", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", trace.BadParameter("unsupported gateway url scheme %q", u.Scheme)
	}
	u.Path = fmt.Sprintf("/remote/tunnel/%s", clientName)
	return u.String(), nil
}

// singleConnListener hands out exactly one connection and then blocks
// until closed, letting a grpc.Server drive a single pre-established
// net.Conn via Serve without grpc dialing anything itself.
type singleConnListener struct {
	conn chan net.Conn
	done chan struct{}
}

func newSingleConnListener(conn net.Conn) *singleConnListener {
	l := &singleConnListener{conn: make(chan net.Conn, 1), done: make(chan struct{})}
	l.conn <- conn
	return l
}

func (l *singleConnListener) Accept() (net.Conn, error) {
	select {
	case c, ok := <-l.conn:
		if !ok {
			return nil, trace.ConnectionProblem(nil, "tunnel connection closed")
		}
		return c, nil
	case <-l.done:
		return nil, trace.ConnectionProblem(nil, "listener closed")
	}
}

func (l *singleConnListener) Close() error {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
	return nil
}

func (l *singleConnListener) Addr() net.Addr { return tunnelAddr{} }

type tunnelAddr struct{}

func (tunnelAddr) Network() string { return "tunnel" }
func (tunnelAddr) String() string  { return "tunnel" }

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

package tunnelserver

import (
	"context"
	"testing"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
	"github.com/terrazzo-project/terrazzo/internal/tunnelproto"
)

// fakeHealthClient lets pingOnce tests script a PingPong reply without
// dialing a real channel.
type fakeHealthClient struct {
	pingPong func(ctx context.Context, req *tunnelproto.PingRequest) (*tunnelproto.PingResponse, error)
}

func (c fakeHealthClient) PingPong(ctx context.Context, req *tunnelproto.PingRequest, _ ...grpc.CallOption) (*tunnelproto.PingResponse, error) {
	return c.pingPong(ctx, req)
}

func TestPickLoadBalanceFavorsLowerLoadChannel(t *testing.T) {
	pool := NewConnectionPoolWithPeriod(clockwork.NewFakeClock(), time.Minute)
	client := tunnelcommon.ClientID("agent-1")

	idle := &Channel{ID: tunnelcommon.NewConnectionID()}
	busy := &Channel{ID: tunnelcommon.NewConnectionID()}
	busy.begin() // load 1, versus idle's load 0

	pool.clients[client] = &incomingClients{channels: []*Channel{idle, busy}}

	const draws = 2000
	var idlePicks int
	for i := 0; i < draws; i++ {
		picked, err := pool.Pick(client)
		require.NoError(t, err)
		if picked == idle {
			idlePicks++
		}
	}

	require.GreaterOrEqualf(t, float64(idlePicks)/draws, 0.95,
		"two-of-N pick must send at least 95%% of calls to the lower-load channel, got %d/%d", idlePicks, draws)
}

func TestPickReturnsSoleCandidateUnderTwoChannels(t *testing.T) {
	pool := NewConnectionPoolWithPeriod(clockwork.NewFakeClock(), time.Minute)
	client := tunnelcommon.ClientID("agent-1")

	_, err := pool.Pick(client)
	require.True(t, trace.IsConnectionProblem(err))

	only := &Channel{ID: tunnelcommon.NewConnectionID()}
	pool.clients[client] = &incomingClients{channels: []*Channel{only}}
	picked, err := pool.Pick(client)
	require.NoError(t, err)
	require.Same(t, only, picked)
}

func TestPingOnceDetectsReplay(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pool := NewConnectionPoolWithPeriod(clock, time.Minute)
	ch := &Channel{ID: tunnelcommon.NewConnectionID()}

	client := fakeHealthClient{pingPong: func(ctx context.Context, req *tunnelproto.PingRequest) (*tunnelproto.PingResponse, error) {
		// The fake clock never advances during the call, so this reply
		// always arrives "faster" than the requested delay.
		return &tunnelproto.PingResponse{ConnectionId: req.ConnectionId}, nil
	}}

	err := pool.pingOnce(context.Background(), client, ch, 5*time.Second, time.Minute)
	require.ErrorIs(t, err, tunnelcommon.ErrHealthCheckReplay)
}

func TestPingOnceDetectsMismatchAndRemovesChannel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pool := NewConnectionPoolWithPeriod(clock, time.Minute)
	clientID := tunnelcommon.ClientID("agent-1")

	// remove() closes the channel's conn, so it needs a real (if never
	// connected) *grpc.ClientConn rather than a nil one.
	conn, err := grpc.Dial("passthrough:///pool-test", grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	ch := &Channel{ID: tunnelcommon.NewConnectionID(), conn: conn}
	pool.clients[clientID] = &incomingClients{channels: []*Channel{ch}}

	client := fakeHealthClient{pingPong: func(ctx context.Context, req *tunnelproto.PingRequest) (*tunnelproto.PingResponse, error) {
		return &tunnelproto.PingResponse{ConnectionId: "someone-else"}, nil
	}}

	pingErr := pool.pingOnce(context.Background(), client, ch, 0, time.Minute)
	require.ErrorIs(t, pingErr, tunnelcommon.ErrHealthCheckMismatch)

	// pingOnce only classifies the reply; healthLoop is what removes the
	// channel from the pool on a failed round, mirroring how Add wires
	// the two together.
	pool.remove(clientID, ch)
	_, err = pool.Pick(clientID)
	require.Error(t, err, "pool must have no channels left for this client")
}

func TestPingOnceAcceptsPlausibleReply(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pool := NewConnectionPoolWithPeriod(clock, time.Minute)
	ch := &Channel{ID: tunnelcommon.NewConnectionID()}

	client := fakeHealthClient{pingPong: func(ctx context.Context, req *tunnelproto.PingRequest) (*tunnelproto.PingResponse, error) {
		clock.Advance(10 * time.Second)
		return &tunnelproto.PingResponse{ConnectionId: req.ConnectionId}, nil
	}}

	err := pool.pingOnce(context.Background(), client, ch, 5*time.Second, time.Minute)
	require.NoError(t, err)
}

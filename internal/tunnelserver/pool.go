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
	"crypto/rand"
	"math/big"
	"os"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jonboulle/clockwork"
	"google.golang.org/grpc"

	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
	"github.com/terrazzo-project/terrazzo/internal/tunnelproto"
)

// defaultHealthCheckPeriod is the steady-state interval between
// PingPong rounds in production.
const defaultHealthCheckPeriod = 3*time.Minute + 45*time.Second

// debugHealthCheckPeriod is substituted for defaultHealthCheckPeriod
// when TERRAZZO_DEBUG_HEALTH_CHECK is set, per spec.md §4.4, so tests
// and local runs don't wait minutes between rounds.
const debugHealthCheckPeriod = 10 * time.Second

// healthCheckPeriodEnv names the environment variable that switches a
// ConnectionPool built with NewConnectionPool to debugHealthCheckPeriod.
const healthCheckPeriodEnv = "TERRAZZO_DEBUG_HEALTH_CHECK"

// Channel is one pooled gRPC connection to an agent, plus the
// outstanding-request counter the pool's load balancer compares.
type Channel struct {
	ID   tunnelcommon.ConnectionID
	conn *grpc.ClientConn
	load int64
}

// Load reports the channel's outstanding-request counter, implementing
// PendingRequests.Load from spec.md §3. Only begin and end move the
// counter and no RPC path in this module calls them, so a pooled
// channel's load stays at zero and Pick keeps the first of its two
// samples.
func (c *Channel) Load() int64 { return atomic.LoadInt64(&c.load) }

func (c *Channel) begin() { atomic.AddInt64(&c.load, 1) }
func (c *Channel) end()   { atomic.AddInt64(&c.load, -1) }

// Conn returns the underlying client connection, for issuing RPCs.
func (c *Channel) Conn() *grpc.ClientConn { return c.conn }

// incomingClients is one agent name's set of pooled channels.
type incomingClients struct {
	mu       sync.Mutex
	channels []*Channel
}

// ConnectionPool tracks every agent's pooled tunnel channels, keyed by
// the client name the agent presented, and load-balances outbound
// calls across them.
type ConnectionPool struct {
	mu      sync.RWMutex
	clients map[tunnelcommon.ClientID]*incomingClients
	health  *lru.Cache
	clock   clockwork.Clock
	period  time.Duration
}

// NewConnectionPool returns an empty pool driven by clock (a real clock
// if nil), checking health every defaultHealthCheckPeriod unless
// healthCheckPeriodEnv is set, in which case it checks every
// debugHealthCheckPeriod instead.
func NewConnectionPool(clock clockwork.Clock) *ConnectionPool {
	period := defaultHealthCheckPeriod
	if _, debug := os.LookupEnv(healthCheckPeriodEnv); debug {
		period = debugHealthCheckPeriod
	}
	return NewConnectionPoolWithPeriod(clock, period)
}

// NewConnectionPoolWithPeriod is NewConnectionPool with an explicit
// health check period, for tests that want deterministic timing
// without depending on healthCheckPeriodEnv.
func NewConnectionPoolWithPeriod(clock clockwork.Clock, period time.Duration) *ConnectionPool {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	cache, err := lru.New(1024)
	if err != nil {
		// lru.New only fails for a non-positive size, which is a fixed
		// constant above; this can't happen.
		panic(err)
	}
	return &ConnectionPool{
		clients: make(map[tunnelcommon.ClientID]*incomingClients),
		health:  cache,
		clock:   clock,
		period:  period,
	}
}

// Add registers a fresh tunnel conn under client, assigns it a
// ConnectionID, and starts its health-check loop. The loop removes the
// channel from the pool on its own once it fails.
func (p *ConnectionPool) Add(ctx context.Context, client tunnelcommon.ClientID, conn *grpc.ClientConn) *Channel {
	ch := &Channel{ID: tunnelcommon.NewConnectionID(), conn: conn}

	p.mu.Lock()
	ic, ok := p.clients[client]
	if !ok {
		ic = &incomingClients{}
		p.clients[client] = ic
	}
	p.mu.Unlock()

	ic.mu.Lock()
	ic.channels = append(ic.channels, ch)
	ic.mu.Unlock()

	log.WithFields(map[string]any{"client": client, "connection": ch.ID}).Info("tunnel channel added to pool")
	go p.healthLoop(ctx, client, ch)
	return ch
}

func (p *ConnectionPool) remove(client tunnelcommon.ClientID, ch *Channel) {
	p.mu.RLock()
	ic, ok := p.clients[client]
	p.mu.RUnlock()
	if !ok {
		return
	}
	ic.mu.Lock()
	defer ic.mu.Unlock()
	for i, c := range ic.channels {
		if c == ch {
			ic.channels = append(ic.channels[:i], ic.channels[i+1:]...)
			break
		}
	}
	_ = ch.conn.Close()
	log.WithFields(map[string]any{"client": client, "connection": ch.ID}).Warn("tunnel channel removed from pool")
}

// Pick selects a channel for client using two-of-N random choice: with
// fewer than two channels it returns the only candidate; otherwise it
// samples two distinct channels uniformly and returns whichever has
// fewer outstanding requests.
func (p *ConnectionPool) Pick(client tunnelcommon.ClientID) (*Channel, error) {
	p.mu.RLock()
	ic, ok := p.clients[client]
	p.mu.RUnlock()
	if !ok {
		return nil, tunnelcommon.ErrNoChannels
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()
	n := len(ic.channels)
	switch {
	case n == 0:
		return nil, tunnelcommon.ErrNoChannels
	case n == 1:
		return ic.channels[0], nil
	}

	i, err := randIndex(n)
	if err != nil {
		return nil, err
	}
	j, err := randIndex(n - 1)
	if err != nil {
		return nil, err
	}
	if j >= i {
		j++
	}
	a, b := ic.channels[i], ic.channels[j]
	if a.Load() <= b.Load() {
		return a, nil
	}
	return b, nil
}

func randIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// healthLoop implements the health check protocol from spec.md §4.4:
// an immediate zero-delay ping, then steady-state pings every p.period,
// each expected to take at least that long to return. Any timeout or
// an implausibly fast reply tears the channel down and removes it from
// the pool.
func (p *ConnectionPool) healthLoop(ctx context.Context, client tunnelcommon.ClientID, ch *Channel) {
	client_ := tunnelproto.NewHealthServiceClient(ch.conn)

	if err := p.pingOnce(ctx, client_, ch, 0, 5*time.Second); err != nil {
		log.WithError(err).WithField("connection", ch.ID).Warn("initial health check failed")
		p.remove(client, ch)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.clock.After(p.period):
		}
		if err := p.pingOnce(ctx, client_, ch, p.period, p.period+5*time.Second); err != nil {
			log.WithError(err).WithField("connection", ch.ID).Warn("health check failed")
			p.remove(client, ch)
			return
		}
	}
}

func (p *ConnectionPool) pingOnce(ctx context.Context, client tunnelproto.HealthServiceClient, ch *Channel, delay, timeout time.Duration) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := p.clock.Now()
	resp, err := client.PingPong(callCtx, &tunnelproto.PingRequest{
		ConnectionId: string(ch.ID),
		DelayMs:      delay.Milliseconds(),
	})
	if err != nil {
		return err
	}
	elapsed := p.clock.Now().Sub(started)
	if elapsed < delay {
		return tunnelcommon.ErrHealthCheckReplay
	}
	if resp.ConnectionId != string(ch.ID) {
		return tunnelcommon.ErrHealthCheckMismatch
	}
	p.health.Add(ch.ID, elapsed)
	return nil
}

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
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/terrazzo-project/terrazzo/internal/tunnelproto"
)

func TestCalculatorServerAddSub(t *testing.T) {
	calc := CalculatorServer{}

	sum, err := calc.Add(context.Background(), &tunnelproto.BinaryOpRequest{A: 7, B: 5})
	require.NoError(t, err)
	require.Equal(t, int64(12), sum.Result)

	diff, err := calc.Sub(context.Background(), &tunnelproto.BinaryOpRequest{A: 7, B: 5})
	require.NoError(t, err)
	require.Equal(t, int64(2), diff.Result)
}

func TestHealthServerPingPongEchoesConnectionID(t *testing.T) {
	h := HealthServer{}
	resp, err := h.PingPong(context.Background(), &tunnelproto.PingRequest{ConnectionId: "conn-1"})
	require.NoError(t, err)
	require.Equal(t, "conn-1", resp.ConnectionId)
}

func TestHealthServerPingPongHonorsDelay(t *testing.T) {
	h := HealthServer{}
	start := time.Now()
	_, err := h.PingPong(context.Background(), &tunnelproto.PingRequest{DelayMs: 50})
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestHealthServerPingPongCancelledContext(t *testing.T) {
	h := HealthServer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.PingPong(ctx, &tunnelproto.PingRequest{DelayMs: 5000})
	require.Error(t, err)
}

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
	"testing"
	"time"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"
)

func TestLeaseOutputRevokesPriorLease(t *testing.T) {
	entry := NewProcessIoEntry(&OutputReader{})
	ctx := context.Background()

	first, err := entry.LeaseOutput(ctx)
	require.NoError(t, err)

	select {
	case <-first.Signal():
		t.Fatal("first lease should not be revoked yet")
	default:
	}

	done := make(chan struct{})
	go func() {
		<-first.Signal()
		first.Release()
		close(done)
	}()

	second, err := entry.LeaseOutput(ctx)
	require.NoError(t, err)
	require.NotNil(t, second)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("first lease was never revoked")
	}
}

func TestLeaseOutputFailsOnMissingExchange(t *testing.T) {
	entry := &ProcessIoEntry{}
	_, err := entry.LeaseOutput(context.Background())
	require.Error(t, err)
	require.True(t, trace.IsNotFound(err))
}

// blockingOutput never returns from Read, standing in for a PTY that is
// truly idle: no data, no EOF, ever.
type blockingOutput struct{}

func (blockingOutput) Read() OutputFrame {
	select {}
}

func TestStreamObservesRevocationWhileReadIsBlocked(t *testing.T) {
	entry := NewProcessIoEntry(blockingOutput{})
	ctx := context.Background()

	first, err := entry.LeaseOutput(ctx)
	require.NoError(t, err)

	frames := first.Stream(ctx)

	done := make(chan struct{})
	go func() {
		// Revoking here races LeaseOutput's hand-off against the first
		// lease's Stream goroutine, which is parked inside a Read call
		// that will never return: on an idle terminal this reproduces
		// the documented re-attach-after-idle scenario.
		_, err := entry.LeaseOutput(ctx)
		require.NoError(t, err)
		close(done)
	}()

	select {
	case frame, ok := <-frames:
		require.True(t, ok)
		require.True(t, frame.EOS, "revocation must surface as EOS, not hang")
	case <-time.After(time.Second):
		t.Fatal("stream never observed revocation while blocked in Read")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second LeaseOutput never completed hand-off")
	}
}

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

package tunnelproto

import (
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"
)

func TestWriteRequestRoundTrips(t *testing.T) {
	want := &WriteRequest{TerminalId: "term-1", Data: []byte("echo hi\n")}

	raw, err := proto.Marshal(want)
	require.NoError(t, err)

	got := &WriteRequest{}
	require.NoError(t, proto.Unmarshal(raw, got))
	require.Equal(t, want.TerminalId, got.TerminalId)
	require.Equal(t, want.Data, got.Data)
}

func TestPingRequestRoundTrips(t *testing.T) {
	want := &PingRequest{DelayMs: 250}

	raw, err := proto.Marshal(want)
	require.NoError(t, err)

	got := &PingRequest{}
	require.NoError(t, proto.Unmarshal(raw, got))
	require.Equal(t, want.DelayMs, got.DelayMs)
}

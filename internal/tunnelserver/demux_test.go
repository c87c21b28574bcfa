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
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIsTLSClientHello(t *testing.T) {
	clientHello := []byte{0x16, 0x03, 0x01, 0x00, 0x05, 0x01, 0x00, 0x00, 0x01, 0x03, 0x03}
	require.True(t, IsTLSClientHello(clientHello))

	plainHTTP := []byte("GET /.well-known/acme-challenge/tok HTTP/1.1\r\n")
	require.False(t, IsTLSClientHello(plainHTTP))

	require.False(t, IsTLSClientHello([]byte{0x16, 0x03}))
}

func TestDemuxRoutesByPrefix(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	demux := NewDemux(listener)
	defer demux.Close()

	go func() {
		conn, err := net.Dial("tcp", listener.Addr().String())
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	}()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := demux.HTTP().Accept()
		if err == nil {
			accepted <- c
		}
	}()

	select {
	case conn := <-accepted:
		defer conn.Close()
		buf := make([]byte, 3)
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, err := conn.Read(buf)
		require.NoError(t, err)
		require.Equal(t, "GET", string(buf[:n]))
	case <-time.After(3 * time.Second):
		t.Fatal("plaintext connection was not routed to the HTTP listener")
	}
}

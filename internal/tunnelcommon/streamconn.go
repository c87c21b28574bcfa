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

package tunnelcommon

import (
	"io"
	"net"
	"time"
)

// StreamConn adapts an io.ReadWriteCloser, such as a WSByteStream, to
// net.Conn so it can be wrapped by crypto/tls and dialed into by grpc's
// custom dialer. Deadlines are no-ops: the underlying stream has no
// concept of them.
type StreamConn struct {
	io.ReadWriteCloser
}

func (StreamConn) LocalAddr() net.Addr             { return streamAddr{} }
func (StreamConn) RemoteAddr() net.Addr            { return streamAddr{} }
func (StreamConn) SetDeadline(time.Time) error      { return nil }
func (StreamConn) SetReadDeadline(time.Time) error  { return nil }
func (StreamConn) SetWriteDeadline(time.Time) error { return nil }

type streamAddr struct{}

func (streamAddr) Network() string { return "tunnel" }
func (streamAddr) String() string  { return "tunnel" }

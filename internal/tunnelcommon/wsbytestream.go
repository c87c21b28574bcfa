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

	"github.com/gorilla/websocket"
	"github.com/gravitational/trace"
)

// WSByteStream adapts a gorilla websocket connection to io.ReadWriteCloser
// by mapping each inbound binary frame to a Read and each Write to a
// single outbound frame. It is oblivious to message boundaries above the
// byte level.
type WSByteStream struct {
	conn   *websocket.Conn
	reader io.Reader
}

// NewWSByteStream wraps conn.
func NewWSByteStream(conn *websocket.Conn) *WSByteStream {
	return &WSByteStream{conn: conn}
}

func (s *WSByteStream) Read(p []byte) (int, error) {
	for s.reader == nil {
		_, r, err := s.conn.NextReader()
		if err != nil {
			return 0, trace.ConnectionProblem(err, "websocket read")
		}
		s.reader = r
	}
	n, err := s.reader.Read(p)
	if err == io.EOF {
		s.reader = nil
		return n, nil
	}
	if err != nil {
		return n, trace.ConnectionProblem(err, "websocket read")
	}
	return n, nil
}

func (s *WSByteStream) Write(p []byte) (int, error) {
	if err := s.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, trace.ConnectionProblem(err, "websocket write")
	}
	return len(p), nil
}

// Close closes the underlying websocket connection.
func (s *WSByteStream) Close() error {
	return s.conn.Close()
}

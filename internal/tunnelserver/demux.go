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
	"bytes"
	"io"
	"net"

	"github.com/gravitational/trace"
)

// sniffLen is how many bytes of each accepted connection the demux
// inspects before routing it, per spec.md §4.6.
const sniffLen = 11

// IsTLSClientHello reports whether prefix (at least sniffLen bytes)
// looks like the start of a TLS 1.x ClientHello record: a TLS 1.0
// record header, a ClientHello handshake type, and a TLS 1.2 client
// version inside the handshake body. Real browsers and Go's own
// crypto/tls client always emit this shape regardless of the
// negotiated version, so it is a reliable discriminator even against
// TLS 1.3 clients.
func IsTLSClientHello(prefix []byte) bool {
	if len(prefix) < sniffLen {
		return false
	}
	return bytes.Equal(prefix[0:3], []byte{0x16, 0x03, 0x01}) &&
		prefix[5] == 0x01 &&
		bytes.Equal(prefix[9:11], []byte{0x03, 0x03})
}

// Demux sniffs the first sniffLen bytes of each connection accepted
// from an underlying listener and routes it to either a TLS listener or
// a plaintext listener, depending on IsTLSClientHello.
type Demux struct {
	tls  *demuxListener
	http *demuxListener
	done chan struct{}
}

// NewDemux wraps inner and starts the accept-and-route loop right
// away; Close stops it.
func NewDemux(inner net.Listener) *Demux {
	d := &Demux{
		tls:  newDemuxListener(inner.Addr()),
		http: newDemuxListener(inner.Addr()),
		done: make(chan struct{}),
	}
	go d.run(inner)
	return d
}

// TLS returns the listener that yields TLS ClientHello connections.
func (d *Demux) TLS() net.Listener { return d.tls }

// HTTP returns the listener that yields plaintext connections.
func (d *Demux) HTTP() net.Listener { return d.http }

// Close stops routing and closes both downstream listeners.
func (d *Demux) Close() {
	select {
	case <-d.done:
	default:
		close(d.done)
	}
	d.tls.close(trace.ConnectionProblem(nil, "demux closed"))
	d.http.close(trace.ConnectionProblem(nil, "demux closed"))
}

func (d *Demux) run(inner net.Listener) {
	for {
		conn, err := inner.Accept()
		if err != nil {
			d.tls.close(trace.Wrap(err))
			d.http.close(trace.Wrap(err))
			return
		}
		go d.route(conn)
	}
}

func (d *Demux) route(conn net.Conn) {
	prefix := make([]byte, sniffLen)
	if _, err := io.ReadFull(conn, prefix); err != nil {
		log.WithError(err).Debug("demux: short read, dropping connection")
		_ = conn.Close()
		return
	}
	sniffed := &sniffedConn{Conn: conn, prefix: prefix}
	if IsTLSClientHello(prefix) {
		d.tls.push(sniffed)
	} else {
		d.http.push(sniffed)
	}
}

// sniffedConn re-prepends the sniffed prefix ahead of the connection's
// remaining bytes so the downstream handler is oblivious to the sniff.
type sniffedConn struct {
	net.Conn
	prefix []byte
	read   int
}

func (c *sniffedConn) Read(p []byte) (int, error) {
	if c.read < len(c.prefix) {
		n := copy(p, c.prefix[c.read:])
		c.read += n
		return n, nil
	}
	return c.Conn.Read(p)
}

// demuxListener is a net.Listener fed by Demux's routing goroutine
// instead of its own Accept loop on a real socket.
type demuxListener struct {
	addr net.Addr
	ch   chan net.Conn
	errs chan error
}

func newDemuxListener(addr net.Addr) *demuxListener {
	return &demuxListener{addr: addr, ch: make(chan net.Conn, 64), errs: make(chan error, 1)}
}

func (l *demuxListener) push(conn net.Conn) {
	select {
	case l.ch <- conn:
	default:
		log.Warn("demux: downstream listener backlog full, dropping connection")
		_ = conn.Close()
	}
}

func (l *demuxListener) close(err error) {
	select {
	case l.errs <- err:
	default:
	}
	close(l.ch)
}

func (l *demuxListener) Accept() (net.Conn, error) {
	conn, ok := <-l.ch
	if !ok {
		select {
		case err := <-l.errs:
			return nil, err
		default:
			return nil, trace.ConnectionProblem(nil, "demux listener closed")
		}
	}
	return conn, nil
}

func (l *demuxListener) Close() error { return nil }
func (l *demuxListener) Addr() net.Addr { return l.addr }

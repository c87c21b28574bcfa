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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/gravitational/trace"
	"github.com/julienschmidt/httprouter"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
	"github.com/terrazzo-project/terrazzo/internal/x509ext"
)

// gatewayIdentityValidity is how long the gateway's own short-lived
// tunnel-dialing identity is valid for before TunnelHandler mints a
// fresh one.
const gatewayIdentityValidity = 24 * time.Hour

// TunnelHandler accepts an agent's incoming websocket at
// /remote/tunnel/:client, completes the inner TLS handshake with the
// gateway playing the TLS client role against the agent's server role,
// and adds the resulting grpc.ClientConn to pool.
type TunnelHandler struct {
	pool     *ConnectionPool
	ca       *RootCA
	upgrader websocket.Upgrader

	mu       sync.Mutex
	identity *tls.Certificate
	validTo  time.Time
}

// NewTunnelHandler returns a handler that pools accepted tunnels into
// pool, trusting and signing against ca.
func NewTunnelHandler(pool *ConnectionPool, ca *RootCA) *TunnelHandler {
	return &TunnelHandler{pool: pool, ca: ca}
}

// Handle implements httprouter.Handle for POST/GET /remote/tunnel/:client.
func (h *TunnelHandler) Handle(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	client := tunnelcommon.ClientID(p.ByName("client"))
	if client == "" {
		tunnelcommon.WriteError(w, trace.BadParameter("missing client name"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	// r.Context() is cancelled as soon as Handle returns, so the tunnel
	// runs under its own context.
	go h.serve(context.Background(), client, conn)
}

func (h *TunnelHandler) serve(ctx context.Context, client tunnelcommon.ClientID, wsConn *websocket.Conn) {
	stream := tunnelcommon.NewWSByteStream(wsConn)
	netConn := tunnelcommon.StreamConn{ReadWriteCloser: stream}

	roots, err := h.ca.RootPool()
	if err != nil {
		log.WithError(err).Warn("load trust roots for tunnel handshake")
		_ = netConn.Close()
		return
	}
	identity, err := h.selfIdentity()
	if err != nil {
		log.WithError(err).Warn("mint gateway tunnel identity")
		_ = netConn.Close()
		return
	}

	tlsConn := tls.Client(netConn, &tls.Config{
		Certificates:       []tls.Certificate{*identity},
		RootCAs:            roots,
		ServerName:         string(client),
		InsecureSkipVerify: true, // verified explicitly below: agents' CNs are arbitrary, not DNS names
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			return verifyAgentCertificate(rawCerts, roots, string(client))
		},
	})
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		log.WithError(err).WithField("client", client).Warn("inner tls handshake failed")
		_ = netConn.Close()
		return
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	clientConn, err := grpc.DialContext(dialCtx, "tunnel",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return tlsConn, nil }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithBlock(),
	)
	if err != nil {
		log.WithError(err).WithField("client", client).Warn("dial grpc over tunnel")
		_ = tlsConn.Close()
		return
	}

	ch := h.pool.Add(ctx, client, clientConn)
	log.WithField("client", client).WithField("connection", ch.ID).Info("agent tunnel accepted")
}

// verifyAgentCertificate checks the agent's leaf certificate carries a
// signed extension issued for expectedClient, in place of the hostname
// verification tls.Config would otherwise perform.
func verifyAgentCertificate(rawCerts [][]byte, roots *x509.CertPool, expectedClient string) error {
	if len(rawCerts) == 0 {
		return trace.AccessDenied("agent presented no certificate")
	}
	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return trace.Wrap(err, "parse agent certificate")
	}
	if cert.Subject.CommonName != expectedClient {
		return trace.AccessDenied("agent certificate CN %q does not match client name %q", cert.Subject.CommonName, expectedClient)
	}
	return trace.Wrap(x509ext.Verify(cert, roots, "terrazzo-root-ca"))
}

// selfIdentity returns the gateway's own short-lived client certificate
// for the inner tunnel handshake, minting a fresh one if none is cached
// or the cached one has expired.
func (h *TunnelHandler) selfIdentity() (*tls.Certificate, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.identity != nil && time.Now().Before(h.validTo) {
		return h.identity, nil
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, trace.Wrap(err, "generate gateway tunnel identity key")
	}
	now := time.Now()
	notBefore, notAfter := now.Add(-time.Minute), now.Add(gatewayIdentityValidity)
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, trace.Wrap(err, "marshal gateway identity public key")
	}
	hash := x509ext.PropertiesHash("terrazzo-gateway", notBefore, notAfter, pubDER)
	signed, err := x509ext.Sign(hash, h.ca.Cert, h.ca.Key, nil)
	if err != nil {
		return nil, trace.Wrap(err, "sign gateway identity extension")
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, trace.Wrap(err, "generate gateway identity serial")
	}
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "terrazzo-gateway"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		ExtraExtensions: []pkix.Extension{
			{Id: x509ext.OID, Value: signed},
		},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, h.ca.Cert, &key.PublicKey, h.ca.Key)
	if err != nil {
		return nil, trace.Wrap(err, "issue gateway identity certificate")
	}

	cert := &tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
	h.identity, h.validTo = cert, notAfter
	return cert, nil
}

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
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gravitational/trace"

	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
)

// Identity is the agent's persisted key and gateway-issued certificate,
// the pair it presents as the TLS server in the tunnel's inner
// handshake.
type Identity struct {
	Key  *ecdsa.PrivateKey
	Cert *x509.Certificate
	raw  tls.Certificate
}

// TLSCertificate returns the identity in the form crypto/tls expects.
func (id *Identity) TLSCertificate() tls.Certificate {
	return id.raw
}

// LoadOrEnroll loads dataDir's persisted key/certificate pair, or, if
// absent, generates a key and enrolls with the gateway at baseURL using
// authCode, persisting the result. Mirrors the file-pair invariant
// tunnelserver.LoadOrBootstrapRootCA enforces for the root CA.
func LoadOrEnroll(baseURL, clientName, authCode, dataDir string) (*Identity, error) {
	keyPath := filepath.Join(dataDir, "agent.key")
	certPath := filepath.Join(dataDir, "agent.crt")

	_, keyErr := os.Stat(keyPath)
	_, certErr := os.Stat(certPath)
	switch {
	case keyErr == nil && certErr == nil:
		return loadIdentity(keyPath, certPath)
	case os.IsNotExist(keyErr) && os.IsNotExist(certErr):
		return enroll(baseURL, clientName, authCode, dataDir, keyPath, certPath)
	default:
		return nil, trace.BadParameter("agent identity file pair is inconsistent: %s / %s must both exist or neither", keyPath, certPath)
	}
}

func loadIdentity(keyPath, certPath string) (*Identity, error) {
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, trace.Wrap(err, "read agent key")
	}
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, trace.Wrap(err, "read agent certificate")
	}
	return identityFromPEM(keyPEM, certPEM)
}

func identityFromPEM(keyPEM, certPEM []byte) (*Identity, error) {
	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, trace.BadParameter("agent key is not valid PEM")
	}
	key, err := x509.ParseECPrivateKey(keyBlock.Bytes)
	if err != nil {
		return nil, trace.Wrap(err, "parse agent key")
	}
	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil {
		return nil, trace.BadParameter("agent certificate is not valid PEM")
	}
	cert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, trace.Wrap(err, "parse agent certificate")
	}
	raw, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, trace.Wrap(err, "build tls certificate")
	}
	return &Identity{Key: key, Cert: cert, raw: raw}, nil
}

// enroll requests a fresh certificate from the gateway's
// POST /remote/certificate endpoint, presenting authCode and the
// newly generated public key, then persists the key/cert pair.
func enroll(baseURL, clientName, authCode, dataDir, keyPath, certPath string) (*Identity, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, trace.Wrap(err, "generate agent key")
	}
	pubPEM, err := tunnelcommon.MarshalPublicKeyPEM(key)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	body := struct {
		AuthCode  string `json:"auth_code"`
		Name      string `json:"name"`
		PublicKey string `json:"public_key"`
	}{AuthCode: authCode, Name: clientName, PublicKey: string(pubPEM)}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, trace.Wrap(err, "encode certificate request")
	}

	resp, err := http.Post(baseURL+"/remote/certificate", "application/json", &buf)
	if err != nil {
		return nil, trace.ConnectionProblem(err, "request agent certificate")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, trace.ConnectionProblem(nil, "certificate request failed: %s", resp.Header.Get("x-error-description"))
	}
	certPEM, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, trace.Wrap(err, "read issued certificate")
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, trace.Wrap(err, "marshal agent key")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, trace.Wrap(err, "create data dir")
	}
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		return nil, trace.Wrap(err, "persist agent key")
	}
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return nil, trace.Wrap(err, "persist agent certificate")
	}
	log.WithField("client", clientName).Info("agent enrolled with gateway")

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return identityFromPEM(keyPEM, certPEM)
}

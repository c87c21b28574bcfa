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
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gravitational/trace"
)

// rootValidity is how long a freshly bootstrapped root CA is valid for.
const rootValidity = 10 * 365 * 24 * time.Hour

// RootCA is the self-issued certificate authority signed-extension
// verification trusts, and that CertificateIssuance signs leaf
// certificates under.
type RootCA struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// LoadOrBootstrapRootCA loads the root CA's PEM pair from dataDir,
// generating and persisting a fresh one if neither file exists. The two
// files obey the persisted-state invariant from spec.md §6: both must
// exist, or neither does.
func LoadOrBootstrapRootCA(dataDir string) (*RootCA, error) {
	certPath := filepath.Join(dataDir, "root_ca.crt")
	keyPath := filepath.Join(dataDir, "root_ca.key")

	_, certErr := os.Stat(certPath)
	_, keyErr := os.Stat(keyPath)
	switch {
	case certErr == nil && keyErr == nil:
		return loadRootCA(certPath, keyPath)
	case os.IsNotExist(certErr) && os.IsNotExist(keyErr):
		return bootstrapRootCA(dataDir, certPath, keyPath)
	default:
		return nil, trace.BadParameter("root CA file pair is inconsistent: %s / %s must both exist or neither", certPath, keyPath)
	}
}

func loadRootCA(certPath, keyPath string) (*RootCA, error) {
	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, trace.Wrap(err, "read root CA certificate")
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, trace.Wrap(err, "read root CA key")
	}
	certBlock, _ := pem.Decode(certPEM)
	if certBlock == nil {
		return nil, trace.BadParameter("root CA certificate is not valid PEM")
	}
	cert, err := x509.ParseCertificate(certBlock.Bytes)
	if err != nil {
		return nil, trace.Wrap(err, "parse root CA certificate")
	}
	keyBlock, _ := pem.Decode(keyPEM)
	if keyBlock == nil {
		return nil, trace.BadParameter("root CA key is not valid PEM")
	}
	key, err := x509.ParseECPrivateKey(keyBlock.Bytes)
	if err != nil {
		return nil, trace.Wrap(err, "parse root CA key")
	}
	log.Info("root CA loaded from data dir")
	return &RootCA{Cert: cert, Key: key}, nil
}

func bootstrapRootCA(dataDir, certPath, keyPath string) (*RootCA, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, trace.Wrap(err, "generate root CA key")
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, trace.Wrap(err, "generate root CA serial")
	}
	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "terrazzo-root-ca"},
		NotBefore:             now.Add(-time.Hour),
		NotAfter:              now.Add(rootValidity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, trace.Wrap(err, "self-sign root CA")
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, trace.Wrap(err, "parse freshly signed root CA")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, trace.Wrap(err, "create data dir")
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, trace.Wrap(err, "marshal root CA key")
	}
	if err := os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o644); err != nil {
		return nil, trace.Wrap(err, "persist root CA certificate")
	}
	if err := os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600); err != nil {
		return nil, trace.Wrap(err, "persist root CA key")
	}
	log.Info("root CA bootstrapped")
	return &RootCA{Cert: cert, Key: key}, nil
}

// RootPool returns a cert pool trusting only this root CA, satisfying
// tunnelcommon.TrustStore.
func (r *RootCA) RootPool() (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	pool.AddCert(r.Cert)
	return pool, nil
}

// ServeHTTP implements GET /remote/ca, handing out the root CA
// certificate in PEM form so an agent enrolling for the first time can
// populate its trust store without an out-of-band file.
func (r *RootCA) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/x-pem-file")
	_, _ = w.Write(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: r.Cert.Raw}))
}

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
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gravitational/trace"
	"golang.org/x/crypto/acme"

	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
)

// ErrCertificatePending is returned by AcmeCertificateConfig.Certificate
// while the background acquisition has not produced a certificate yet.
var ErrCertificatePending = trace.ConnectionProblem(nil, "certificate acquisition pending")

// acmeAccountState is the account key and account URL persisted across
// restarts, keeping the gateway from re-registering with the CA on
// every boot.
type acmeAccountState struct {
	AccountKeyDER []byte `cbor:"account_key"`
	AccountURL    string `cbor:"account_url"`
}

// AcmeCertificateConfig acquires the gateway's own TLS server
// certificate via ACME HTTP-01, per spec.md §4.5. It acquires once per
// process; nothing renews the certificate before it expires.
type AcmeCertificateConfig struct {
	domain    string
	directory string
	dataDir   string

	mu         sync.RWMutex
	cert       *tls.Certificate
	started    bool
	challenges *challengeMap
	lastErr    error
}

// NewAcmeCertificateConfig returns a driver for domain, talking to
// directoryURL, persisting account/certificate state under dataDir.
func NewAcmeCertificateConfig(domain, directoryURL, dataDir string) *AcmeCertificateConfig {
	return &AcmeCertificateConfig{
		domain:     domain,
		directory:  directoryURL,
		dataDir:    dataDir,
		challenges: newChallengeMap(),
	}
}

// Challenges exposes the active-challenges map the /.well-known/acme-challenge
// HTTP handler consults.
func (a *AcmeCertificateConfig) Challenges() *challengeMap { return a.challenges }

// Certificate returns the current certificate, ErrCertificatePending
// while the first acquisition is still running (starting it on first
// call), or the last acquisition error if one occurred.
func (a *AcmeCertificateConfig) Certificate() (*tls.Certificate, error) {
	a.mu.Lock()
	if a.cert != nil {
		cert := a.cert
		a.mu.Unlock()
		return cert, nil
	}
	if a.lastErr != nil {
		err := a.lastErr
		a.mu.Unlock()
		return nil, err
	}
	if !a.started {
		a.started = true
		a.mu.Unlock()
		go a.acquire()
		return nil, ErrCertificatePending
	}
	a.mu.Unlock()
	return nil, ErrCertificatePending
}

func (a *AcmeCertificateConfig) acquire() {
	if err := a.acquireOnce(context.Background()); err != nil {
		log.WithError(err).Error("acme: certificate acquisition failed")
		a.mu.Lock()
		a.lastErr = trace.Wrap(err)
		a.mu.Unlock()
	}
}

func (a *AcmeCertificateConfig) acquireOnce(ctx context.Context) error {
	accountKey, err := a.loadOrCreateAccount(ctx)
	if err != nil {
		return trace.Wrap(err, "acme account")
	}
	client := &acme.Client{Key: accountKey, DirectoryURL: a.directory}

	order, err := client.AuthorizeOrder(ctx, []acme.AuthzID{{Type: "dns", Value: a.domain}})
	if err != nil {
		return trace.Wrap(err, "authorize order")
	}

	for _, authzURL := range order.AuthzURLs {
		authz, err := client.GetAuthorization(ctx, authzURL)
		if err != nil {
			return trace.Wrap(err, "get authorization")
		}
		var challenge *acme.Challenge
		for _, c := range authz.Challenges {
			if c.Type == "http-01" {
				challenge = c
				break
			}
		}
		if challenge == nil {
			return trace.NotFound("no http-01 challenge offered for %s", a.domain)
		}
		keyAuth, err := client.HTTP01ChallengeResponse(challenge.Token)
		if err != nil {
			return trace.Wrap(err, "build key authorization")
		}
		a.challenges.put(challenge.Token, keyAuth)
		defer a.challenges.remove(challenge.Token)

		if _, err := client.Accept(ctx, challenge); err != nil {
			return trace.Wrap(err, "accept challenge")
		}
	}

	order, err = a.pollOrder(ctx, client, order)
	if err != nil {
		return trace.Wrap(err)
	}

	leafKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return trace.Wrap(err, "generate leaf key")
	}
	csr, err := buildCSR(a.domain, leafKey)
	if err != nil {
		return trace.Wrap(err, "build csr")
	}
	derChain, _, err := client.CreateOrderCert(ctx, order.FinalizeURL, csr, true)
	if err != nil {
		return trace.Wrap(err, "finalize order")
	}

	keyDER, err := x509.MarshalECPrivateKey(leafKey)
	if err != nil {
		return trace.Wrap(err, "marshal leaf key")
	}
	tlsCert := tls.Certificate{Certificate: derChain, PrivateKey: leafKey}
	if err := a.persistCertificate(derChain, keyDER); err != nil {
		return trace.Wrap(err, "persist certificate")
	}

	a.mu.Lock()
	a.cert = &tlsCert
	a.lastErr = nil
	a.mu.Unlock()
	log.WithField("domain", a.domain).Info("acme: certificate acquired")
	return nil
}

// pollOrder polls order until it reaches Ready or Invalid, backing off
// exponentially starting at 250ms and doubling, for up to 5 tries.
func (a *AcmeCertificateConfig) pollOrder(ctx context.Context, client *acme.Client, order *acme.Order) (*acme.Order, error) {
	delay := 250 * time.Millisecond
	for attempt := 0; attempt < 5; attempt++ {
		refreshed, err := client.GetOrder(ctx, order.URI)
		if err != nil {
			return nil, trace.Wrap(err, "poll order")
		}
		switch refreshed.Status {
		case acme.StatusReady, acme.StatusValid:
			return refreshed, nil
		case acme.StatusInvalid:
			return nil, trace.BadParameter("acme order became invalid")
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, trace.Wrap(ctx.Err())
		}
		delay *= 2
	}
	return nil, trace.ConnectionProblem(nil, "acme order did not become ready in time")
}

func (a *AcmeCertificateConfig) loadOrCreateAccount(ctx context.Context) (*ecdsa.PrivateKey, error) {
	path := filepath.Join(a.dataDir, "acme_account.cbor")
	if data, err := os.ReadFile(path); err == nil {
		var state acmeAccountState
		if err := cbor.Unmarshal(data, &state); err != nil {
			return nil, trace.Wrap(err, "decode acme account state")
		}
		key, err := x509.ParseECPrivateKey(state.AccountKeyDER)
		if err != nil {
			return nil, trace.Wrap(err, "parse acme account key")
		}
		return key, nil
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, trace.Wrap(err, "generate acme account key")
	}
	client := &acme.Client{Key: key, DirectoryURL: a.directory}
	account, err := client.Register(ctx, &acme.Account{}, acme.AcceptTOS)
	if err != nil {
		return nil, trace.Wrap(err, "register acme account")
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, trace.Wrap(err, "marshal acme account key")
	}
	state := acmeAccountState{AccountKeyDER: keyDER, AccountURL: account.URI}
	encoded, err := cbor.Marshal(state)
	if err != nil {
		return nil, trace.Wrap(err, "encode acme account state")
	}
	if err := os.MkdirAll(a.dataDir, 0o700); err != nil {
		return nil, trace.Wrap(err, "create data dir")
	}
	if err := os.WriteFile(path, encoded, 0o600); err != nil {
		return nil, trace.Wrap(err, "persist acme account state")
	}
	return key, nil
}

func (a *AcmeCertificateConfig) persistCertificate(derChain [][]byte, keyDER []byte) error {
	var buf bytes.Buffer
	for _, der := range derChain {
		if err := pem.Encode(&buf, &pem.Block{Type: "CERTIFICATE", Bytes: der}); err != nil {
			return err
		}
	}
	if err := os.WriteFile(filepath.Join(a.dataDir, "acme_leaf.crt"), buf.Bytes(), 0o644); err != nil {
		return err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return os.WriteFile(filepath.Join(a.dataDir, "acme_leaf.key"), keyPEM, 0o600)
}

func buildCSR(domain string, key *ecdsa.PrivateKey) ([]byte, error) {
	return tunnelcommon.BuildCSR(domain, key)
}

// challengeMap is the process-wide active-challenges table the
// /.well-known/acme-challenge HTTP handler reads from.
type challengeMap struct {
	mu    sync.RWMutex
	items map[string]string
}

func newChallengeMap() *challengeMap {
	return &challengeMap{items: make(map[string]string)}
}

func (m *challengeMap) put(token, keyAuth string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[token] = keyAuth
}

func (m *challengeMap) remove(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, token)
}

// lookup returns the key authorization stored for token, if any.
func (m *challengeMap) lookup(token string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[token]
	return v, ok
}

// Handler returns the key authorization for token, 404ing unknown tokens.
func (a *AcmeCertificateConfig) Handler(token string) (string, error) {
	keyAuth, ok := a.challenges.lookup(token)
	if !ok {
		return "", trace.NotFound("no active challenge for token %s", token)
	}
	return keyAuth, nil
}

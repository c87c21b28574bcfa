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
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"time"

	"github.com/gravitational/trace"

	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
	"github.com/terrazzo-project/terrazzo/internal/x509ext"
)

// leafValidity is the longest validity period CertificateIssuance will
// ever grant a leaf certificate, regardless of what a caller requests.
const leafValidity = 90 * 24 * time.Hour

// CertificateIssuance issues signed-extension client certificates
// chained to a RootCA, gated by an AuthCode.
type CertificateIssuance struct {
	ca       *RootCA
	authCode *tunnelcommon.AuthCode
}

// NewCertificateIssuance builds an issuer backed by ca, gated by code.
func NewCertificateIssuance(ca *RootCA, code *tunnelcommon.AuthCode) *CertificateIssuance {
	return &CertificateIssuance{ca: ca, authCode: code}
}

type certificateRequest struct {
	AuthCode  string `json:"auth_code"`
	Name      string `json:"name"`
	PublicKey string `json:"public_key"`
}

// ServeHTTP implements POST /remote/certificate.
func (c *CertificateIssuance) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var body certificateRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		tunnelcommon.WriteError(w, trace.BadParameter("decode certificate request: %v", err))
		return
	}
	pemCert, err := c.Issue(body.AuthCode, body.Name, []byte(body.PublicKey))
	if err != nil {
		tunnelcommon.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-pem-file")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pemCert)
}

// Issue validates authCode, then issues a leaf certificate for name
// bound to publicKeyPEM, carrying the signed extension described in
// spec.md §4.4.
func (c *CertificateIssuance) Issue(authCode, name string, publicKeyPEM []byte) ([]byte, error) {
	if !c.authCode.IsValid(authCode) {
		return nil, trace.Wrap(tunnelcommon.ErrInvalidAuthCode)
	}

	block, _ := pem.Decode(publicKeyPEM)
	if block == nil {
		return nil, trace.BadParameter("public key is not valid PEM")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, trace.BadParameter("parse public key: %v", err)
	}

	now := time.Now()
	notBefore := now.Add(-time.Minute)
	notAfter := minTime(now.Add(leafValidity), c.ca.Cert.NotAfter)

	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, trace.Wrap(err, "marshal leaf public key")
	}
	hash := x509ext.PropertiesHash(name, notBefore, notAfter, pubDER)
	signed, err := x509ext.Sign(hash, c.ca.Cert, c.ca.Key, nil)
	if err != nil {
		return nil, trace.Wrap(err, "sign extension")
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, trace.Wrap(err, "generate leaf serial")
	}
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: name},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		ExtraExtensions: []pkix.Extension{
			{Id: x509ext.OID, Value: signed},
		},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, c.ca.Cert, pub, c.ca.Key)
	if err != nil {
		return nil, trace.Wrap(err, "issue leaf certificate")
	}
	log.WithField("name", name).Info("certificate issued")
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), nil
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

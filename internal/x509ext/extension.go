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

package x509ext

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"strings"
	"time"

	"github.com/gravitational/trace"
	"go.mozilla.org/pkcs7"
)

// OID identifies the custom certificate extension carrying the signed
// (CN, validity, public key) binding.
var OID = asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 311, 10, 99, 1}

// maxValidity is the 90-day issuance cap. Nothing in this package
// applies it; tunnelserver enforces the cap with its own leafValidity.
const maxValidity = 90 * 24 * time.Hour

// PropertiesHash computes the SHA256 digest binding name, the validity
// window and the subject's public key together: SHA256 over the
// colon-delimited plaintext "name:notBefore:notAfter:" (Unix seconds)
// followed by the SHA256 of publicKeyDER.
func PropertiesHash(name string, notBefore, notAfter time.Time, publicKeyDER []byte) []byte {
	return hashPrefix(name, notBefore, notAfter, publicKeyDER)
}

func hashPrefix(name string, notBefore, notAfter time.Time, publicKeyDER []byte) []byte {
	keyHash := sha256.Sum256(publicKeyDER)
	prefix := fmt.Sprintf("%s:%d:%d:", name, notBefore.Unix(), notAfter.Unix())
	h := sha256.New()
	h.Write([]byte(prefix))
	h.Write(keyHash[:])
	return h.Sum(nil)
}

// Sign produces a detached CMS (PKCS#7) signature over hash, signed by
// signerKey/signerCert, with intermediates attached for chain building
// during verification.
func Sign(hash []byte, signerCert *x509.Certificate, signerKey crypto.Signer, intermediates []*x509.Certificate) ([]byte, error) {
	sd, err := pkcs7.NewSignedData(hash)
	if err != nil {
		return nil, trace.Wrap(err, "initialize signed data")
	}
	for _, ic := range intermediates {
		sd.AddCertificate(ic)
	}
	if err := sd.AddSigner(signerCert, signerKey, pkcs7.SignerInfoConfig{}); err != nil {
		return nil, trace.Wrap(err, "add signer")
	}
	out, err := sd.Finish()
	if err != nil {
		return nil, trace.Wrap(err, "finish signed data")
	}
	return out, nil
}

// Verify locates the custom extension on cert, checks its CMS signature
// against roots, confirms the signer's CN matches expectedSigner, and
// confirms the signed hash matches cert's own (CN, validity, public key).
func Verify(cert *x509.Certificate, roots *x509.CertPool, expectedSigner string) error {
	var raw []byte
	found := false
	for _, ext := range cert.Extensions {
		if ext.Id.Equal(OID) {
			raw = ext.Value
			found = true
			break
		}
	}
	if !found {
		return trace.NotFound("certificate carries no signed extension")
	}

	sd, err := pkcs7.Parse(raw)
	if err != nil {
		return trace.Wrap(err, "parse signed extension")
	}
	if len(sd.Signers) != 1 {
		return trace.BadParameter("signed extension must carry exactly one signer, got %d", len(sd.Signers))
	}

	signerCert := findSignerCert(sd.Certificates, sd.Signers[0])
	if signerCert == nil {
		return trace.NotFound("signer certificate not present in signed extension")
	}
	if signerCert.Subject.CommonName != expectedSigner {
		return trace.AccessDenied("signer %q does not match expected issuer %q", signerCert.Subject.CommonName, expectedSigner)
	}

	if err := sd.VerifyWithChain(roots); err != nil {
		return trace.Wrap(err, "signed extension invalid")
	}

	pubDER, err := x509.MarshalPKIXPublicKey(cert.PublicKey)
	if err != nil {
		return trace.Wrap(err, "marshal certificate public key")
	}
	want := hashPrefix(cert.Subject.CommonName, cert.NotBefore, cert.NotAfter, pubDER)
	if string(want) != string(sd.Content) {
		return mismatchError(cert, sd.Content)
	}
	log.WithField("cn", cert.Subject.CommonName).Debug("signed extension verified")
	return nil
}

func findSignerCert(certs []*x509.Certificate, signer pkcs7.SignerInfoConfig) *x509.Certificate {
	// pkcs7 does not expose a direct accessor between a SignerInfo and its
	// certificate; with exactly one signer enforced by the caller, the
	// lone leaf-position certificate in the bundle is the signer.
	for _, c := range certs {
		if !c.IsCA {
			return c
		}
	}
	if len(certs) > 0 {
		return certs[0]
	}
	return nil
}

// mismatchError reports a signed hash that fails to match, listing the
// CN and validity bounds the expected hash was built from; it does not
// tell which field diverged.
func mismatchError(cert *x509.Certificate, signedContent []byte) error {
	fields := strings.Split(fmt.Sprintf("%s:%d:%d:", cert.Subject.CommonName, cert.NotBefore.Unix(), cert.NotAfter.Unix()), ":")
	if len(fields) >= 3 {
		return trace.AccessDenied("signed extension does not match certificate (checked CN=%q not_before=%q not_after=%q)", fields[0], fields[1], fields[2])
	}
	return trace.AccessDenied("signed extension does not match certificate public key")
}

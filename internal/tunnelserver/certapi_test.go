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
	"encoding/pem"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
	"github.com/terrazzo-project/terrazzo/internal/x509ext"
)

func testLeafPublicKeyPEM(t *testing.T) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func TestCertificateIssuanceRejectsBadAuthCode(t *testing.T) {
	ca, err := LoadOrBootstrapRootCA(t.TempDir())
	require.NoError(t, err)
	code := tunnelcommon.NewAuthCode(clockwork.NewFakeClock())
	issuance := NewCertificateIssuance(ca, code)

	_, err = issuance.Issue("not-the-code", "agent-1", testLeafPublicKeyPEM(t))
	require.ErrorIs(t, err, tunnelcommon.ErrInvalidAuthCode)
}

func TestCertificateIssuanceIssuesVerifiableLeaf(t *testing.T) {
	ca, err := LoadOrBootstrapRootCA(t.TempDir())
	require.NoError(t, err)
	code := tunnelcommon.NewAuthCode(clockwork.NewFakeClock())
	issuance := NewCertificateIssuance(ca, code)

	pemCert, err := issuance.Issue(code.Current(), "agent-1", testLeafPublicKeyPEM(t))
	require.NoError(t, err)

	block, _ := pem.Decode(pemCert)
	require.NotNil(t, block)
	leaf, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	require.Equal(t, "agent-1", leaf.Subject.CommonName)

	roots, err := ca.RootPool()
	require.NoError(t, err)
	require.NoError(t, x509ext.Verify(leaf, roots, "terrazzo-root-ca"))

	_, err = leaf.Verify(x509.VerifyOptions{
		Roots:     roots,
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	})
	require.NoError(t, err)
}

func TestCertificateIssuanceClampsValidityToCA(t *testing.T) {
	ca, err := LoadOrBootstrapRootCA(t.TempDir())
	require.NoError(t, err)
	code := tunnelcommon.NewAuthCode(clockwork.NewFakeClock())
	issuance := NewCertificateIssuance(ca, code)

	pemCert, err := issuance.Issue(code.Current(), "agent-1", testLeafPublicKeyPEM(t))
	require.NoError(t, err)
	block, _ := pem.Decode(pemCert)
	leaf, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	require.True(t, leaf.NotAfter.Before(ca.Cert.NotAfter) || leaf.NotAfter.Equal(ca.Cert.NotAfter))
}

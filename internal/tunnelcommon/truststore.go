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
	"crypto/x509"
	"encoding/pem"

	"github.com/gravitational/trace"
)

// TrustStore supplies the root certificate pool a tunnel endpoint
// verifies peer certificates against. Satisfied by both a self-issued
// root CA and an externally provided CA bundle (the "either" security
// configuration).
type TrustStore interface {
	RootPool() (*x509.CertPool, error)
}

// PEMBundle is a TrustStore backed by a fixed, externally provided PEM
// bundle, the other half of the either-configuration.
type PEMBundle struct {
	pool *x509.CertPool
}

// NewPEMBundle parses pemData as a trust root bundle.
func NewPEMBundle(pemData []byte) (*PEMBundle, error) {
	pool := x509.NewCertPool()
	rest := pemData
	count := 0
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, trace.Wrap(err, "parse trust bundle certificate")
		}
		pool.AddCert(cert)
		count++
	}
	if count == 0 {
		return nil, trace.BadParameter("trust bundle contains no certificates")
	}
	return &PEMBundle{pool: pool}, nil
}

// RootPool implements TrustStore.
func (b *PEMBundle) RootPool() (*x509.CertPool, error) {
	return b.pool, nil
}

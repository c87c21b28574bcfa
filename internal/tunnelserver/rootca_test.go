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
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrBootstrapRootCAPersistsAndReloads(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrBootstrapRootCA(dir)
	require.NoError(t, err)
	require.Equal(t, "terrazzo-root-ca", first.Cert.Subject.CommonName)
	require.True(t, first.Cert.IsCA)

	second, err := LoadOrBootstrapRootCA(dir)
	require.NoError(t, err)
	require.Equal(t, first.Cert.SerialNumber, second.Cert.SerialNumber)
	require.Equal(t, first.Cert.Raw, second.Cert.Raw)
}

func TestLoadOrBootstrapRootCARejectsPartialState(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadOrBootstrapRootCA(dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "root_ca.key")))
	_, err = LoadOrBootstrapRootCA(dir)
	require.Error(t, err)
}

func TestRootCAServeHTTPServesPEM(t *testing.T) {
	dir := t.TempDir()
	ca, err := LoadOrBootstrapRootCA(dir)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ca.ServeHTTP(rec, httptest.NewRequest("GET", "/remote/ca", nil))

	require.Equal(t, "application/x-pem-file", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "BEGIN CERTIFICATE")
}

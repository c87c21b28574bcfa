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
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
	"github.com/terrazzo-project/terrazzo/internal/tunnelserver"
)

func TestLoadOrEnrollEnrollsThenReloadsFromDisk(t *testing.T) {
	ca, err := tunnelserver.LoadOrBootstrapRootCA(t.TempDir())
	require.NoError(t, err)
	code := tunnelcommon.NewAuthCode(clockwork.NewFakeClock())
	issuance := tunnelserver.NewCertificateIssuance(ca, code)

	server := httptest.NewServer(issuance)
	defer server.Close()

	dataDir := t.TempDir()
	first, err := LoadOrEnroll(server.URL, "agent-1", code.Current(), dataDir)
	require.NoError(t, err)
	require.Equal(t, "agent-1", first.Cert.Subject.CommonName)

	require.FileExists(t, filepath.Join(dataDir, "agent.key"))
	require.FileExists(t, filepath.Join(dataDir, "agent.crt"))

	second, err := LoadOrEnroll(server.URL, "agent-1", "", dataDir)
	require.NoError(t, err)
	require.Equal(t, first.Cert.Raw, second.Cert.Raw)
}

func TestLoadOrEnrollRejectsPartialState(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "agent.key"), []byte("stub"), 0o600))

	_, err := LoadOrEnroll("http://unused", "agent-1", "code", dataDir)
	require.Error(t, err)
}

func TestLoadOrEnrollRejectsBadAuthCode(t *testing.T) {
	ca, err := tunnelserver.LoadOrBootstrapRootCA(t.TempDir())
	require.NoError(t, err)
	code := tunnelcommon.NewAuthCode(clockwork.NewFakeClock())
	issuance := tunnelserver.NewCertificateIssuance(ca, code)

	server := httptest.NewServer(issuance)
	defer server.Close()

	_, err = LoadOrEnroll(server.URL, "agent-1", "wrong-code", t.TempDir())
	require.Error(t, err)
}

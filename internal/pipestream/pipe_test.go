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

package pipestream

import (
	"testing"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"
)

func TestRegistrationDropsEntryWhenLastTerminalUnregisters(t *testing.T) {
	r := NewRegistration()
	correlation := CorrelationID("c1")

	require.NoError(t, r.Register(correlation, NewTerminalID(), nil))
	require.NoError(t, r.Register(correlation, NewTerminalID(), nil))

	_, err := r.channel(correlation)
	require.NoError(t, err)

	r.Unregister(correlation)
	_, err = r.channel(correlation)
	require.NoError(t, err, "entry should survive until the last terminal unregisters")

	r.Unregister(correlation)
	_, err = r.channel(correlation)
	require.Error(t, err)
	require.True(t, trace.IsNotFound(err))
}

func TestWriteToFailsForUnknownCorrelation(t *testing.T) {
	r := NewRegistration()
	err := r.WriteTo(nil, CorrelationID("missing"), nil) //nolint:staticcheck // context not touched before the lookup fails
	require.Error(t, err)
	require.True(t, trace.IsNotFound(err))
}

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

package reactive

import (
	"testing"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"
)

type fakeTemplate struct {
	id    string
	depth Depth
}

func (f fakeTemplate) DebugID() string { return f.id }
func (f fakeTemplate) Depth() Depth    { return f.depth }

func TestReactiveClosureSeedsThenReactsToBoundSignals(t *testing.T) {
	a := NewSignal("a", 1, nil)
	b := NewSignal("b", "x", nil)

	var calls [][2]any
	builder := NewReactiveClosureBuilder("sum", func(args []any) any {
		calls = append(calls, [2]any{args[0], args[1]})
		return nil
	})
	builder = Bind(builder, a)
	builder = Bind(builder, b)

	consumers, err := builder.Register(fakeTemplate{id: "tpl", depth: ZeroDepth})
	require.NoError(t, err)
	require.Len(t, calls, 1, "Register should seed with one initial call")
	require.Equal(t, [2]any{1, "x"}, calls[0])

	a.Set(2)
	require.Len(t, calls, 2)
	require.Equal(t, [2]any{2, "x"}, calls[1])

	b.Set("y")
	require.Len(t, calls, 3)
	require.Equal(t, [2]any{2, "y"}, calls[2])

	for _, c := range consumers {
		require.NoError(t, c.Close())
	}
	a.Set(3)
	require.Len(t, calls, 3, "closed consumers should no longer receive updates")
}

func TestReactiveClosureRegisterRejectsNilTemplate(t *testing.T) {
	builder := NewReactiveClosureBuilder("noop", func([]any) any { return nil })
	_, err := builder.Register(nil)
	require.Error(t, err)
	require.True(t, trace.IsBadParameter(err))
}

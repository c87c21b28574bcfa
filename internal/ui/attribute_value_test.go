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

package ui

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateAttributeLaws(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		chunk      []AttributeValueDiff
		wantWrite  bool
		wantValue  string
		wantRemove bool
	}{
		{
			name:      "all undefined means no write",
			chunk:     []AttributeValueDiff{DiffUndefined(), DiffUndefined()},
			wantWrite: false,
		},
		{
			name:      "all same means no write",
			chunk:     []AttributeValueDiff{DiffSame("a"), DiffSame("b")},
			wantWrite: false,
		},
		{
			name:       "null with no data and no value means removal",
			chunk:      []AttributeValueDiff{DiffNull(), DiffUndefined()},
			wantWrite:  true,
			wantRemove: true,
		},
		{
			name:      "single value writes through",
			chunk:     []AttributeValueDiff{DiffValue("hi")},
			wantWrite: true,
			wantValue: "hi",
		},
		{
			name:      "value joins with same across slots",
			chunk:     []AttributeValueDiff{DiffSame("a"), DiffValue("b"), DiffUndefined()},
			wantWrite: true,
			wantValue: "a b",
		},
		{
			name:      "null alongside data and no value still joins the data",
			chunk:     []AttributeValueDiff{DiffSame("a"), DiffNull()},
			wantWrite: true,
			wantValue: "a",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			value, write := AggregateAttribute(tc.chunk)
			require.Equal(t, tc.wantWrite, write)
			switch {
			case tc.wantRemove:
				require.Nil(t, value)
			case write:
				require.NotNil(t, value)
				require.Equal(t, tc.wantValue, *value)
			default:
				require.Nil(t, value)
			}
		})
	}
}

func TestAttributeValuesBuilderChunking(t *testing.T) {
	t.Parallel()

	var b AttributeValuesBuilder
	name := AttributeName{Text: "class", Kind: KindAttribute}
	b.Set(AttributeID{Name: name, Index: 0, SubIndex: 0}, DiffValue("btn"))
	b.Set(AttributeID{Name: name, Index: 0, SubIndex: 1}, DiffValue("active"))
	b.Set(AttributeID{Name: name, Index: 1, SubIndex: 0}, DiffValue("other"))

	value, write := AggregateAttribute(b.Chunk(0))
	require.True(t, write)
	require.Equal(t, "btn active", *value)

	value, write = AggregateAttribute(b.Chunk(1))
	require.True(t, write)
	require.Equal(t, "other", *value)

	require.Nil(t, b.Chunk(5))
}

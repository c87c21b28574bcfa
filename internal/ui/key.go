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

import "fmt"

// KeyAttribute is the HTML attribute name reserved for a live element's
// Named key. Children merge matches keys on the previous render's
// Element values and does not read or write this attribute.
const KeyAttribute = "data-x-key"

// Key identifies a child for reconciliation: either an author-assigned
// Named key, or a positional Index assigned after Index-keyed children are
// renumbered by position.
type Key struct {
	named   string
	isNamed bool
	index   int
}

// NamedKey constructs an author-assigned key.
func NamedKey(name string) Key {
	return Key{named: name, isNamed: true}
}

// IndexKey constructs a positional key.
func IndexKey(index int) Key {
	return Key{index: index}
}

// Equal compares two keys by kind and value.
func (k Key) Equal(other Key) bool {
	if k.isNamed != other.isNamed {
		return false
	}
	if k.isNamed {
		return k.named == other.named
	}
	return k.index == other.index
}

func (k Key) String() string {
	if k.isNamed {
		return fmt.Sprintf("Named(%s)", k.named)
	}
	return fmt.Sprintf("Index(%d)", k.index)
}

// IsNamed reports whether this is an author-assigned key.
func (k Key) IsNamed() bool { return k.isNamed }

// Name returns the named key's text; only meaningful when IsNamed is true.
func (k Key) Name() string { return k.named }

// Index returns the positional key's index; only meaningful when IsNamed
// is false.
func (k Key) Index() int { return k.index }

// RenumberIndexKeys assigns Index(position) to every element whose key is
// not Named, in declaration order, as required before diffing.
func RenumberIndexKeys(children []Node) {
	for i := range children {
		child := &children[i]
		if child.Element != nil && !child.Element.Key.isNamed {
			child.Element.Key = IndexKey(i)
		}
	}
}

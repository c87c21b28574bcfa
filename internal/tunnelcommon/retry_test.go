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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExponentialBackoffSequence(t *testing.T) {
	strategy := NewFixed(time.Second).ExponentialBackoff(1.3, 3*time.Second)

	want := []time.Duration{
		time.Second,
		1300 * time.Millisecond,
		1690 * time.Millisecond,
		2197 * time.Millisecond,
		2856100 * time.Microsecond,
		3 * time.Second,
		3 * time.Second,
	}
	for i, w := range want {
		got := strategy.Delay()
		require.InDeltaf(t, float64(w), float64(got), float64(time.Millisecond), "draw %d", i)
	}
}

func TestSequenceFallsThroughAfterExhaustion(t *testing.T) {
	first := NewFixed(time.Second)
	then := NewFixed(5 * time.Second)
	strategy := Sequence(first, 2, then)

	require.Equal(t, time.Second, strategy.Delay())
	require.Equal(t, time.Second, strategy.Delay())
	require.Equal(t, 5*time.Second, strategy.Delay())
	require.Equal(t, 5*time.Second, strategy.Delay())
}

func TestPlusAndMultLaws(t *testing.T) {
	a := NewFixed(2 * time.Second)
	b := NewFixed(3 * time.Second)

	sum := Plus(a, b)
	require.Equal(t, 5*time.Second, sum.Peek())

	scaled := Mult(NewFixed(2*time.Second), 1.5)
	require.Equal(t, 3*time.Second, scaled.Peek())
}

func TestExponentialBackoffSaturatesToMaxDelay(t *testing.T) {
	strategy := NewFixed(time.Second).ExponentialBackoff(1.3, 3*time.Second)
	require.Equal(t, 3*time.Second, strategy.MaxDelay())

	for i := 0; i < 20; i++ {
		got := strategy.Delay()
		require.LessOrEqualf(t, got, strategy.MaxDelay(), "draw %d exceeded max_delay", i)
	}
	require.Equal(t, strategy.MaxDelay(), strategy.Peek(), "strategy must have saturated by now")
}

func TestMaxDelayCombinators(t *testing.T) {
	a := NewFixed(2 * time.Second)
	b := NewFixed(3 * time.Second)
	require.Equal(t, 5*time.Second, Plus(a, b).MaxDelay())
	require.Equal(t, 3*time.Second, Mult(NewFixed(2*time.Second), 1.5).MaxDelay())

	first := NewFixed(time.Second)
	then := NewFixed(5 * time.Second)
	require.Equal(t, 5*time.Second, Sequence(first, 2, then).MaxDelay())

	r := Random(time.Second, 4*time.Second)
	require.Equal(t, 4*time.Second, r.MaxDelay())
}

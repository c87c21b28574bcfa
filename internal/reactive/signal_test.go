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

	"github.com/stretchr/testify/require"
)

func TestSignalSetDedupsByEquality(t *testing.T) {
	s := NewSignal("counter", 1, nil)
	var seen []int
	consumer := s.AddSubscriber(func(v int) { seen = append(seen, v) })
	defer consumer.Close()

	s.Set(1) // no change: no fan-out
	require.Empty(t, seen)

	s.Set(2)
	require.Equal(t, []int{2}, seen)
}

func TestSignalForceAlwaysFansOut(t *testing.T) {
	s := NewSignal("counter", 1, nil)
	var calls int
	consumer := s.AddSubscriber(func(int) { calls++ })
	defer consumer.Close()

	s.Force(1)
	s.Force(1)
	require.Equal(t, 2, calls)
}

func TestSignalUpdateNilMeansNoFanOut(t *testing.T) {
	s := NewSignal("counter", 1, nil)
	var calls int
	consumer := s.AddSubscriber(func(int) { calls++ })
	defer consumer.Close()

	result := Update(s, func(old int) UpdateResult[*int, string] {
		return UpdateResult[*int, string]{Result: "unchanged"}
	})
	require.Equal(t, "unchanged", result)
	require.Equal(t, 0, calls)

	result = UpdateMut(s, func(old int) UpdateResult[int, string] {
		return UpdateResult[int, string]{NewValue: old + 1, Result: "changed"}
	})
	require.Equal(t, "changed", result)
	require.Equal(t, 1, calls)
}

func TestFanOutOrderingByDepthThenConsumerID(t *testing.T) {
	producer := NewProducer[Version]("root")
	var order []string
	producer.Register("c1", Depth(1), func(Version) { order = append(order, "depth1-a") })
	producer.Register("c0", ZeroDepth, func(Version) { order = append(order, "depth0") })
	producer.Register("c1b", Depth(1), func(Version) { order = append(order, "depth1-b") })

	producer.Process(NextVersion())

	require.Equal(t, []string{"depth0", "depth1-a", "depth1-b"}, order)
}

func TestConsumerCloseDeregisters(t *testing.T) {
	producer := NewProducer[Version]("root")
	var calls int
	consumer := producer.Register("c", ZeroDepth, func(Version) { calls++ })

	producer.Process(NextVersion())
	require.Equal(t, 1, calls)

	require.NoError(t, consumer.Close())
	producer.Process(NextVersion())
	require.Equal(t, 1, calls, "closed consumer should not be called again")
	require.Len(t, producer.Consumers(), 0)
}

func TestBatchDefersUntilClose(t *testing.T) {
	s := NewSignal("batched", 0, nil)
	var seen []int
	consumer := s.AddSubscriber(func(v int) { seen = append(seen, v) })
	defer consumer.Close()

	batch := NewBatch("test")
	s.Set(1)
	s.Set(2)
	require.Empty(t, seen, "fan-out should be deferred while the batch is open")
	require.NoError(t, batch.Close())
	require.Equal(t, []int{2}, seen)
}

func TestDeriveCrossSubscriptionRemovedOnClose(t *testing.T) {
	main := NewSignal("main", 1, nil)
	derived := main.Derive("doubled",
		func(v int) any { return v * 2 },
		func(int, any) (any, bool) { return nil, false },
	)

	require.Equal(t, 2, derived.GetValueUntracked())
	main.Set(5)
	require.Equal(t, 10, derived.GetValueUntracked())

	require.NoError(t, main.Close())
	require.Len(t, derived.producer.Consumers(), 0)
}

func TestSubscriberDedupsStaleVersions(t *testing.T) {
	s := NewSignal("v", 0, nil)
	var calls int
	consumer := s.AddSubscriber(func(int) { calls++ })
	defer consumer.Close()

	// Deliver the same version twice directly through the producer,
	// simulating a value reaching the subscriber via two graph paths.
	version := NextVersion()
	s.producer.Process(version)
	s.producer.Process(version)
	require.LessOrEqual(t, calls, 1)
}

// Copyright 2024-2026 The Kestrel Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package interval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-lang/kestrel/internal/interval"
)

func TestMapInsertAndGet(t *testing.T) {
	t.Parallel()

	var m interval.Map[int, string]
	assert.Nil(t, m.Insert(1, 10, "a").Value)
	assert.Nil(t, m.Insert(11, 20, "b").Value)
	assert.Nil(t, m.Insert(100, 100, "c").Value) // Single-point interval.
	assert.Equal(t, 3, m.Len())

	for key, want := range map[int]string{
		1: "a", 5: "a", 10: "a",
		11: "b", 20: "b",
		100: "c",
	} {
		got := m.Get(key)
		require.NotNil(t, got.Value, "key %d", key)
		assert.Equal(t, want, *got.Value, "key %d", key)
	}

	for _, key := range []int{0, 21, 99, 101} {
		assert.Nil(t, m.Get(key).Value, "key %d", key)
	}
}

func TestMapOverlap(t *testing.T) {
	t.Parallel()

	var m interval.Map[int, string]
	require.Nil(t, m.Insert(10, 20, "a").Value)

	for _, tt := range []struct{ start, end int }{
		{5, 10},  // Touches the left endpoint.
		{20, 30}, // Touches the right endpoint.
		{12, 15}, // Fully inside.
		{5, 30},  // Fully covers.
	} {
		overlap := m.Insert(tt.start, tt.end, "b")
		require.NotNil(t, overlap.Value, "[%d, %d]", tt.start, tt.end)
		assert.Equal(t, "a", *overlap.Value)
		assert.Equal(t, 10, overlap.Start)
		assert.Equal(t, 20, overlap.End)
	}
	assert.Equal(t, 1, m.Len())

	assert.Panics(t, func() { m.Insert(3, 2, "x") })
}

func TestMapIntervals(t *testing.T) {
	t.Parallel()

	var m interval.Map[int, int]
	m.Insert(30, 40, 3)
	m.Insert(1, 10, 1)
	m.Insert(11, 20, 2)

	var got []int
	for iv := range m.Intervals() {
		got = append(got, *iv.Value)
	}
	assert.Equal(t, []int{1, 2, 3}, got)
}

// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package traceevent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildForestContainment(t *testing.T) {
	// "outer" [0, 10) strictly contains "inner" [2, 5). Input order is
	// deliberately the order a writer would emit them (outer opens
	// first but closes last), exercising the end-time sort.
	events := []rawEvent{
		{Name: "outer", Ts: 0, Dur: 10, Ph: "X"},
		{Name: "inner", Ts: 2, Dur: 3, Ph: "X"},
	}

	roots, tb := buildForest(events, map[float64]counterSample{}, false, false)
	require.Len(t, roots, 1)
	outer := roots[0]
	require.Equal(t, "outer", outer.Frame.Name)
	require.Len(t, outer.Children, 1)
	require.Equal(t, "inner", outer.Children[0].Frame.Name)
	require.Equal(t, 0, outer.Depth)
	require.Equal(t, 1, outer.Children[0].Depth)

	table := tb.Build(nil, nil)
	require.Len(t, table.Rows, 2)
}

func TestBuildForestDisjointSiblings(t *testing.T) {
	events := []rawEvent{
		{Name: "a", Ts: 0, Dur: 1, Ph: "X"},
		{Name: "b", Ts: 2, Dur: 1, Ph: "X"},
	}
	roots, _ := buildForest(events, map[float64]counterSample{}, false, false)
	require.Len(t, roots, 2)
}

func TestBuildForestSkipsCounterEvents(t *testing.T) {
	events := []rawEvent{
		{Name: "a", Ts: 0, Dur: 1, Ph: "X"},
		{Ts: 0, Ph: "C"},
	}
	roots, tb := buildForest(events, map[float64]counterSample{}, false, false)
	require.Len(t, roots, 1)
	table := tb.Build(nil, nil)
	require.Len(t, table.Rows, 1)
}

func TestBuildForestFusesCounters(t *testing.T) {
	events := []rawEvent{{Name: "a", Ts: 0, Dur: 1, Ph: "X"}}
	counters := map[float64]counterSample{0: {Memory: 100, HasMemory: true}}

	_, tb := buildForest(events, counters, false, true)
	table := tb.Build(nil, []string{"usage_memory"})
	v, ok := table.F64("usage_memory", 0)
	require.True(t, ok)
	require.Equal(t, 100.0, v)
}

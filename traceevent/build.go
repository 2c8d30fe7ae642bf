// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package traceevent

import (
	"sort"

	"github.com/aclements/go-cct/cct"
)

// buildForest runs spec.md §4.5's containment algorithm over every
// non-counter event: stably sort by end time (ts+dur), then scan the
// current root list, folding any root an event strictly contains under
// that event before appending it as the new rightmost root. Because
// events are end-time sorted, an enclosing event is always processed
// after everything it contains.
func buildForest(events []rawEvent, counters map[float64]counterSample, scanCPU, scanMemory bool) ([]*cct.Node, *cct.TableBuilder) {
	var durations []rawEvent
	for _, ev := range events {
		if ev.Ph == counterPhase {
			continue
		}
		durations = append(durations, ev)
	}

	sort.SliceStable(durations, func(i, j int) bool {
		return durations[i].Ts+durations[i].Dur < durations[j].Ts+durations[j].Dur
	})

	tb := cct.NewTableBuilder()
	var roots []*cct.Node
	var nextNID int64 = 1

	for _, ev := range durations {
		node := cct.NewNode(nextNID, 0, cct.Frame{Kind: cct.KindFunction, Name: ev.Name, Ts: ev.Ts, Dur: ev.Dur})
		nextNID++

		end := ev.Ts + ev.Dur
		var kept, children []*cct.Node
		for _, root := range roots {
			if ev.Ts < root.Frame.Ts && end > root.Frame.Ts+root.Frame.Dur {
				children = append(children, root)
			} else {
				kept = append(kept, root)
			}
		}
		roots = append(kept, node)
		for _, child := range children {
			node.AddChild(child)
			fixDepths(child, node.Depth+1)
		}

		cells := map[string]interface{}{
			"name": ev.Name,
			"ts":   ev.Ts,
			"dur":  ev.Dur,
			"pid":  ev.Pid,
			"tid":  ev.Tid,
			"ph":   ev.Ph,
		}
		if s, ok := counters[ev.Ts]; ok {
			if scanMemory && s.HasMemory {
				cells["usage_memory"] = s.Memory
			}
			if scanCPU && s.HasCPU {
				cells["usage_cpu"] = s.CPU
			}
		}
		tb.AddRow(node, cells)
	}

	return roots, tb
}

// fixDepths re-stamps n and its descendants' Depth after n gains a new
// parent partway through the forest build (spec.md §4.5: a node can be
// adopted as a child only after it was first created as a root).
func fixDepths(n *cct.Node, depth int) {
	n.Depth = depth
	for _, c := range n.Children {
		fixDepths(c, depth+1)
	}
}

// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package traceevent

import (
	"os"

	"github.com/aclements/go-cct/cct"
)

// Read parses the trace-event JSON array at path and builds a
// cct.GraphFrame by containment, matching spec.md §2's
// from_trace_events(path, scan_cpu, scan_mem). scanCPU/scanMemory each
// independently request that matching counter ("C") events be fused
// into the usage_cpu/usage_memory columns of rows at the same
// timestamp.
func Read(path string, scanCPU, scanMemory bool) (*cct.GraphFrame, error) {
	const op = "traceevent.Read"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cct.WrapError(cct.FileNotFoundErrorKind, op, err)
	}

	events, err := decode(data)
	if err != nil {
		return nil, err
	}

	counters, err := buildCounters(events, scanCPU, scanMemory)
	if err != nil {
		return nil, err
	}

	roots, tb := buildForest(events, counters, scanCPU, scanMemory)

	// usage_memory/usage_cpu are plain table columns alongside ts/dur/pid,
	// not profiler metrics with an inclusive/exclusive scope, so they're
	// not passed to Build.
	return &cct.GraphFrame{Roots: roots, Table: tb.Build(nil, nil)}, nil
}

// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package traceevent

import "github.com/aclements/go-cct/cct"

const counterPhase = "C"

// counterSample is one timestamp's fused counter reading. Memory/CPU are
// only meaningful when their Has flag is set — a requested-but-absent or
// requested-but-zero dimension contributes nothing (spec.md §4.5), it is
// not recorded as a zero sample.
type counterSample struct {
	Memory    float64
	HasMemory bool
	CPU       float64
	HasCPU    bool
}

// buildCounters collects the ts -> (memory, cpu) fusion map scanCPU and
// scanMemory request. If neither is requested, it returns an empty map
// without scanning. If at least one is requested but the input carries
// no counter ("C") events at all, that's a cct.NoStatisticsErrorKind —
// zero matching samples for an otherwise-present counter stream is not
// an error, an absent counter stream is.
func buildCounters(events []rawEvent, scanCPU, scanMemory bool) (map[float64]counterSample, error) {
	samples := map[float64]counterSample{}
	if !scanCPU && !scanMemory {
		return samples, nil
	}

	sawCounterEvent := false
	for _, ev := range events {
		if ev.Ph != counterPhase {
			continue
		}
		sawCounterEvent = true

		var s counterSample
		if scanMemory && ev.Args.MemoryUsage != 0 {
			s.Memory, s.HasMemory = ev.Args.MemoryUsage, true
		}
		if scanCPU && ev.Args.CPUUsage != 0 {
			s.CPU, s.HasCPU = ev.Args.CPUUsage, true
		}
		if s.HasMemory || s.HasCPU {
			samples[ev.Ts] = s
		}
	}

	if !sawCounterEvent {
		return nil, cct.NewError(cct.NoStatisticsErrorKind, "traceevent.buildCounters",
			"counters requested but input has no %q events", counterPhase)
	}
	return samples, nil
}

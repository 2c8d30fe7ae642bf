// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package traceevent reads a Chrome-trace-style JSON event log — a flat
// array of duration ("X") and counter ("C") events — and assembles it
// into a cct.GraphFrame by containment.
package traceevent

import (
	"bytes"
	"encoding/json"

	"github.com/aclements/go-cct/cct"
)

// rawEvent is one element of the input JSON array. Only the fields this
// package consumes are declared; unrecognized fields are ignored by
// encoding/json.
type rawEvent struct {
	Name string  `json:"name"`
	Ts   float64 `json:"ts"`
	Dur  float64 `json:"dur"`
	Ph   string  `json:"ph"`
	Pid  int64   `json:"pid"`
	Tid  int64   `json:"tid"`
	Args struct {
		MemoryUsage float64 `json:"memory_usage"`
		CPUUsage    float64 `json:"cpu_usage"`
	} `json:"args"`
}

// decode parses a trace-event JSON array, repairing a dangling trailing
// comma (and a missing closing bracket) in an in-memory copy if the
// input doesn't parse as-is. The source bytes passed in are never
// modified, and well-formed input is parsed unchanged on the first try.
func decode(data []byte) ([]rawEvent, error) {
	var events []rawEvent
	if err := json.Unmarshal(data, &events); err == nil {
		return events, nil
	}

	repaired := repairTrailingComma(data)
	if err := json.Unmarshal(repaired, &events); err != nil {
		return nil, cct.WrapError(cct.FormatErrorKind, "traceevent.decode", err)
	}
	return events, nil
}

// repairTrailingComma fixes the common Chrome-trace quirk of a log
// whose writer never emitted a closing ']' (and may have left a dangling
// ',' before the cutoff).
func repairTrailingComma(data []byte) []byte {
	trimmed := bytes.TrimRight(data, " \t\r\n")
	if bytes.HasSuffix(trimmed, []byte(",")) {
		trimmed = trimmed[:len(trimmed)-1]
	}
	if bytes.HasSuffix(trimmed, []byte("]")) {
		return trimmed
	}
	out := make([]byte, len(trimmed)+1)
	copy(out, trimmed)
	out[len(trimmed)] = ']'
	return out
}

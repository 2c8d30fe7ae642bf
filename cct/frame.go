// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cct

// Kind identifies what a Node's Frame denotes.
type Kind int

const (
	KindEntry Kind = iota
	KindFunction
	KindLoop
	KindLine
	KindInstruction
)

func (k Kind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindFunction:
		return "function"
	case KindLoop:
		return "loop"
	case KindLine:
		return "line"
	case KindInstruction:
		return "instruction"
	default:
		return "unknown"
	}
}

// Frame is the immutable identity of a Node: what it denotes, independent
// of where it sits in the tree. Ts and Dur are populated only by the
// trace-event (interval) reader; they're zero for hpctoolkit frames.
type Frame struct {
	Kind Kind
	Name string
	Ts   float64
	Dur  float64
}

// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cct

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an Error into one of the kinds callers need to
// distinguish: a missing input file, a malformed input, a missing
// statistic, or an invalid combination of options.
type ErrorKind int

const (
	// FormatErrorKind reports a binary bounds/tag/encoding violation, or a
	// JSON payload that doesn't parse even after the trailing-comma repair.
	FormatErrorKind ErrorKind = iota

	// FileNotFoundErrorKind reports a required input file that is absent
	// or unrecognizable.
	FileNotFoundErrorKind

	// NoStatisticsErrorKind reports that counter data was requested but
	// the input contains no counter events at all.
	NoStatisticsErrorKind

	// FilterErrorKind reports an inconsistent filter combination, such as
	// a negative percentage threshold.
	FilterErrorKind
)

func (k ErrorKind) String() string {
	switch k {
	case FormatErrorKind:
		return "format error"
	case FileNotFoundErrorKind:
		return "file not found"
	case NoStatisticsErrorKind:
		return "no statistics"
	case FilterErrorKind:
		return "filter error"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every public entry point in this
// module. Op names the operation that failed (e.g. "hpctoolkit.Open",
// "traceevent.Read"); Err, if non-nil, is the underlying cause.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind ErrorKind) bool {
	var cerr *Error
	return errors.As(err, &cerr) && cerr.Kind == kind
}

// NewError builds an *Error with a formatted message wrapped as its cause.
func NewError(kind ErrorKind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// WrapError wraps an existing error as the named kind.
func WrapError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

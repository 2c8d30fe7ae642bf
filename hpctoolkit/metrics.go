// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hpctoolkit

import (
	"strings"

	"github.com/aclements/go-cct/cct"
)

const metricsSectionIndex = 4

// metricScope is the closed set of scope names meta.db's Metrics section
// can name, mapped per spec.md §4.2.
type metricScope int

const (
	scopeOther      metricScope = iota // point, lex_aware — no catalog entry
	scopeInclusive                     // "execution"
	scopeExclusive                     // "function"
)

var scopeNames = map[string]metricScope{
	"execution": scopeInclusive,
	"function":  scopeExclusive,
	"point":     scopeOther,
	"lex_aware": scopeOther,
}

// timeMetricAliases are the metric names the original profiler may use for
// wall/CPU time; all are normalized to "time" before the inclusive/
// exclusive suffix is applied.
var timeMetricAliases = map[string]bool{
	"cputime":  true,
	"realtime": true,
	"cycles":   true,
}

// metricDesc is the catalog entry for one propagated metric id.
type metricDesc struct {
	DisplayName string
	Inclusive   bool
}

// catalog maps a meta.db metric id (propMetricId) to its display name and
// scope, and names the primary time metric if one was found.
type catalog struct {
	byID       map[uint16]metricDesc
	timeMetric string // "" if no "time (inc)" metric exists
}

// loadMetricCatalog reads the Metrics section (spec.md §6.1 section index
// 4) and returns the catalog of inclusive/exclusive metric descriptors.
func loadMetricCatalog(c *cursor) (*catalog, error) {
	_, sectionOffset, err := readSectionDirEntry(c, metricsSectionIndex)
	if err != nil {
		return nil, err
	}

	pMetrics, err := c.u64(sectionOffset + 0)
	if err != nil {
		return nil, err
	}
	nMetrics, err := c.u32(sectionOffset + 8)
	if err != nil {
		return nil, err
	}
	szMetric, err := c.u8(sectionOffset + 12)
	if err != nil {
		return nil, err
	}
	szScopeInst, err := c.u8(sectionOffset + 13)
	if err != nil {
		return nil, err
	}

	cat := &catalog{byID: map[uint16]metricDesc{}}

	for i := 0; i < int(nMetrics); i++ {
		recOff := recordOffset(pMetrics, i, int(szMetric))
		pName, err := c.u64(recOff + 0)
		if err != nil {
			return nil, err
		}
		pScopeInsts, err := c.u64(recOff + 8)
		if err != nil {
			return nil, err
		}
		// recOff+16: reserved u64, skipped.
		nScopeInsts, err := c.u16(recOff + 24)
		if err != nil {
			return nil, err
		}

		rawName, err := c.cstring(pName)
		if err != nil {
			return nil, err
		}
		name := normalizeMetricName(rawName)

		for j := 0; j < int(nScopeInsts); j++ {
			scopeOff := recordOffset(pScopeInsts, j, int(szScopeInst))
			pScope, err := c.u64(scopeOff + 0)
			if err != nil {
				return nil, err
			}
			propMetricID, err := c.u16(scopeOff + 8)
			if err != nil {
				return nil, err
			}

			pScopeName, err := c.u64(pScope + 0)
			if err != nil {
				return nil, err
			}
			rawScope, err := c.cstring(pScopeName)
			if err != nil {
				return nil, err
			}
			scope, ok := scopeNames[strings.ToLower(strings.TrimSpace(rawScope))]
			if !ok {
				return nil, cct.NewError(cct.FormatErrorKind, "hpctoolkit.loadMetricCatalog",
					"unrecognized metric scope %q", rawScope)
			}
			if scope == scopeOther {
				continue
			}

			metricName := name
			if timeMetricAliases[metricName] {
				metricName = "time"
			}

			displayName := metricName
			inclusive := scope == scopeInclusive
			if inclusive {
				displayName = metricName + cct.InclusiveSuffix
			}

			if displayName == "time"+cct.InclusiveSuffix {
				cat.timeMetric = displayName
			}

			cat.byID[propMetricID] = metricDesc{DisplayName: displayName, Inclusive: inclusive}
		}
	}

	return cat, nil
}

// normalizeMetricName applies spec.md §4.2's unit-stripping rule: lower
// case and trim, then if the name ends with ')', drop the final ')' and
// everything from the last '(' onward.
func normalizeMetricName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if strings.HasSuffix(name, ")") {
		name = name[:len(name)-1]
		if idx := strings.LastIndex(name, "("); idx >= 0 {
			name = name[:idx]
		}
		name = strings.TrimSpace(name)
	}
	return name
}

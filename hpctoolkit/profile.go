// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hpctoolkit

// summaryProfile maps a context id to its measured metrics, keyed by
// display name (spec.md §4.3). Only metric ids present in the catalog
// are retained; unknown propagated metric ids are dropped.
type summaryProfile map[int64]map[string]float64

// readSummaryProfile reads profile.db's summary profile: a sparse,
// context-indexed table of (metric id, value) pairs. The format mirrors
// meta.db's own "read the pointer record, then the record it points to"
// idiom, but profile.db's top-level record is addressed directly off
// the file header rather than through a section directory.
func readSummaryProfile(c *cursor, cat *catalog) (summaryProfile, error) {
	// File header: (szProfileInfos: u64, pProfileInfos: u64) at offset 16.
	pProfileInfos, err := c.u64(fileHeaderOffset + 8)
	if err != nil {
		return nil, err
	}

	pProfiles, err := c.u64(pProfileInfos)
	if err != nil {
		return nil, err
	}

	// The ProfileInfo body starts at pProfiles itself, not relative to
	// pProfileInfos: (nValues: u64, pValues: u64, nCtxs: u32, _: u32,
	// pCtxIndices: u64).
	nValues, err := c.u64(pProfiles + 0)
	if err != nil {
		return nil, err
	}
	pValues, err := c.u64(pProfiles + 8)
	if err != nil {
		return nil, err
	}
	nCtxs, err := c.u32(pProfiles + 16)
	if err != nil {
		return nil, err
	}
	pCtxIndices, err := c.u64(pProfiles + 24)
	if err != nil {
		return nil, err
	}

	const ctxIndexStride = 12 // (ctxId: u32, startIndex: u64)
	const valueStride = 10    // (metricId: u16, value: f64)

	profile := summaryProfile{}

	for i := 0; i < int(nCtxs); i++ {
		off := recordOffset(pCtxIndices, i, ctxIndexStride)
		ctxID, err := c.u32(off + 0)
		if err != nil {
			return nil, err
		}
		startIndex, err := c.u64(off + 4)
		if err != nil {
			return nil, err
		}

		var endIndex uint64
		if i == int(nCtxs)-1 {
			endIndex = nValues
		} else {
			nextOff := recordOffset(pCtxIndices, i+1, ctxIndexStride)
			endIndex, err = c.u64(nextOff + 4)
			if err != nil {
				return nil, err
			}
		}

		row := map[string]float64{}
		for j := startIndex; j < endIndex; j++ {
			vOff := recordOffset(pValues, int(j), valueStride)
			metricID, err := c.u16(vOff + 0)
			if err != nil {
				return nil, err
			}
			value, err := c.f64(vOff + 2)
			if err != nil {
				return nil, err
			}
			if desc, ok := cat.byID[metricID]; ok {
				row[desc.DisplayName] = value
			}
		}
		profile[int64(ctxID)] = row
	}

	return profile, nil
}

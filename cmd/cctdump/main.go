// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cctdump builds a calling-context tree from an HPCToolkit v4
// measurements directory or a trace-event JSON log and prints it.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/aclements/go-cct/cct"
	"github.com/aclements/go-cct/hpctoolkit"
	"github.com/aclements/go-cct/traceevent"
)

func main() {
	var (
		flagDir        = flag.String("dir", "", "read an HPCToolkit v4 measurements `directory`")
		flagTrace      = flag.String("trace", "", "read a trace-event JSON `file`")
		flagMaxDepth   = flag.Int("max-depth", -1, "stop descending past this depth (hpctoolkit only); -1 means unbounded")
		flagMinParent  = flag.Float64("min-parent-percent", -1, "drop nodes under this percent of their parent's time (hpctoolkit only); -1 means no filter")
		flagMinApp     = flag.Float64("min-app-percent", -1, "drop nodes under this percent of total application time (hpctoolkit only); -1 means no filter")
		flagScanCPU    = flag.Bool("scan-cpu", false, "fuse cpu_usage counter events (trace-event only)")
		flagScanMemory = flag.Bool("scan-memory", false, "fuse memory_usage counter events (trace-event only)")
	)
	flag.Parse()

	if (*flagDir == "") == (*flagTrace == "") {
		log.Fatal("specify exactly one of -dir or -trace")
	}

	var gf *cct.GraphFrame
	var err error
	if *flagDir != "" {
		gf, err = hpctoolkit.ReadV4(*flagDir, parseFilters(*flagMaxDepth, *flagMinParent, *flagMinApp))
	} else {
		gf, err = traceevent.Read(*flagTrace, *flagScanCPU, *flagScanMemory)
	}
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%d root(s), %d row(s)\n", len(gf.Roots), len(gf.Table.Rows))
	if len(gf.Table.InclusiveMetrics) > 0 {
		fmt.Printf("inclusive metrics: %v\n", gf.Table.InclusiveMetrics)
	}
	if len(gf.Table.ExclusiveMetrics) > 0 {
		fmt.Printf("exclusive metrics: %v\n", gf.Table.ExclusiveMetrics)
	}

	gf.Walk(func(n *cct.Node) {
		row, _ := gf.Table.RowForNode(n)
		fmt.Printf("%s%s (%s)%s\n", strings.Repeat("  ", n.Depth), n.Frame.Name, n.Frame.Kind, metricSuffix(gf, row))
	})
}

func parseFilters(maxDepth int, minParent, minApp float64) hpctoolkit.Filters {
	var f hpctoolkit.Filters
	if maxDepth >= 0 {
		f.MaxDepth = &maxDepth
	}
	if minParent >= 0 {
		f.MinParentPercent = &minParent
	}
	if minApp >= 0 {
		f.MinApplicationPercent = &minApp
	}
	return f
}

func metricSuffix(gf *cct.GraphFrame, row int) string {
	var parts []string
	for _, name := range gf.Table.InclusiveMetrics {
		if v, ok := gf.Table.F64(name, row); ok {
			parts = append(parts, fmt.Sprintf("%s=%.3g", name, v))
		}
	}
	for _, name := range gf.Table.ExclusiveMetrics {
		if v, ok := gf.Table.F64(name, row); ok {
			parts = append(parts, fmt.Sprintf("%s=%.3g", name, v))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

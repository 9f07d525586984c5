package suggest

import (
	"strings"

	"github.com/pgimpact/pgimpact/internal/impact"
	"github.com/pgimpact/pgimpact/internal/metrics"
)

// Rule escalation thresholds.
const (
	HeapFetchesCritical    = 50000
	TempFileMBCritical     = 50.0
	CartesianRowsHarmless  = 100
	FilterRemovalCritical  = 1000000
	RecursionDepthCritical = 1000
)

// Library is the static rule library. Near-duplicate historical templates
// are merged by intent (one filter-inefficiency rule instead of separate
// index/join variants).
var Library = []Template{
	{
		ID:        "WORK_MEM_DISK_SORT",
		Title:     "Sort or hash spilled to disk",
		Narrative: "The executor could not keep this operation in memory: the sort or hash spilled to temp files, which is orders of magnitude slower than work_mem.",
		Remedy:    "Raise work_mem for this query (SET work_mem), or reduce the sorted/hashed set with earlier filtering or a narrower select list.",
		Kind:      Corrective,
		Triggers:  []string{impact.NodeMem},
		MinImpact: 0.5,
		Validate: func(text string) bool {
			return strings.Contains(text, "Sort Method: external") ||
				strings.Contains(text, "Batches:")
		},
		Escalate: func(ctx *Context, base Severity) Severity {
			if ctx.Metrics.TempFileMB > TempFileMBCritical {
				return Critical
			}
			return base
		},
	},
	{
		ID:        "CARTESIAN_PRODUCT",
		Title:     "Cartesian product detected",
		Narrative: "A nested loop is combining every row of one input with every row of the other and discarding most of the result through a join filter. Work grows with the product of both inputs.",
		Remedy:    "Add the missing join condition (ON/USING clause) or verify the join keys; a cross join is almost never intended at this volume.",
		Kind:      Corrective,
		Triggers:  []string{impact.NodeComplexity},
		MinImpact: 0.7,
		Validate: func(text string) bool {
			return strings.Contains(text, "Join Filter:")
		},
		Escalate: func(ctx *Context, base Severity) Severity {
			if ctx.Metrics.ActualRows < CartesianRowsHarmless {
				return base
			}
			return Critical
		},
	},
	{
		ID:        "INEFFICIENT_FILTER",
		Title:     "Filter discards most rows read",
		Narrative: "The plan reads far more rows than it returns and throws the excess away in a filter step. Every discarded row was still fetched, locked and evaluated.",
		Remedy:    "Index the filtered columns (a composite or partial index if the predicate is selective) so the discarded rows are never read.",
		Kind:      Corrective,
		Triggers:  []string{impact.NodeWaste},
		MinImpact: 0.3,
		Validate: func(text string) bool {
			return strings.Contains(text, "Filter:")
		},
		Escalate: func(ctx *Context, base Severity) Severity {
			if ctx.Metrics.RowsRemoved > FilterRemovalCritical {
				return Critical
			}
			return base
		},
	},
	{
		ID:        "HEAP_FETCHES",
		Title:     "Index-only scan falling back to the heap",
		Narrative: "An index-only scan is fetching heap pages anyway because the visibility map is stale, paying the random I/O the index was supposed to avoid.",
		Remedy:    "Run VACUUM on the table to refresh the visibility map; consider more aggressive autovacuum settings for it.",
		Kind:      Corrective,
		Triggers:  []string{impact.NodeIO},
		MinImpact: 0.4,
		Validate: func(text string) bool {
			return strings.Contains(text, "Heap Fetches:")
		},
		Escalate: func(ctx *Context, base Severity) Severity {
			if ctx.Metrics.HeapFetches > HeapFetchesCritical {
				return Critical
			}
			return base
		},
	},
	{
		ID:        "SEQ_SCAN_IN_LOOP",
		Title:     "Sequential scan inside a loop",
		Narrative: "A full-table scan sits on the inner side of a loop, so the whole table is re-read on every outer row. Cost multiplies with the outer cardinality.",
		Remedy:    "Add an index on the inner table's join column so each iteration becomes an index lookup instead of a full scan.",
		Kind:      Corrective,
		Triggers:  []string{impact.NodeComplexity, impact.NodeIO},
		MinImpact: 0.5,
		Validate:  metrics.SeqScanLooped,
	},
	{
		ID:        "NESTED_LOOP_SCALE",
		Title:     "Nested loop with high iteration count",
		Narrative: "The inner side of a nested loop executes many times. Fine at today's row counts, but the plan degrades quadratically as either input grows.",
		Remedy:    "Check that join-column indexes exist; if both inputs are large, a Hash Join or Merge Join is usually the better shape.",
		Kind:      Preventive,
		Triggers:  []string{impact.NodeComplexity},
		MinImpact: 0.4,
		Validate: func(text string) bool {
			return strings.Contains(text, "Nested Loop")
		},
	},
	{
		ID:        "RECURSIVE_CTE_DEPTH",
		Title:     "Deep recursive CTE",
		Narrative: "A recursive CTE iterates many times per invocation. Depth tends to track data growth, so today's latency is a floor, not a ceiling.",
		Remedy:    "Bound the recursion with a depth guard in the WHERE clause, or precompute the closure into a materialized table.",
		Kind:      Preventive,
		Triggers:  []string{impact.NodeRecursion},
		MinImpact: 0.3,
		Validate: func(text string) bool {
			return strings.Contains(text, "Recursive Union")
		},
		Escalate: func(ctx *Context, base Severity) Severity {
			if ctx.Metrics.RecursiveDepth >= RecursionDepthCritical {
				return Critical
			}
			return base
		},
	},
	{
		ID:        "WORKER_STARVATION",
		Title:     "Planned parallel workers never launched",
		Narrative: "The planner budgeted parallel workers but none launched at execution time, so the query ran serially against a parallel cost model.",
		Remedy:    "Check max_parallel_workers and max_parallel_workers_per_gather; concurrent load may be exhausting the worker pool.",
		Kind:      Optimization,
		Triggers:  []string{impact.NodeCPU},
		MinImpact: 0.3,
		Validate: func(text string) bool {
			return strings.Contains(text, "Workers Planned")
		},
	},
	{
		ID:        "STALE_STATISTICS",
		Title:     "Planner estimates far from reality",
		Narrative: "Planned and actual row counts diverge by more than an order of magnitude, so every downstream join strategy and memory grant was chosen on bad data.",
		Remedy:    "Run ANALYZE on the involved tables; raise the statistics target for skewed columns if drift persists.",
		Kind:      Optimization,
		Triggers:  []string{impact.NodeDrift},
		MinImpact: 0.5,
	},
	{
		ID:        "JIT_OVERHEAD",
		Title:     "JIT compilation overhead",
		Narrative: "JIT compilation spent measurable time before the query ran. For short queries the compile cost can exceed the runtime it saves.",
		Remedy:    "Compare with SET jit = off, or raise jit_above_cost so only genuinely expensive plans compile.",
		Kind:      Opportunistic,
		Triggers:  []string{impact.NodeCPU},
		MinImpact: 0.2,
		Validate: func(text string) bool {
			return strings.Contains(text, "JIT:")
		},
	},
	{
		ID:        "COLD_CACHE",
		Title:     "High share of reads from disk",
		Narrative: "A large fraction of buffer traffic missed shared_buffers and went to disk. Repeated runs of this query will keep paying the read penalty.",
		Remedy:    "Consider a larger shared_buffers, pg_prewarm for hot tables, or narrowing the scanned set.",
		Kind:      Opportunistic,
		Triggers:  []string{impact.NodeIO, impact.NodeEcoIO},
		MinImpact: 0.3,
		Validate: func(text string) bool {
			return strings.Contains(text, " read=")
		},
	},
}

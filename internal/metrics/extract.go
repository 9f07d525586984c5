// Package metrics turns raw EXPLAIN ANALYZE text into typed signals.
// Extraction is pattern-based and total: every field has a deterministic
// fallback when its pattern is absent, and no input can produce an error.
package metrics

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

const (
	// ExecTimeEpsilonMs is the last-resort execution time when neither
	// timing lines nor planner costs are present.
	ExecTimeEpsilonMs = 0.01

	// CostToMsScale converts a planner cost figure into a rough
	// millisecond estimate when no measured time exists.
	CostToMsScale = 0.01

	// CartesianJoinFilterRows is the minimum join-filter removal count
	// before a Nested Loop with a Join Filter is treated as a cartesian
	// product rather than an ordinary filtered join.
	CartesianJoinFilterRows = 1000

	// TempBlockKB is the PostgreSQL block size for temp I/O accounting.
	TempBlockKB = 8
)

// RawMetrics is the flat record of signals extracted from one plan text.
// It is created once per analysis and immutable after extraction.
type RawMetrics struct {
	ExecutionTimeMs float64
	// ExecTimeInPlan is true when the time came from the plan itself
	// (an "Execution Time" line or the root actual-time interval), false
	// when it was estimated from planner cost or the epsilon fallback.
	ExecTimeInPlan bool
	PlanningTimeMs float64
	JITTimeMs      float64

	HashBatches int64
	HasDiskSort bool
	TempFileMB  float64

	SharedHitBlocks  int64
	SharedReadBlocks int64
	TotalBuffers     int64

	RowsRemoved int64
	WasteRatio  float64

	IsCartesian      bool
	HasSeqScanInLoop bool

	WorkersLaunched int64
	WorkersPlanned  int64

	RecursiveDepth int64
	MaxLoops       int64
	RowsPerLoop    int64

	PlannedRows int64
	ActualRows  int64
	HeapFetches int64
}

var (
	execTimeRe      = regexp.MustCompile(`Execution Time: ([\d.]+) ms`)
	planningTimeRe  = regexp.MustCompile(`Planning Time: ([\d.]+) ms`)
	jitTimingRe     = regexp.MustCompile(`Timing:[^\n]*Total ([\d.]+) ms`)
	actualRe        = regexp.MustCompile(`actual time=([\d.]+)\.\.([\d.]+) rows=(\d+) loops=(\d+)`)
	costRe          = regexp.MustCompile(`cost=([\d.]+)\.\.([\d.]+) rows=(\d+) width=\d+`)
	batchesRe       = regexp.MustCompile(`Batches: (\d+)`)
	diskKBRe        = regexp.MustCompile(`Disk: (\d+)kB`)
	tempBlocksRe    = regexp.MustCompile(`temp read=(\d+)(?: written=(\d+))?`)
	sharedHitRe     = regexp.MustCompile(`shared hit=(\d+)`)
	sharedReadRe    = regexp.MustCompile(`shared(?: hit=\d+)? read=(\d+)`)
	removedFilterRe = regexp.MustCompile(`Rows Removed by Filter: (\d+)`)
	removedJoinRe   = regexp.MustCompile(`Rows Removed by Join Filter: (\d+)`)
	workersPlanRe   = regexp.MustCompile(`Workers Planned: (\d+)`)
	workersLaunchRe = regexp.MustCompile(`Workers Launched: (\d+)`)
	heapFetchesRe   = regexp.MustCompile(`Heap Fetches: (\d+)`)
	loopsRe         = regexp.MustCompile(`loops=(\d+)`)
)

// Extract parses plan text into a complete RawMetrics record. It never
// fails: absent patterns fall back to zero values and the execution time
// falls through a four-tier ladder ending at a fixed epsilon.
func Extract(text string) RawMetrics {
	m := RawMetrics{}

	m.ExecutionTimeMs, m.ExecTimeInPlan = extractExecutionTime(text)
	m.PlanningTimeMs = matchFloat(planningTimeRe, text)
	m.JITTimeMs = extractJITTime(text)

	m.HashBatches = maxInt(batchesRe, text)
	m.HasDiskSort = strings.Contains(text, "Sort Method: external merge") ||
		strings.Contains(text, "Sort Method: external sort")
	m.TempFileMB = extractTempMB(text)

	m.SharedHitBlocks = sumInts(sharedHitRe, text)
	m.SharedReadBlocks = sumInts(sharedReadRe, text)
	m.TotalBuffers = m.SharedHitBlocks + m.SharedReadBlocks

	m.PlannedRows, m.ActualRows = extractRootRows(text)
	m.MaxLoops, m.RowsPerLoop = extractLoops(text)
	m.RecursiveDepth = extractRecursiveDepth(text)
	m.HeapFetches = sumInts(heapFetchesRe, text)

	m.WorkersPlanned = maxInt(workersPlanRe, text)
	m.WorkersLaunched = sumInts(workersLaunchRe, text)

	removedByJoin := sumInts(removedJoinRe, text)
	m.RowsRemoved = sumInts(removedFilterRe, text) + removedByJoin
	m.WasteRatio = wasteRatio(m.RowsRemoved, m.ActualRows)

	m.IsCartesian = strings.Contains(text, "Nested Loop") &&
		strings.Contains(text, "Join Filter:") &&
		removedByJoin >= CartesianJoinFilterRows
	m.HasSeqScanInLoop = SeqScanLooped(text)

	return m
}

// extractExecutionTime resolves execution time through the fallback ladder:
// explicit line, root actual-time upper bound, scaled planner cost, epsilon.
func extractExecutionTime(text string) (float64, bool) {
	if v := matchFloat(execTimeRe, text); v > 0 {
		return v, true
	}
	if sub := actualRe.FindStringSubmatch(text); sub != nil {
		if end := parseFloat(sub[2]); end > 0 {
			return end, true
		}
	}
	if sub := costRe.FindStringSubmatch(text); sub != nil {
		if total := parseFloat(sub[2]); total > 0 {
			return total * CostToMsScale, false
		}
	}
	return ExecTimeEpsilonMs, false
}

func extractJITTime(text string) float64 {
	idx := strings.Index(text, "JIT:")
	if idx < 0 {
		return 0
	}
	return matchFloat(jitTimingRe, text[idx:])
}

func extractTempMB(text string) float64 {
	kb := sumInts(diskKBRe, text)
	var blocks int64
	for _, sub := range tempBlocksRe.FindAllStringSubmatch(text, -1) {
		blocks += parseInt(sub[1]) + parseInt(sub[2])
	}
	return float64(kb)/1024 + float64(blocks*TempBlockKB)/1024
}

// extractRootRows takes planned rows from the first cost annotation and
// actual rows from the first actual-time annotation, both belonging to the
// plan's root node.
func extractRootRows(text string) (planned, actual int64) {
	if sub := costRe.FindStringSubmatch(text); sub != nil {
		planned = parseInt(sub[3])
	}
	if sub := actualRe.FindStringSubmatch(text); sub != nil {
		actual = parseInt(sub[3])
	}
	return planned, actual
}

// extractLoops returns the maximum per-node loop count (worst-case
// iteration depth, not the sum) and the row count of that node.
func extractLoops(text string) (maxLoops, rowsPerLoop int64) {
	for _, sub := range actualRe.FindAllStringSubmatch(text, -1) {
		loops := parseInt(sub[4])
		if loops > maxLoops {
			maxLoops = loops
			rowsPerLoop = parseInt(sub[3])
		}
	}
	return maxLoops, rowsPerLoop
}

// extractRecursiveDepth reports the iteration count of a recursive CTE as
// the worktable scan loop count, 0 when no Recursive Union exists.
func extractRecursiveDepth(text string) int64 {
	if !strings.Contains(text, "Recursive Union") {
		return 0
	}
	var depth int64
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "WorkTable Scan") {
			continue
		}
		if sub := loopsRe.FindStringSubmatch(line); sub != nil {
			if v := parseInt(sub[1]); v > depth {
				depth = v
			}
		}
	}
	if depth == 0 {
		depth = 1
	}
	return depth
}

// SeqScanLooped reports whether any sequential scan executes more than
// once, meaning it sits on the inner side of a loop.
func SeqScanLooped(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "Seq Scan") {
			continue
		}
		if sub := loopsRe.FindStringSubmatch(line); sub != nil {
			if parseInt(sub[1]) > 1 {
				return true
			}
		}
	}
	return false
}

// wasteRatio is removed/(removed+returned) damped by a log10 volume factor
// so that small row counts don't produce artificially alarming ratios.
func wasteRatio(removed, returned int64) float64 {
	total := removed + returned
	if total <= 0 || removed <= 0 {
		return 0
	}
	ratio := float64(removed) / float64(total)
	damp := math.Log10(float64(total)) / 5
	if damp > 1 {
		damp = 1
	}
	if damp < 0 {
		damp = 0
	}
	return ratio * damp
}

func matchFloat(re *regexp.Regexp, text string) float64 {
	sub := re.FindStringSubmatch(text)
	if sub == nil {
		return 0
	}
	return parseFloat(sub[1])
}

func sumInts(re *regexp.Regexp, text string) int64 {
	var total int64
	for _, sub := range re.FindAllStringSubmatch(text, -1) {
		total += parseInt(sub[1])
	}
	return total
}

func maxInt(re *regexp.Regexp, text string) int64 {
	var max int64
	for _, sub := range re.FindAllStringSubmatch(text, -1) {
		if v := parseInt(sub[1]); v > max {
			max = v
		}
	}
	return max
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

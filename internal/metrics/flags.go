package metrics

import (
	"math"
	"strings"
)

// DriftRatio is the planned-vs-actual row mismatch factor above which the
// planner's estimates are considered unreliable.
const DriftRatio = 10.0

// StructuralFlags are derived architecture booleans. Each flag is an
// independent test with no ordering dependencies between them.
type StructuralFlags struct {
	HasNestedLoop      bool
	IsCartesian        bool
	SeqScanInLoop      bool
	HasExplicitJoin    bool
	HasRecursiveCTE    bool
	ForcedMaterialize  bool
	PlannerDrift       bool
	LateFiltering      bool
	ExternalSortOrHash bool
	WorkerStarvation   bool
}

// Classify derives StructuralFlags from raw plan text and its extracted
// metrics. Pure function, computed once per analysis.
func Classify(text string, m RawMetrics) StructuralFlags {
	return StructuralFlags{
		HasNestedLoop:      strings.Contains(text, "Nested Loop"),
		IsCartesian:        m.IsCartesian,
		SeqScanInLoop:      m.HasSeqScanInLoop,
		HasExplicitJoin:    hasExplicitJoin(text),
		HasRecursiveCTE:    strings.Contains(text, "Recursive Union"),
		ForcedMaterialize:  strings.Contains(text, "Materialize"),
		PlannerDrift:       plannerDrift(m.PlannedRows, m.ActualRows),
		LateFiltering:      m.RowsRemoved > 0 && hasExplicitJoin(text),
		ExternalSortOrHash: m.HasDiskSort || m.HashBatches > 1,
		WorkerStarvation:   m.WorkersLaunched < 1 && strings.Contains(text, "Workers Planned"),
	}
}

func hasExplicitJoin(text string) bool {
	return strings.Contains(text, "Hash Join") ||
		strings.Contains(text, "Merge Join") ||
		strings.Contains(text, "Nested Loop")
}

func plannerDrift(planned, actual int64) bool {
	if planned <= 0 {
		return false
	}
	drift := math.Abs(float64(actual)-float64(planned)) / float64(planned)
	return drift > DriftRatio
}

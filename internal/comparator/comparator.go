// Package comparator diffs two full analysis results so a query change can
// be judged by its impact movement, not just raw timing.
package comparator

import (
	"math"

	"github.com/pgimpact/pgimpact/internal/analyzer"
)

type Comparator struct {
	// Threshold is the percentage change below which a metric is reported
	// as unchanged.
	Threshold float64
}

func (c *Comparator) Compare(old, new analyzer.Result) ComparisonResult {
	summary := Summary{
		OldEfficiency: old.EfficiencyScore,
		NewEfficiency: new.EfficiencyScore,
		// Higher efficiency is better, so direction is inverted relative
		// to the cost-like metrics.
		EfficiencyDir: c.direction(old.EfficiencyScore, new.EfficiencyScore, false),

		OldExecutionTime: old.ExecutionTimeMs,
		NewExecutionTime: new.ExecutionTimeMs,
		TimeDelta:        new.ExecutionTimeMs - old.ExecutionTimeMs,
		TimePct:          pctChange(old.ExecutionTimeMs, new.ExecutionTimeMs),
		TimeDir:          c.direction(old.ExecutionTimeMs, new.ExecutionTimeMs, true),

		OldMonetary: old.MonetaryImpact,
		NewMonetary: new.MonetaryImpact,
		MonetaryPct: pctChange(old.MonetaryImpact, new.MonetaryImpact),
		MonetaryDir: c.direction(old.MonetaryImpact, new.MonetaryImpact, true),

		OldImpact: old.ImpactScore,
		NewImpact: new.ImpactScore,
		ImpactDir: c.direction(old.ImpactScore, new.ImpactScore, true),
	}
	summary.Verdict = verdict(summary)

	return ComparisonResult{
		Summary:     summary,
		Branches:    c.diffBranches(old, new),
		Suggestions: churn(old, new),
	}
}

// diffBranches walks both trees in parallel by node id. The tree shape is
// fixed by the builder, so ids line up between analyses.
func (c *Comparator) diffBranches(old, new analyzer.Result) []BranchDelta {
	var deltas []BranchDelta
	for _, oldLeaf := range old.Tree.Leaves() {
		newLeaf := new.Tree.Find(oldLeaf.ID)
		if newLeaf == nil {
			continue
		}
		delta := newLeaf.Value - oldLeaf.Value
		if math.Abs(delta) < 0.005 {
			continue
		}
		dir := Improved
		if delta > 0 {
			dir = Regressed
		}
		deltas = append(deltas, BranchDelta{
			ID:       oldLeaf.ID,
			Label:    oldLeaf.Label,
			OldValue: oldLeaf.Value,
			NewValue: newLeaf.Value,
			Delta:    delta,
			Dir:      dir,
		})
	}
	return deltas
}

func churn(old, new analyzer.Result) SuggestionChurn {
	oldIDs := make(map[string]bool)
	for _, s := range old.Suggestions {
		oldIDs[s.ID] = true
	}
	newIDs := make(map[string]bool)
	for _, s := range new.Suggestions {
		newIDs[s.ID] = true
	}

	var result SuggestionChurn
	for _, s := range old.Suggestions {
		if !newIDs[s.ID] {
			result.Resolved = append(result.Resolved, s.ID)
		} else {
			result.Persisting = append(result.Persisting, s.ID)
		}
	}
	for _, s := range new.Suggestions {
		if !oldIDs[s.ID] {
			result.Introduced = append(result.Introduced, s.ID)
		}
	}
	return result
}

func (c *Comparator) direction(old, new float64, higherIsWorse bool) Direction {
	threshold := c.Threshold
	if threshold <= 0 {
		threshold = SignificanceThresholdPct
	}
	pct := pctChange(old, new)
	if math.Abs(pct) < threshold {
		return Unchanged
	}
	if (new > old) == higherIsWorse {
		return Regressed
	}
	return Improved
}

func verdict(s Summary) string {
	switch {
	case s.ImpactDir == Improved && s.TimeDir != Regressed:
		return "New plan is better"
	case s.ImpactDir == Regressed && s.TimeDir != Improved:
		return "New plan is worse"
	case s.ImpactDir == Unchanged && s.TimeDir == Unchanged:
		return "Plans are equivalent"
	default:
		return "Mixed result - review branch deltas"
	}
}

func pctChange(old, new float64) float64 {
	if old == 0 {
		if new == 0 {
			return 0
		}
		return 100
	}
	return ((new - old) / old) * 100
}

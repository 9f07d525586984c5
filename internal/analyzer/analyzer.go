// Package analyzer wires the full pipeline: extraction, structural
// classification, impact-tree build and resolution, cost projection, and
// suggestion generation. Each call is independent; nothing is shared
// between analyses beyond the static rule library and rate tables, so
// concurrent calls need no coordination.
package analyzer

import (
	"fmt"

	"github.com/pgimpact/pgimpact/internal/cost"
	"github.com/pgimpact/pgimpact/internal/impact"
	"github.com/pgimpact/pgimpact/internal/metrics"
	"github.com/pgimpact/pgimpact/internal/suggest"
)

// TopLeafCount is how many highest-impact leaves the result surfaces.
const TopLeafCount = 3

// healthyImpact is the root score below which the root-cause line reports
// a healthy plan instead of naming a bottleneck.
const healthyImpact = 0.1

// Options select the cost model inputs for one analysis.
type Options struct {
	Provider cost.Provider
	// Frequency is executions per accounting period (month). Values below
	// 1 are treated as 1.
	Frequency float64
}

var engine = suggest.NewEngine()

// Analyze runs the whole pipeline over pre-sanitized plan text and returns
// a best-effort result. It never fails: every extraction miss has a
// deterministic fallback, and a misbehaving rule is isolated to itself.
func Analyze(planText string, opts Options) Result {
	m := metrics.Extract(planText)
	flags := metrics.Classify(planText, m)

	tree := impact.Build(m, flags)
	rootScore := impact.Resolve(tree)

	rates := cost.RatesFor(opts.Provider)
	monetary := cost.Project(m, flags, rates, opts.Frequency)

	suggestions := engine.Run(&suggest.Context{
		Text:    planText,
		Metrics: m,
		Flags:   flags,
		Tree:    tree,
	})

	topLeaves := topLeaves(tree)

	return Result{
		ExecutionTimeMs: m.ExecutionTimeMs,
		ExecTimeInPlan:  m.ExecTimeInPlan,
		PlanningTimeMs:  m.PlanningTimeMs,
		EfficiencyScore: impact.EfficiencyScore(rootScore),
		ImpactScore:     rootScore,
		Provider:        opts.Provider,
		Frequency:       opts.Frequency,
		MonetaryImpact:  monetary,
		Suggestions:     suggestions,
		Tree:            tree,
		TopLeaves:       topLeaves,
		RootCause:       rootCause(rootScore, tree, topLeaves),
		Metrics:         m,
		Flags:           flags,
	}
}

func topLeaves(tree *impact.Node) []LeafImpact {
	var out []LeafImpact
	for _, leaf := range tree.TopLeaves(TopLeafCount) {
		out = append(out, LeafImpact{ID: leaf.ID, Label: leaf.Label, Value: leaf.Value})
	}
	return out
}

// rootCause builds the one-line breakdown surfaced at the top of reports.
func rootCause(rootScore float64, tree *impact.Node, top []LeafImpact) string {
	if rootScore < healthyImpact || len(top) == 0 || top[0].Value == 0 {
		return "No dominant bottleneck; the plan looks healthy."
	}
	total := impact.TotalImpact(tree)
	share := 0
	if total > 0 {
		share = int(top[0].Value / total * 100)
	}
	return fmt.Sprintf("%s is the dominant factor (%d%% of total impact, leaf score %.2f).",
		top[0].Label, share, top[0].Value)
}

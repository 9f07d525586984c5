package analyzer

import (
	"github.com/pgimpact/pgimpact/internal/cost"
	"github.com/pgimpact/pgimpact/internal/impact"
	"github.com/pgimpact/pgimpact/internal/metrics"
	"github.com/pgimpact/pgimpact/internal/suggest"
)

// LeafImpact is one entry of the highest-impact leaf list.
type LeafImpact struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Result is the single record returned per analysis: the score, the money
// figure, the resolved tree for visualization, and the explained
// suggestions. This is the full engine output contract.
type Result struct {
	ExecutionTimeMs float64 `json:"execution_time_ms"`
	// ExecTimeInPlan distinguishes a measured execution time from one
	// estimated out of planner cost or the epsilon fallback.
	ExecTimeInPlan  bool    `json:"exec_time_in_plan"`
	PlanningTimeMs  float64 `json:"planning_time_ms,omitempty"`
	EfficiencyScore float64 `json:"efficiency_score"`
	ImpactScore     float64 `json:"impact_score"`

	Provider       cost.Provider `json:"provider"`
	Frequency      float64       `json:"frequency"`
	MonetaryImpact float64       `json:"monetary_impact"`

	Suggestions []suggest.Explained `json:"suggestions"`
	Tree        *impact.Node        `json:"tree"`
	TopLeaves   []LeafImpact        `json:"top_leaves"`
	RootCause   string              `json:"root_cause"`

	Metrics metrics.RawMetrics      `json:"metrics"`
	Flags   metrics.StructuralFlags `json:"flags"`
}

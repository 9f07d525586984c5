package comparator

import "encoding/json"

type Direction int

const (
	Unchanged Direction = 0
	Improved  Direction = 1
	Regressed Direction = 2

	SignificanceThresholdPct = 1.0
)

func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "unchanged"
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// BranchDelta tracks how one impact-tree node moved between the two
// analyses.
type BranchDelta struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	OldValue float64   `json:"old_value"`
	NewValue float64   `json:"new_value"`
	Delta    float64   `json:"delta"`
	Dir      Direction `json:"direction"`
}

// SuggestionChurn tracks which suggestions disappeared, appeared, or
// survived between the two analyses, by template id.
type SuggestionChurn struct {
	Resolved   []string `json:"resolved,omitempty"`
	Introduced []string `json:"introduced,omitempty"`
	Persisting []string `json:"persisting,omitempty"`
}

type ComparisonResult struct {
	Summary     Summary         `json:"summary"`
	Branches    []BranchDelta   `json:"branches,omitempty"`
	Suggestions SuggestionChurn `json:"suggestions"`
}

type Summary struct {
	OldEfficiency float64   `json:"old_efficiency"`
	NewEfficiency float64   `json:"new_efficiency"`
	EfficiencyDir Direction `json:"efficiency_direction"`

	OldExecutionTime float64   `json:"old_execution_time_ms"`
	NewExecutionTime float64   `json:"new_execution_time_ms"`
	TimeDelta        float64   `json:"time_delta_ms"`
	TimePct          float64   `json:"time_pct"`
	TimeDir          Direction `json:"time_direction"`

	OldMonetary float64   `json:"old_monetary"`
	NewMonetary float64   `json:"new_monetary"`
	MonetaryPct float64   `json:"monetary_pct"`
	MonetaryDir Direction `json:"monetary_direction"`

	OldImpact float64   `json:"old_impact"`
	NewImpact float64   `json:"new_impact"`
	ImpactDir Direction `json:"impact_direction"`

	Verdict string `json:"verdict"`
}

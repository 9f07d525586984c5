// Package suggest matches a static rule library against the resolved
// impact tree and turns hot-spots into prioritized, evidenced
// recommendations.
package suggest

import (
	"github.com/pgimpact/pgimpact/internal/impact"
	"github.com/pgimpact/pgimpact/internal/metrics"
)

// Kind classifies what a rule is for. It determines the baseline severity.
type Kind int

const (
	Corrective Kind = iota
	Preventive
	Optimization
	Opportunistic
)

func (k Kind) String() string {
	switch k {
	case Corrective:
		return "corrective"
	case Preventive:
		return "preventive"
	case Optimization:
		return "optimization"
	case Opportunistic:
		return "opportunistic"
	default:
		return "unknown"
	}
}

type Severity int

const (
	Info     Severity = 0
	Medium   Severity = 1
	High     Severity = 2
	Critical Severity = 3
)

func (s Severity) String() string {
	switch s {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Medium:
		return "medium"
	case Info:
		return "info"
	default:
		return "unknown"
	}
}

// Context carries everything a rule or explainer may inspect during one
// analysis. Read-only from the engine's point of view.
type Context struct {
	Text    string
	Metrics metrics.RawMetrics
	Flags   metrics.StructuralFlags
	Tree    *impact.Node
}

// Template is one entry of the static rule library: read-only, process
// lifetime. Triggers name impact-tree leaves; the template fires when any
// trigger's resolved value meets MinImpact and the optional text validator
// corroborates the structure in the raw plan.
type Template struct {
	ID        string
	Title     string
	Narrative string
	Remedy    string
	Kind      Kind
	Triggers  []string
	MinImpact float64

	// Validate, when set, must pass against the raw plan text. This keeps
	// rules from firing on aggregate score alone without structural
	// corroboration.
	Validate func(text string) bool

	// Escalate, when set, may raise (never lower) the baseline severity
	// using domain thresholds.
	Escalate func(ctx *Context, base Severity) Severity
}

// Evaluated is a template instance bound to its triggering node, transient
// within one analysis.
type Evaluated struct {
	Template *Template
	NodeID   string
	Score    float64
	Severity Severity
}

// Explained is the terminal output unit handed to the presentation layer.
type Explained struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Narrative    string   `json:"narrative"`
	Evidence     []string `json:"evidence,omitempty"`
	Remedy       string   `json:"remedy"`
	Severity     string   `json:"severity"`
	Contribution int      `json:"contribution_pct"`
	Score        float64  `json:"score"`
}

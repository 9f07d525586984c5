package suggest

import (
	"math"
	"sort"

	"github.com/pgimpact/pgimpact/internal/impact"
)

// SaturationCrisis is the overall impact level above which the engine
// enters crisis mode: medium severities are promoted to high and
// info-level noise is dropped. Promotion only; nothing is ever
// downgraded.
const SaturationCrisis = 0.8

// Engine runs the rule library against one analysis context. Stateless per
// call; the library and explainer registry are read-only after init.
type Engine struct {
	templates  []Template
	explainers map[string]Explainer
}

func NewEngine() *Engine {
	return &Engine{
		templates:  Library,
		explainers: defaultExplainers(),
	}
}

// Run executes the four-phase pipeline: evaluate, filter, collapse,
// explain. The tree in ctx must already be resolved; its root value is the
// global saturation. A panicking validator, escalator or explainer is
// isolated to its own rule and never suppresses the others.
func (e *Engine) Run(ctx *Context) []Explained {
	saturation := ctx.Tree.Value

	evaluated := e.evaluate(ctx, saturation)
	evaluated = filterBySaturation(evaluated, saturation)
	evaluated = collapse(evaluated)

	return e.explain(ctx, evaluated)
}

func (e *Engine) evaluate(ctx *Context, saturation float64) []Evaluated {
	var out []Evaluated
	for i := range e.templates {
		out = append(out, evaluateTemplate(&e.templates[i], ctx, saturation)...)
	}
	return out
}

// evaluateTemplate recovers from a panicking validator or escalator so one
// misconfigured rule cannot take down the analysis.
func evaluateTemplate(tmpl *Template, ctx *Context, saturation float64) (out []Evaluated) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
		}
	}()

	if tmpl.Validate != nil && !tmpl.Validate(ctx.Text) {
		return nil
	}

	for _, id := range tmpl.Triggers {
		node := ctx.Tree.Find(id)
		if node == nil || node.Value < tmpl.MinImpact {
			continue
		}
		out = append(out, Evaluated{
			Template: tmpl,
			NodeID:   id,
			Score:    node.Value,
			Severity: computeSeverity(tmpl, ctx, saturation),
		})
	}
	return out
}

func computeSeverity(tmpl *Template, ctx *Context, saturation float64) Severity {
	sev := baseline(tmpl.Kind)
	if tmpl.Escalate != nil {
		if escalated := tmpl.Escalate(ctx, sev); escalated > sev {
			sev = escalated
		}
	}
	// Crisis mode: promote medium to high, never downgrade.
	if saturation > SaturationCrisis && sev == Medium {
		sev = High
	}
	return sev
}

func baseline(k Kind) Severity {
	switch k {
	case Corrective:
		return High
	case Preventive, Optimization:
		return Medium
	default:
		return Info
	}
}

// filterBySaturation drops info-level and opportunistic suggestions under
// high global saturation, keeping everything that could be a root cause.
func filterBySaturation(in []Evaluated, saturation float64) []Evaluated {
	if saturation <= SaturationCrisis {
		return in
	}
	var out []Evaluated
	for _, ev := range in {
		if ev.Severity <= Info || ev.Template.Kind == Opportunistic {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// collapse retains only the highest-scoring occurrence per template id, so
// one structural defect matched via several trigger paths surfaces once.
func collapse(in []Evaluated) []Evaluated {
	best := make(map[string]Evaluated)
	var order []string
	for _, ev := range in {
		id := ev.Template.ID
		cur, seen := best[id]
		if !seen {
			order = append(order, id)
			best[id] = ev
			continue
		}
		if ev.Score > cur.Score {
			best[id] = ev
		}
	}
	out := make([]Evaluated, 0, len(order))
	for _, id := range order {
		out = append(out, best[id])
	}
	return out
}

func (e *Engine) explain(ctx *Context, evaluated []Evaluated) []Explained {
	total := impact.TotalImpact(ctx.Tree)

	var out []Explained
	for _, ev := range evaluated {
		// Re-fetch the node by id: resolution mutated the tree, and the
		// final resolved value is what contribution is measured against.
		node := ctx.Tree.Find(ev.NodeID)
		if node == nil {
			continue
		}

		explainer, ok := e.explainers[ev.Template.ID]
		if !ok {
			explainer = genericExplainer{}
		}

		out = append(out, explainSafely(explainer, ev, node, ctx, total))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return severityRank(out[i].Severity) > severityRank(out[j].Severity)
		}
		return out[i].Score > out[j].Score
	})

	return out
}

// explainSafely falls back to the template's static text if a strategy
// panics mid-explanation.
func explainSafely(ex Explainer, ev Evaluated, node *impact.Node, ctx *Context, total float64) (result Explained) {
	defer func() {
		if r := recover(); r != nil {
			result = staticExplained(ev, node, total)
		}
	}()

	result = Explained{
		ID:           ev.Template.ID,
		Title:        ev.Template.Title,
		Narrative:    ex.BuildExplanation(ev, node, ctx),
		Evidence:     ex.ExtractEvidence(ctx),
		Remedy:       ev.Template.Remedy,
		Severity:     ev.Severity.String(),
		Contribution: contribution(node.Value, total),
		Score:        ev.Score,
	}
	return result
}

func staticExplained(ev Evaluated, node *impact.Node, total float64) Explained {
	return Explained{
		ID:           ev.Template.ID,
		Title:        ev.Template.Title,
		Narrative:    ev.Template.Narrative,
		Remedy:       ev.Template.Remedy,
		Severity:     ev.Severity.String(),
		Contribution: contribution(node.Value, total),
		Score:        ev.Score,
	}
}

func contribution(value, total float64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(value / total * 100))
}

func severityRank(s string) int {
	switch s {
	case "critical":
		return 3
	case "high":
		return 2
	case "medium":
		return 1
	default:
		return 0
	}
}

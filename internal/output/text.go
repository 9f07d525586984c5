package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pgimpact/pgimpact/internal/analyzer"
	"github.com/pgimpact/pgimpact/internal/comparator"
	"github.com/pgimpact/pgimpact/internal/impact"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

const barWidth = 20

type textWriter struct {
	w   io.Writer
	err error
}

func (tw *textWriter) printf(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, format, args...)
}

func RenderAnalysisText(w io.Writer, result analyzer.Result) error {
	tw := &textWriter{w: w}

	tw.printf("%s%sPlan Impact Summary%s\n\n", colorBold, colorCyan, colorReset)

	timeNote := ""
	if !result.ExecTimeInPlan {
		timeNote = fmt.Sprintf(" %s(estimated)%s", colorDim, colorReset)
	}
	tw.printf("  Execution Time:   %.3f ms%s\n", result.ExecutionTimeMs, timeNote)
	if result.PlanningTimeMs > 0 {
		tw.printf("  Planning Time:    %.3f ms\n", result.PlanningTimeMs)
	}
	tw.printf("  Efficiency Score: %s%.1f / 100%s\n", scoreColor(result.EfficiencyScore), result.EfficiencyScore, colorReset)
	tw.printf("  Projected Cost:   $%.4f per period (%s, %.0f exec)\n",
		result.MonetaryImpact, result.Provider, result.Frequency)
	tw.printf("\n  %s\n\n", result.RootCause)

	tw.printf("%s%sImpact Tree%s\n\n", colorBold, colorCyan, colorReset)
	tw.renderNode(result.Tree, 0)
	tw.printf("\n")

	if len(result.Suggestions) == 0 {
		tw.printf("%s%sNo suggestions.%s\n", colorBold, colorGreen, colorReset)
		return tw.err
	}

	tw.printf("%s%sSuggestions (%d)%s\n\n", colorBold, colorCyan, len(result.Suggestions), colorReset)

	for i, s := range result.Suggestions {
		label, color := severityFormat(s.Severity)
		tw.printf("  %s%-8s%s %s%s%s (%d%% of impact)\n", color, label, colorReset, colorBold, s.Title, colorReset, s.Contribution)
		tw.printf("  %s\n", s.Narrative)
		for _, ev := range s.Evidence {
			tw.printf("  %s• %s%s\n", colorDim, ev, colorReset)
		}
		tw.printf("  %s→ %s%s\n", colorDim, s.Remedy, colorReset)
		if i < len(result.Suggestions)-1 {
			tw.printf("\n")
		}
	}

	return tw.err
}

func (tw *textWriter) renderNode(n *impact.Node, depth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth+1)
	filled := int(n.Value * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	color := valueColor(n.Value)
	marker := ""
	if n.Critical {
		marker = fmt.Sprintf(" %s!%s", colorRed, colorReset)
	}
	tw.printf("%s%-16s %s%s%s %.2f%s\n", indent, n.Label, color, bar, colorReset, n.Value, marker)
	for _, child := range n.Children {
		tw.renderNode(child, depth+1)
	}
}

func severityFormat(s string) (string, string) {
	switch s {
	case "critical":
		return "CRITICAL", colorRed
	case "high":
		return "HIGH", colorRed
	case "medium":
		return "MEDIUM", colorYellow
	default:
		return "INFO", colorCyan
	}
}

func scoreColor(score float64) string {
	switch {
	case score >= 75:
		return colorGreen
	case score >= 40:
		return colorYellow
	default:
		return colorRed
	}
}

func valueColor(v float64) string {
	switch {
	case v >= 0.7:
		return colorRed
	case v >= 0.4:
		return colorYellow
	default:
		return colorGreen
	}
}

func RenderComparisonText(w io.Writer, result comparator.ComparisonResult) error {
	tw := &textWriter{w: w}
	s := result.Summary

	tw.printf("%s%sSummary%s\n\n", colorBold, colorCyan, colorReset)
	tw.printf("  Efficiency:     %.1f → %s%.1f%s\n", s.OldEfficiency, dirColor(s.EfficiencyDir), s.NewEfficiency, colorReset)
	tw.printf("  Execution Time: %s\n", formatDelta(s.OldExecutionTime, s.NewExecutionTime, s.TimePct, s.TimeDir, "%.3f ms"))
	tw.printf("  Projected Cost: %s\n", formatDelta(s.OldMonetary, s.NewMonetary, s.MonetaryPct, s.MonetaryDir, "$%.4f"))
	tw.printf("  Impact Score:   %.2f → %s%.2f%s\n", s.OldImpact, dirColor(s.ImpactDir), s.NewImpact, colorReset)
	tw.printf("\n")

	if len(result.Branches) > 0 {
		tw.printf("%s%sImpact Movement%s\n\n", colorBold, colorCyan, colorReset)
		for _, b := range result.Branches {
			arrow := dirArrow(b.Dir)
			tw.printf("  %-16s %.2f → %s%.2f %s%s\n", b.Label, b.OldValue, dirColor(b.Dir), b.NewValue, arrow, colorReset)
		}
		tw.printf("\n")
	}

	tw.renderChurn(result.Suggestions)

	color := ""
	switch {
	case s.ImpactDir == comparator.Improved:
		color = colorGreen
	case s.ImpactDir == comparator.Regressed:
		color = colorRed
	}
	if color != "" {
		tw.printf("%sVerdict: %s%s\n", color, s.Verdict, colorReset)
	} else {
		tw.printf("Verdict: %s\n", s.Verdict)
	}

	return tw.err
}

func (tw *textWriter) renderChurn(c comparator.SuggestionChurn) {
	if len(c.Resolved) == 0 && len(c.Introduced) == 0 && len(c.Persisting) == 0 {
		return
	}
	tw.printf("%s%sSuggestions%s\n\n", colorBold, colorCyan, colorReset)
	for _, id := range c.Resolved {
		tw.printf("  %s- resolved: %s%s\n", colorGreen, id, colorReset)
	}
	for _, id := range c.Introduced {
		tw.printf("  %s+ introduced: %s%s\n", colorRed, id, colorReset)
	}
	for _, id := range c.Persisting {
		tw.printf("  %s~ persisting: %s%s\n", colorYellow, id, colorReset)
	}
	tw.printf("\n")
}

func formatDelta(oldVal, newVal, pct float64, dir comparator.Direction, fmtStr string) string {
	color := dirColor(dir)
	arrow := dirArrow(dir)
	oldStr := fmt.Sprintf(fmtStr, oldVal)
	newStr := fmt.Sprintf(fmtStr, newVal)
	return fmt.Sprintf("%s → %s%s %s (%+.1f%%)%s", oldStr, color, newStr, arrow, pct, colorReset)
}

func dirColor(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return colorGreen
	case comparator.Regressed:
		return colorRed
	default:
		return ""
	}
}

func dirArrow(d comparator.Direction) string {
	switch d {
	case comparator.Improved:
		return "↓"
	case comparator.Regressed:
		return "↑"
	default:
		return ""
	}
}

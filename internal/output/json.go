// Package output renders analysis and comparison results as ANSI-colored
// text or indented JSON.
package output

import (
	"encoding/json"
	"io"

	"github.com/pgimpact/pgimpact/internal/analyzer"
	"github.com/pgimpact/pgimpact/internal/comparator"
)

// RenderAnalysisJSON writes the full analysis result including the resolved
// tree, the top leaves, and the explained suggestions.
func RenderAnalysisJSON(w io.Writer, result analyzer.Result) error {
	return renderJSON(w, result)
}

// RenderComparisonJSON writes the comparison summary, branch deltas, and
// suggestion churn.
func RenderComparisonJSON(w io.Writer, result comparator.ComparisonResult) error {
	return renderJSON(w, result)
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

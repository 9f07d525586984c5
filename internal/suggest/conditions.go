package suggest

import (
	"regexp"
	"strings"
)

var (
	stringLiteralRe = regexp.MustCompile(`'[^']*'`)
	columnRefRe     = regexp.MustCompile(`\b(\w+)\.(\w+)\b`)
	castColRe       = regexp.MustCompile(`\(([a-zA-Z_]\w*)\)::`)
	filterLineRe    = regexp.MustCompile(`(?:^|\n)\s*Filter: (.+)`)
	scanRelationRe  = regexp.MustCompile(`(?:Seq Scan|Index Scan|Index Only Scan|Bitmap Heap Scan) (?:Backward )?(?:using \w+ )?on (\w+)`)
	literalValueRe  = regexp.MustCompile(`(?:^|[^<>!])=\s*'((?:[^']|'')*)'`)
)

// extractConditionColumns pulls referenced column names out of a plan
// condition string, ignoring string literals.
func extractConditionColumns(cond string) []string {
	if cond == "" {
		return nil
	}
	cleaned := stringLiteralRe.ReplaceAllString(cond, "")
	seen := make(map[string]bool)
	var cols []string
	for _, m := range columnRefRe.FindAllStringSubmatch(cleaned, -1) {
		col := m[2]
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	for _, m := range castColRe.FindAllStringSubmatch(cleaned, -1) {
		col := m[1]
		if !seen[col] {
			seen[col] = true
			cols = append(cols, col)
		}
	}
	return cols
}

// extractFilterColumns collects columns from every Filter: clause in the
// plan text, deduplicated in order of appearance.
func extractFilterColumns(text string) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, m := range filterLineRe.FindAllStringSubmatch(text, -1) {
		for _, col := range extractConditionColumns(m[1]) {
			if !seen[col] {
				seen[col] = true
				cols = append(cols, col)
			}
		}
	}
	return cols
}

// extractScanRelations lists table names touched by scan nodes.
func extractScanRelations(text string) []string {
	seen := make(map[string]bool)
	var relations []string
	for _, m := range scanRelationRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			relations = append(relations, m[1])
		}
	}
	return relations
}

// extractLiteralValue returns the first equality literal in a condition,
// useful for partial-index suggestions.
func extractLiteralValue(cond string) string {
	m := literalValueRe.FindStringSubmatch(cond)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "''", "'")
}

func firstFilterClause(text string) string {
	if m := filterLineRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

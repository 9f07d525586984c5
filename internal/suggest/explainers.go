package suggest

import (
	"fmt"
	"regexp"

	"github.com/pgimpact/pgimpact/internal/impact"
)

// Explainer turns a matched rule and its triggering node into
// human-readable evidence and narrative. Registered per template id, with
// genericExplainer as the fallback for templates without a strategy.
type Explainer interface {
	ExtractEvidence(ctx *Context) []string
	BuildExplanation(ev Evaluated, node *impact.Node, ctx *Context) string
}

func defaultExplainers() map[string]Explainer {
	return map[string]Explainer{
		"WORK_MEM_DISK_SORT":  diskSortExplainer{},
		"CARTESIAN_PRODUCT":   cartesianExplainer{},
		"INEFFICIENT_FILTER":  filterExplainer{},
		"HEAP_FETCHES":        heapFetchExplainer{},
		"SEQ_SCAN_IN_LOOP":    seqScanLoopExplainer{},
		"WORKER_STARVATION":   starvationExplainer{},
		"RECURSIVE_CTE_DEPTH": recursionExplainer{},
	}
}

// genericExplainer renders only the template's static text.
type genericExplainer struct{}

func (genericExplainer) ExtractEvidence(ctx *Context) []string { return nil }

func (genericExplainer) BuildExplanation(ev Evaluated, node *impact.Node, ctx *Context) string {
	return ev.Template.Narrative
}

type diskSortExplainer struct{}

var sortMethodRe = regexp.MustCompile(`Sort Method: ([^\n]+)`)

func (diskSortExplainer) ExtractEvidence(ctx *Context) []string {
	var ev []string
	if m := ctx.Metrics; m.HashBatches > 1 {
		ev = append(ev, fmt.Sprintf("hash batches: %d", m.HashBatches))
	}
	if sub := sortMethodRe.FindStringSubmatch(ctx.Text); sub != nil {
		ev = append(ev, "sort method: "+sub[1])
	}
	if ctx.Metrics.TempFileMB > 0 {
		ev = append(ev, fmt.Sprintf("temp file volume: %.1f MB", ctx.Metrics.TempFileMB))
	}
	return ev
}

func (diskSortExplainer) BuildExplanation(ev Evaluated, node *impact.Node, ctx *Context) string {
	text := ev.Template.Narrative
	if ctx.Metrics.TempFileMB > 0 {
		text += fmt.Sprintf(" This query wrote %.1f MB of temp files; work_mem would need to exceed that to keep the operation in memory.", ctx.Metrics.TempFileMB)
	}
	return text
}

type cartesianExplainer struct{}

var joinFilterRemovedRe = regexp.MustCompile(`Rows Removed by Join Filter: (\d+)`)

func (cartesianExplainer) ExtractEvidence(ctx *Context) []string {
	var ev []string
	if sub := joinFilterRemovedRe.FindStringSubmatch(ctx.Text); sub != nil {
		ev = append(ev, "rows discarded by join filter: "+sub[1])
	}
	if relations := extractScanRelations(ctx.Text); len(relations) > 1 {
		ev = append(ev, "tables joined: "+joinNames(relations))
	}
	if ctx.Metrics.MaxLoops > 1 {
		ev = append(ev, fmt.Sprintf("worst-case loop count: %d", ctx.Metrics.MaxLoops))
	}
	return ev
}

func (cartesianExplainer) BuildExplanation(ev Evaluated, node *impact.Node, ctx *Context) string {
	text := ev.Template.Narrative
	if relations := extractScanRelations(ctx.Text); len(relations) > 1 {
		text += fmt.Sprintf(" The product involves %s; verify the join condition between them.", joinNames(relations))
	}
	return text
}

type filterExplainer struct{}

func (filterExplainer) ExtractEvidence(ctx *Context) []string {
	var ev []string
	if ctx.Metrics.RowsRemoved > 0 {
		ev = append(ev, fmt.Sprintf("rows discarded: %d", ctx.Metrics.RowsRemoved))
	}
	if ctx.Metrics.ActualRows > 0 {
		ev = append(ev, fmt.Sprintf("rows returned: %d", ctx.Metrics.ActualRows))
	}
	if cols := extractFilterColumns(ctx.Text); len(cols) > 0 {
		ev = append(ev, "filtered columns: "+joinNames(cols))
	}
	return ev
}

func (filterExplainer) BuildExplanation(ev Evaluated, node *impact.Node, ctx *Context) string {
	text := ev.Template.Narrative
	cols := extractFilterColumns(ctx.Text)
	relations := extractScanRelations(ctx.Text)
	if len(cols) > 0 && len(relations) > 0 {
		text += fmt.Sprintf(" Consider an index on %s(%s)", relations[0], joinNames(cols))
		if literal := extractLiteralValue(firstFilterClause(ctx.Text)); literal != "" && len(cols) == 1 {
			text += fmt.Sprintf(" or a partial index WHERE %s = '%s'", cols[0], literal)
		}
		text += "."
	}
	return text
}

type heapFetchExplainer struct{}

func (heapFetchExplainer) ExtractEvidence(ctx *Context) []string {
	var ev []string
	if ctx.Metrics.HeapFetches > 0 {
		ev = append(ev, fmt.Sprintf("heap fetches: %d", ctx.Metrics.HeapFetches))
	}
	if ctx.Metrics.SharedReadBlocks > 0 {
		ev = append(ev, fmt.Sprintf("blocks read from disk: %d", ctx.Metrics.SharedReadBlocks))
	}
	return ev
}

func (heapFetchExplainer) BuildExplanation(ev Evaluated, node *impact.Node, ctx *Context) string {
	text := ev.Template.Narrative
	if relations := extractScanRelations(ctx.Text); len(relations) > 0 {
		text += fmt.Sprintf(" Start with VACUUM %s.", relations[0])
	}
	return text
}

type seqScanLoopExplainer struct{}

func (seqScanLoopExplainer) ExtractEvidence(ctx *Context) []string {
	var ev []string
	if ctx.Metrics.MaxLoops > 1 {
		ev = append(ev, fmt.Sprintf("loop iterations: %d", ctx.Metrics.MaxLoops))
	}
	if ctx.Metrics.RowsPerLoop > 0 {
		ev = append(ev, fmt.Sprintf("rows per iteration: %d", ctx.Metrics.RowsPerLoop))
	}
	if relations := extractScanRelations(ctx.Text); len(relations) > 0 {
		ev = append(ev, "scanned tables: "+joinNames(relations))
	}
	return ev
}

func (seqScanLoopExplainer) BuildExplanation(ev Evaluated, node *impact.Node, ctx *Context) string {
	text := ev.Template.Narrative
	if ctx.Metrics.MaxLoops > 1 {
		text += fmt.Sprintf(" Here the scan repeats %d times.", ctx.Metrics.MaxLoops)
	}
	return text
}

type starvationExplainer struct{}

func (starvationExplainer) ExtractEvidence(ctx *Context) []string {
	return []string{
		fmt.Sprintf("workers planned: %d", ctx.Metrics.WorkersPlanned),
		fmt.Sprintf("workers launched: %d", ctx.Metrics.WorkersLaunched),
	}
}

func (starvationExplainer) BuildExplanation(ev Evaluated, node *impact.Node, ctx *Context) string {
	return fmt.Sprintf("%s %d of %d planned workers launched.",
		ev.Template.Narrative, ctx.Metrics.WorkersLaunched, ctx.Metrics.WorkersPlanned)
}

type recursionExplainer struct{}

func (recursionExplainer) ExtractEvidence(ctx *Context) []string {
	if ctx.Metrics.RecursiveDepth == 0 {
		return nil
	}
	return []string{fmt.Sprintf("recursion iterations: %d", ctx.Metrics.RecursiveDepth)}
}

func (recursionExplainer) BuildExplanation(ev Evaluated, node *impact.Node, ctx *Context) string {
	text := ev.Template.Narrative
	if ctx.Metrics.RecursiveDepth > 1 {
		text += fmt.Sprintf(" The worktable was scanned %d times.", ctx.Metrics.RecursiveDepth)
	}
	return text
}

package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgimpact/pgimpact/internal/impact"
	"github.com/pgimpact/pgimpact/internal/metrics"
)

func TestExtractConditionColumns(t *testing.T) {
	cases := []struct {
		name string
		cond string
		want []string
	}{
		{"qualified refs", "(o.status = 'pending') AND (o.region = c.region)", []string{"status", "region"}},
		{"cast column", "((created_at)::date = '2026-01-01'::date)", []string{"created_at"}},
		{"literal ignored", "(note = 'a.b')", nil},
		{"dedup", "(t.id = t.id)", []string{"id"}},
		{"empty", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractConditionColumns(tc.cond))
		})
	}
}

func TestExtractFilterColumns(t *testing.T) {
	text := "Seq Scan on orders  (cost=0.00..1.00 rows=1 width=4)\n" +
		"  Filter: (o.status = 'pending')\n" +
		"  ->  Seq Scan on items\n" +
		"        Filter: (i.qty > 10)\n"
	assert.Equal(t, []string{"status", "qty"}, extractFilterColumns(text))
}

func TestExtractScanRelations(t *testing.T) {
	text := "Nested Loop\n" +
		"  ->  Seq Scan on orders\n" +
		"  ->  Index Scan using customers_pkey on customers\n" +
		"  ->  Seq Scan on orders\n"
	assert.Equal(t, []string{"orders", "customers"}, extractScanRelations(text))
}

func TestExtractLiteralValue(t *testing.T) {
	assert.Equal(t, "pending", extractLiteralValue("(status = 'pending')"))
	assert.Equal(t, "it's", extractLiteralValue("(note = 'it''s')"))
	assert.Empty(t, extractLiteralValue("(qty > 10)"))
	assert.Empty(t, extractLiteralValue("(status <> 'done')"))
}

func TestDiskSortExplainer(t *testing.T) {
	ctx := &Context{
		Text:    "Sort Method: external merge  Disk: 54240kB",
		Metrics: metrics.RawMetrics{TempFileMB: 158.9, HashBatches: 4},
	}
	ex := diskSortExplainer{}

	ev := ex.ExtractEvidence(ctx)
	require.Len(t, ev, 3)
	assert.Contains(t, ev[0], "hash batches: 4")
	assert.Contains(t, ev[1], "external merge")
	assert.Contains(t, ev[2], "158.9 MB")

	tmpl := &Template{Narrative: "Spilled."}
	text := ex.BuildExplanation(Evaluated{Template: tmpl}, nil, ctx)
	assert.Contains(t, text, "Spilled.")
	assert.Contains(t, text, "158.9 MB of temp files")
}

func TestCartesianExplainer(t *testing.T) {
	ctx := &Context{
		Text: "Nested Loop\n" +
			"  Join Filter: (a.id = b.id)\n" +
			"  Rows Removed by Join Filter: 44955000\n" +
			"  ->  Seq Scan on accounts\n" +
			"  ->  Seq Scan on balances\n",
		Metrics: metrics.RawMetrics{MaxLoops: 30000},
	}
	ex := cartesianExplainer{}

	ev := ex.ExtractEvidence(ctx)
	require.Len(t, ev, 3)
	assert.Contains(t, ev[0], "44955000")
	assert.Contains(t, ev[1], "accounts, balances")
	assert.Contains(t, ev[2], "30000")

	text := ex.BuildExplanation(Evaluated{Template: &Template{Narrative: "Cross join."}}, nil, ctx)
	assert.Contains(t, text, "accounts, balances")
}

func TestFilterExplainer_SuggestsIndex(t *testing.T) {
	ctx := &Context{
		Text: "Seq Scan on orders  (cost=0.00..1.00 rows=1 width=4)\n" +
			"  Filter: (o.status = 'pending')\n",
		Metrics: metrics.RawMetrics{RowsRemoved: 900000, ActualRows: 120},
	}
	ex := filterExplainer{}

	ev := ex.ExtractEvidence(ctx)
	require.Len(t, ev, 3)
	assert.Contains(t, ev[2], "status")

	text := ex.BuildExplanation(Evaluated{Template: &Template{Narrative: "Wasteful."}}, nil, ctx)
	assert.Contains(t, text, "index on orders(status)")
	assert.Contains(t, text, "WHERE status = 'pending'")
}

func TestFilterExplainer_NoColumnsKeepsStaticText(t *testing.T) {
	ctx := &Context{Text: "Seq Scan on orders"}
	ex := filterExplainer{}
	text := ex.BuildExplanation(Evaluated{Template: &Template{Narrative: "Wasteful."}}, nil, ctx)
	assert.Equal(t, "Wasteful.", text)
}

func TestHeapFetchExplainer(t *testing.T) {
	ctx := &Context{
		Text:    "Index Only Scan using events_pkey on events\n  Heap Fetches: 61200\n",
		Metrics: metrics.RawMetrics{HeapFetches: 61200, SharedReadBlocks: 4800},
	}
	ex := heapFetchExplainer{}

	ev := ex.ExtractEvidence(ctx)
	require.Len(t, ev, 2)
	assert.Contains(t, ev[0], "61200")

	text := ex.BuildExplanation(Evaluated{Template: &Template{Narrative: "Heap fallback."}}, nil, ctx)
	assert.Contains(t, text, "VACUUM events")
}

func TestStarvationExplainer(t *testing.T) {
	ctx := &Context{Metrics: metrics.RawMetrics{WorkersPlanned: 4, WorkersLaunched: 0}}
	ex := starvationExplainer{}

	ev := ex.ExtractEvidence(ctx)
	require.Len(t, ev, 2)
	assert.Equal(t, "workers planned: 4", ev[0])
	assert.Equal(t, "workers launched: 0", ev[1])

	text := ex.BuildExplanation(Evaluated{Template: &Template{Narrative: "Ran serially."}}, nil, ctx)
	assert.Contains(t, text, "0 of 4 planned workers")
}

func TestRecursionExplainer_NoDepthNoEvidence(t *testing.T) {
	ex := recursionExplainer{}
	assert.Nil(t, ex.ExtractEvidence(&Context{}))

	ev := ex.ExtractEvidence(&Context{Metrics: metrics.RawMetrics{RecursiveDepth: 420}})
	require.Len(t, ev, 1)
	assert.Contains(t, ev[0], "420")
}

func TestGenericExplainer(t *testing.T) {
	ex := genericExplainer{}
	assert.Nil(t, ex.ExtractEvidence(&Context{}))
	got := ex.BuildExplanation(Evaluated{Template: &Template{Narrative: "Static."}}, &impact.Node{}, &Context{})
	assert.Equal(t, "Static.", got)
}

package metrics

import (
	"math"
	"strings"
	"testing"
)

const samplePlan = `Sort  (cost=128886.84..131000.00 rows=845000 width=24) (actual time=1210.344..1450.110 rows=845000 loops=1)
  Sort Key: o.created_at
  Sort Method: external merge  Disk: 54240kB
  Buffers: shared hit=10234 read=45211, temp read=6780 written=6810
  ->  Hash Join  (cost=35000.00..98000.00 rows=845000 width=24) (actual time=210.001..980.223 rows=845000 loops=1)
        Hash Cond: (o.customer_id = c.id)
        ->  Seq Scan on orders o  (cost=0.00..15629.00 rows=845000 width=24) (actual time=0.012..180.322 rows=860000 loops=1)
              Filter: (o.status <> 'void'::text)
              Rows Removed by Filter: 15000
              Buffers: shared hit=1024 read=4605
        ->  Hash  (cost=20000.00..20000.00 rows=400000 width=8) (actual time=150.122..150.122 rows=400000 loops=1)
              Buckets: 65536  Batches: 256  Memory Usage: 3770kB
              ->  Seq Scan on customers c  (cost=0.00..9000.00 rows=400000 width=8) (actual time=0.008..60.100 rows=400000 loops=1)
Planning Time: 0.420 ms
Execution Time: 1523.110 ms`

func TestExtract_ExecutionTimeExplicit(t *testing.T) {
	m := Extract(samplePlan)
	if m.ExecutionTimeMs != 1523.110 {
		t.Errorf("ExecutionTimeMs = %v, want 1523.110", m.ExecutionTimeMs)
	}
	if !m.ExecTimeInPlan {
		t.Error("ExecTimeInPlan = false, want true for explicit line")
	}
	if m.PlanningTimeMs != 0.420 {
		t.Errorf("PlanningTimeMs = %v, want 0.420", m.PlanningTimeMs)
	}
}

func TestExtract_ExecutionTimeFromActualTime(t *testing.T) {
	text := `Seq Scan on users  (cost=0.00..450.00 rows=1000 width=40) (actual time=0.015..12.442 rows=1000 loops=1)`
	m := Extract(text)
	if m.ExecutionTimeMs != 12.442 {
		t.Errorf("ExecutionTimeMs = %v, want 12.442 (root actual time)", m.ExecutionTimeMs)
	}
	if !m.ExecTimeInPlan {
		t.Error("ExecTimeInPlan = false, want true for measured actual time")
	}
}

func TestExtract_ExecutionTimeFromCost(t *testing.T) {
	text := `Seq Scan on events  (cost=0.00..4529.00 rows=120000 width=40)
  Filter: (created_at > '2026-01-01'::date)`
	m := Extract(text)
	want := 4529.00 * CostToMsScale
	if math.Abs(m.ExecutionTimeMs-want) > 1e-9 {
		t.Errorf("ExecutionTimeMs = %v, want %v (scaled cost)", m.ExecutionTimeMs, want)
	}
	if m.ExecTimeInPlan {
		t.Error("ExecTimeInPlan = true, want false for cost-based estimate")
	}
}

func TestExtract_ExecutionTimeEpsilon(t *testing.T) {
	m := Extract("nothing that looks like a plan")
	if m.ExecutionTimeMs != ExecTimeEpsilonMs {
		t.Errorf("ExecutionTimeMs = %v, want epsilon %v", m.ExecutionTimeMs, ExecTimeEpsilonMs)
	}
	if m.ExecTimeInPlan {
		t.Error("ExecTimeInPlan = true, want false for epsilon fallback")
	}
}

func TestExtract_DiskSortAndTemp(t *testing.T) {
	m := Extract(samplePlan)
	if !m.HasDiskSort {
		t.Error("HasDiskSort = false, want true")
	}
	if m.HashBatches != 256 {
		t.Errorf("HashBatches = %d, want 256", m.HashBatches)
	}
	// 54240kB disk plus (6780+6810) temp blocks at 8kB each.
	wantMB := 54240.0/1024 + float64((6780+6810)*TempBlockKB)/1024
	if math.Abs(m.TempFileMB-wantMB) > 0.01 {
		t.Errorf("TempFileMB = %v, want %v", m.TempFileMB, wantMB)
	}
}

func TestExtract_Buffers(t *testing.T) {
	m := Extract(samplePlan)
	if m.SharedHitBlocks != 10234+1024 {
		t.Errorf("SharedHitBlocks = %d, want %d", m.SharedHitBlocks, 10234+1024)
	}
	if m.SharedReadBlocks != 45211+4605 {
		t.Errorf("SharedReadBlocks = %d, want %d", m.SharedReadBlocks, 45211+4605)
	}
	if m.TotalBuffers != m.SharedHitBlocks+m.SharedReadBlocks {
		t.Errorf("TotalBuffers = %d, want hit+read", m.TotalBuffers)
	}
}

func TestExtract_RootRows(t *testing.T) {
	m := Extract(samplePlan)
	if m.PlannedRows != 845000 {
		t.Errorf("PlannedRows = %d, want 845000", m.PlannedRows)
	}
	if m.ActualRows != 845000 {
		t.Errorf("ActualRows = %d, want 845000", m.ActualRows)
	}
}

func TestExtract_LoopsAreMaxNotSum(t *testing.T) {
	text := `Nested Loop  (cost=0.00..100.00 rows=10 width=8) (actual time=0.010..50.000 rows=10 loops=1)
  ->  Seq Scan on a  (cost=0.00..10.00 rows=10 width=4) (actual time=0.002..0.020 rows=10 loops=1)
  ->  Index Scan using b_pkey on b  (cost=0.29..8.30 rows=1 width=4) (actual time=0.001..0.002 rows=3 loops=500)`
	m := Extract(text)
	if m.MaxLoops != 500 {
		t.Errorf("MaxLoops = %d, want 500 (max, not sum)", m.MaxLoops)
	}
	if m.RowsPerLoop != 3 {
		t.Errorf("RowsPerLoop = %d, want 3", m.RowsPerLoop)
	}
}

func TestExtract_Cartesian(t *testing.T) {
	text := `Nested Loop  (cost=0.00..1250000.00 rows=50000000 width=16) (actual time=0.040..95000.123 rows=45000 loops=1)
  Join Filter: (a.region_id = b.region_id)
  Rows Removed by Join Filter: 45000000
  ->  Seq Scan on accounts a  (cost=0.00..1500.00 rows=30000 width=12) (actual time=0.010..12.000 rows=30000 loops=1)
  ->  Seq Scan on balances b  (cost=0.00..35.00 rows=1500 width=12) (actual time=0.001..0.900 rows=1500 loops=30000)`
	m := Extract(text)
	if !m.IsCartesian {
		t.Error("IsCartesian = false, want true")
	}
	if !m.HasSeqScanInLoop {
		t.Error("HasSeqScanInLoop = false, want true (loops=30000 on Seq Scan)")
	}
}

func TestExtract_SmallJoinFilterIsNotCartesian(t *testing.T) {
	text := `Nested Loop  (cost=0.00..50.00 rows=5 width=16) (actual time=0.010..0.500 rows=5 loops=1)
  Join Filter: (a.id = b.id)
  Rows Removed by Join Filter: 20`
	m := Extract(text)
	if m.IsCartesian {
		t.Error("IsCartesian = true, want false below removal threshold")
	}
}

func TestExtract_RecursiveDepth(t *testing.T) {
	text := `CTE Scan on tree  (cost=100.00..120.00 rows=100 width=8) (actual time=0.050..900.000 rows=5000 loops=1)
  CTE tree
    ->  Recursive Union  (cost=0.00..100.00 rows=100 width=8) (actual time=0.040..880.000 rows=5000 loops=1)
          ->  Seq Scan on nodes  (cost=0.00..2.00 rows=1 width=8) (actual time=0.010..0.020 rows=1 loops=1)
          ->  WorkTable Scan on tree t  (cost=0.00..8.00 rows=10 width=8) (actual time=0.002..0.100 rows=12 loops=420)`
	m := Extract(text)
	if m.RecursiveDepth != 420 {
		t.Errorf("RecursiveDepth = %d, want 420", m.RecursiveDepth)
	}
}

func TestExtract_HeapFetches(t *testing.T) {
	text := `Index Only Scan using idx_ev on events  (cost=0.42..1200.00 rows=50000 width=8) (actual time=0.030..420.000 rows=50000 loops=1)
  Heap Fetches: 61200
  Buffers: shared hit=2000 read=9000`
	m := Extract(text)
	if m.HeapFetches != 61200 {
		t.Errorf("HeapFetches = %d, want 61200", m.HeapFetches)
	}
}

func TestWasteRatio_Bounds(t *testing.T) {
	cases := []struct {
		removed, returned int64
	}{
		{0, 0}, {0, 100}, {100, 0}, {1, 1}, {45000000, 45000}, {5, 1000000},
	}
	for _, tc := range cases {
		got := wasteRatio(tc.removed, tc.returned)
		if got < 0 || got > 1 {
			t.Errorf("wasteRatio(%d, %d) = %v, out of [0,1]", tc.removed, tc.returned, got)
		}
	}
}

func TestWasteRatio_DampsSmallVolumes(t *testing.T) {
	// 9 of 10 rows removed: an alarming 0.9 raw ratio, but only 10 rows.
	small := wasteRatio(9, 1)
	large := wasteRatio(900000, 100000)
	if small >= large {
		t.Errorf("small-volume ratio %v should be damped below large-volume %v", small, large)
	}
}

func TestExtract_NeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"cost=..garbage rows= loops=",
		strings.Repeat("Batches: 99999999999999999999\n", 3),
		"actual time=1..2 rows=99999999999999999999 loops=1",
	}
	for _, in := range inputs {
		_ = Extract(in)
	}
}

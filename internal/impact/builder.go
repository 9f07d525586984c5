package impact

import (
	"math"

	"github.com/pgimpact/pgimpact/internal/metrics"
)

// Critical thresholds: the metric value at which a leaf saturates to 1.0.
// Tunable constants, not hard contracts.
const (
	CriticalExecMs    = 30000.0
	CriticalBatches   = 256.0
	CriticalTempMB    = 100.0
	CriticalBuffers   = 1000000.0
	CriticalHeapFetch = 100000.0
	CriticalLoops     = 100000.0
	CriticalRecursion = 1000.0

	// FastQueryMs marks queries fast enough that a high waste ratio
	// without any join is discounted rather than taken at full weight.
	FastQueryMs       = 100.0
	WasteFastDiscount = 0.1

	// SeqScanLoopValue and StarvationValue are conditional leaf scores for
	// structural defects with no continuous metric behind them.
	SeqScanLoopValue = 0.7
	StarvationValue  = 0.4
	DriftValue       = 0.6
)

// Branch and leaf weights. Sibling weights are compared as ratios and need
// not sum to 1.
const (
	WeightPerformance = 0.50
	WeightScalability = 0.35
	WeightEco         = 0.15

	WeightCPU = 0.4
	WeightMem = 0.3
	WeightIO  = 0.3

	WeightComplexity = 0.4
	WeightRecursion  = 0.25
	WeightWaste      = 0.2
	WeightDrift      = 0.15

	WeightEcoCompute = 0.5
	WeightEcoIO      = 0.5
)

// LogNorm is the logarithmic saturation normalizer for exponentially
// growing metrics: clamp(log2(actual)/log2(critical), 0, 1). Defined to be
// exactly 0 for actual <= 1, which avoids negative and undefined logs.
// Monotonic in actual, saturating at 1 so pathological outliers cannot
// produce runaway scores.
func LogNorm(actual, critical float64) float64 {
	if actual <= 1 || critical <= 1 {
		return 0
	}
	v := math.Log2(actual) / math.Log2(critical)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Build constructs the fixed three-branch impact tree and populates leaf
// values from the extracted metrics and flags. Branch values are stubbed at
// zero; aggregation belongs to Resolve.
func Build(m metrics.RawMetrics, f metrics.StructuralFlags) *Node {
	return &Node{
		ID:     NodeRoot,
		Label:  "Query impact",
		Weight: 1,
		Children: []*Node{
			{
				ID:     NodePerformance,
				Label:  "Performance",
				Weight: WeightPerformance,
				Children: []*Node{
					{
						ID:          NodeCPU,
						Label:       "CPU time",
						Weight:      WeightCPU,
						Value:       cpuValue(m, f),
						Description: "Execution, planning and JIT time against the critical threshold",
					},
					{
						ID:          NodeMem,
						Label:       "Memory pressure",
						Weight:      WeightMem,
						Value:       memValue(m),
						Critical:    m.HasDiskSort,
						Description: "Hash batching and sort spill behaviour",
					},
					{
						ID:          NodeIO,
						Label:       "I/O volume",
						Weight:      WeightIO,
						Value:       ioValue(m),
						Description: "Buffer traffic, temp files and heap fetches",
					},
				},
			},
			{
				ID:     NodeScalability,
				Label:  "Scalability",
				Weight: WeightScalability,
				Children: []*Node{
					{
						ID:          NodeComplexity,
						Label:       "Join complexity",
						Weight:      WeightComplexity,
						Value:       complexityValue(m, f),
						Critical:    f.IsCartesian,
						Description: "Loop depth, cartesian products and scans inside loops",
					},
					{
						ID:          NodeRecursion,
						Label:       "Recursion depth",
						Weight:      WeightRecursion,
						Value:       LogNorm(float64(m.RecursiveDepth), CriticalRecursion),
						Description: "Recursive CTE iteration count",
					},
					{
						ID:          NodeWaste,
						Label:       "Row waste",
						Weight:      WeightWaste,
						Value:       wasteValue(m, f),
						Description: "Rows read but discarded by filters",
					},
					{
						ID:          NodeDrift,
						Label:       "Estimate drift",
						Weight:      WeightDrift,
						Value:       driftValue(f),
						Description: "Planner row estimates vs. reality",
					},
				},
			},
			{
				ID:     NodeEco,
				Label:  "Eco",
				Weight: WeightEco,
				Children: []*Node{
					{
						ID:          NodeEcoCompute,
						Label:       "Compute energy",
						Weight:      WeightEcoCompute,
						Value:       LogNorm(m.ExecutionTimeMs*float64(1+m.WorkersLaunched), CriticalExecMs),
						Description: "Wall time multiplied across parallel workers",
					},
					{
						ID:          NodeEcoIO,
						Label:       "I/O energy",
						Weight:      WeightEcoIO,
						Value:       ecoIOValue(m),
						Description: "Disk and temp traffic weighted by energy intensity",
					},
				},
			},
		},
	}
}

func cpuValue(m metrics.RawMetrics, f metrics.StructuralFlags) float64 {
	v := LogNorm(m.ExecutionTimeMs+m.PlanningTimeMs+m.JITTimeMs, CriticalExecMs)
	if f.WorkerStarvation && v < StarvationValue {
		v = StarvationValue
	}
	return v
}

// memValue hard-sets the leaf when a sort spilled to disk: the spill itself
// is the signal, regardless of size.
func memValue(m metrics.RawMetrics) float64 {
	if m.HasDiskSort {
		return 1.0
	}
	return LogNorm(float64(m.HashBatches), CriticalBatches)
}

func ioValue(m metrics.RawMetrics) float64 {
	v := LogNorm(float64(m.TotalBuffers), CriticalBuffers)
	if t := LogNorm(m.TempFileMB, CriticalTempMB); t > v {
		v = t
	}
	if h := LogNorm(float64(m.HeapFetches), CriticalHeapFetch); h > v {
		v = h
	}
	return v
}

func complexityValue(m metrics.RawMetrics, f metrics.StructuralFlags) float64 {
	if f.IsCartesian {
		return 1.0
	}
	v := LogNorm(float64(m.MaxLoops), CriticalLoops)
	if f.SeqScanInLoop && v < SeqScanLoopValue {
		v = SeqScanLoopValue
	}
	return v
}

// wasteValue applies the structural-context gate: the same raw ratio means
// different things depending on whether a join is involved. Fast join-free
// plans get the discount.
func wasteValue(m metrics.RawMetrics, f metrics.StructuralFlags) float64 {
	v := m.WasteRatio
	if m.ExecutionTimeMs < FastQueryMs && !f.HasExplicitJoin && !f.HasNestedLoop {
		v *= WasteFastDiscount
	}
	if v > 1 {
		v = 1
	}
	return v
}

func driftValue(f metrics.StructuralFlags) float64 {
	if f.PlannerDrift {
		return DriftValue
	}
	return 0
}

func ecoIOValue(m metrics.RawMetrics) float64 {
	// Weighted block count per the energy-intensity ordering: temp I/O is
	// the most expensive, cache hits the cheapest.
	weighted := float64(m.SharedHitBlocks) +
		2.5*float64(m.SharedReadBlocks) +
		6*m.TempFileMB*1024/metrics.TempBlockKB
	return LogNorm(weighted, CriticalBuffers*2)
}

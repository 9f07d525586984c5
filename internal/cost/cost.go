package cost

import (
	"github.com/pgimpact/pgimpact/internal/metrics"
)

// Energy-intensity coefficients per I/O class. Temp and disk traffic are
// penalized more heavily than shared-cache hits.
const (
	IntensitySharedHit  = 1.0
	IntensitySharedRead = 2.5
	IntensityTemp       = 6.0

	// StructuralRiskSurcharge multiplies the projection when a cartesian
	// product or a seq scan inside a loop is present: those patterns grow
	// super-linearly with data volume, so the point-in-time figure
	// understates them.
	StructuralRiskSurcharge = 1.2
)

// Project converts extracted metrics into a projected monetary cost for
// the given rates and execution frequency. Pure function; safe to call
// repeatedly with different providers without re-extracting metrics.
func Project(m metrics.RawMetrics, f metrics.StructuralFlags, rates Rates, frequency float64) float64 {
	if frequency < 1 {
		frequency = 1
	}

	compute := m.ExecutionTimeMs * rates.ComputeUnitCostPerMs

	tempBuffers := m.TempFileMB * 1024 / metrics.TempBlockKB
	weightedIO := IntensitySharedHit*float64(m.SharedHitBlocks) +
		IntensitySharedRead*float64(m.SharedReadBlocks) +
		IntensityTemp*tempBuffers
	io := weightedIO * rates.IOCostPerBuffer

	total := compute + io
	if f.IsCartesian || f.SeqScanInLoop {
		total *= StructuralRiskSurcharge
	}

	return total * frequency
}

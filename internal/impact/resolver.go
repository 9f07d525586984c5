package impact

const (
	// DominanceThreshold is the weighted average at or above which a
	// dominance node amplifies instead of averaging, so one catastrophic
	// sub-branch cannot be diluted into a falsely moderate aggregate.
	DominanceThreshold = 0.85
	DominanceBoost     = 1.1
)

// dominanceNodes are the high-level nodes subject to the dominance rule.
var dominanceNodes = map[string]bool{
	NodeRoot:        true,
	NodeScalability: true,
}

// Resolve computes every branch value bottom-up and returns the root score.
// Leaves are authoritative and returned unchanged. Branches take the
// weighted average of their resolved children, amplified at dominance nodes
// and unconditionally clamped to [0,1]. The tree is mutated in place;
// resolving an already-resolved tree is idempotent.
func Resolve(n *Node) float64 {
	if n == nil {
		return 0
	}
	if len(n.Children) == 0 {
		return n.Value
	}

	var weightedSum, totalWeight float64
	for _, child := range n.Children {
		v := Resolve(child)
		weightedSum += v * child.Weight
		totalWeight += child.Weight
	}

	var value float64
	if totalWeight > 0 {
		value = weightedSum / totalWeight
	}

	if dominanceNodes[n.ID] && value >= DominanceThreshold {
		value *= DominanceBoost
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}

	n.Value = value
	return value
}

// EfficiencyScore converts a resolved root value into the 0..100 scale
// surfaced to callers.
func EfficiencyScore(root float64) float64 {
	score := (1 - root) * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

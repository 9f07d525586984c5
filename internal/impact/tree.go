// Package impact implements the weighted scoring tree that aggregates
// extracted plan signals into a single normalized severity value.
package impact

import "sort"

// Node IDs for the fixed tree shape. Suggestion templates reference leaves
// by these keys, so they are stable across analyses.
const (
	NodeRoot        = "query"
	NodePerformance = "performance"
	NodeScalability = "scalability"
	NodeEco         = "eco"
	NodeCPU         = "cpu"
	NodeMem         = "mem"
	NodeIO          = "io"
	NodeComplexity  = "complexity"
	NodeRecursion   = "recursion"
	NodeWaste       = "waste"
	NodeDrift       = "drift"
	NodeEcoCompute  = "eco_compute"
	NodeEcoIO       = "eco_io"
)

// ImpactTolerance is the lenient upper band for node values when summing
// total impact. The resolver clamps to [0,1], but consumers tolerate values
// up to this bound and exclude anything beyond it instead of faulting.
const ImpactTolerance = 1.5

// Node is one node of the impact tree. The builder constructs the tree and
// populates leaf values; the resolver is the only mutator afterwards. A node
// with no children is a leaf and its value is authoritative.
type Node struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Value       float64 `json:"value"`
	Weight      float64 `json:"weight"`
	Critical    bool    `json:"critical,omitempty"`
	Description string  `json:"description,omitempty"`
	Children    []*Node `json:"children,omitempty"`
}

// Find returns the node with the given id, or nil.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Leaves returns all leaf nodes in tree order.
func (n *Node) Leaves() []*Node {
	if n == nil {
		return nil
	}
	if len(n.Children) == 0 {
		return []*Node{n}
	}
	var leaves []*Node
	for _, child := range n.Children {
		leaves = append(leaves, child.Leaves()...)
	}
	return leaves
}

// TopLeaves returns the k highest-value leaves, descending.
func (n *Node) TopLeaves(k int) []*Node {
	leaves := n.Leaves()
	sort.SliceStable(leaves, func(i, j int) bool {
		return leaves[i].Value > leaves[j].Value
	})
	if len(leaves) > k {
		leaves = leaves[:k]
	}
	return leaves
}

// TotalImpact sums the values of every node in the tree, branches and
// leaves alike. This is a rough share-of-blame denominator, not a
// normalized partition: the sum can exceed the root's value. Values outside
// [0, ImpactTolerance] are excluded rather than faulting.
func TotalImpact(n *Node) float64 {
	if n == nil {
		return 0
	}
	var total float64
	if n.Value >= 0 && n.Value <= ImpactTolerance {
		total = n.Value
	}
	for _, child := range n.Children {
		total += TotalImpact(child)
	}
	return total
}

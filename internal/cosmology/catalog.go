// Package cosmology describes the six-stage diagram and tracks which stages
// have been collapsed.
package cosmology

// NodeID identifies a diagram stage.
type NodeID string

// The stages, in catalog order.
const (
	NodeVoid     NodeID = "ONE"
	NodeVortex   NodeID = "one"
	NodeSelf     NodeID = "Self"
	NodeEmbodied NodeID = "one+"
	NodeValue    NodeID = "ONE+"
	NodeInfinity NodeID = "∞"
)

// Node is an immutable catalog entry.
type Node struct {
	ID          NodeID `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Y           int    `json:"y"` // vertical position in the diagram
}

var catalog = [...]Node{
	{ID: NodeVoid, Label: "ONE", Description: "Absolute Void", Y: 80},
	{ID: NodeVortex, Label: "one", Description: "Vortex / Focus", Y: 170},
	{ID: NodeSelf, Label: "Self", Description: "Self-Awareness", Y: 260},
	{ID: NodeEmbodied, Label: "one+", Description: "Embodied", Y: 350},
	{ID: NodeValue, Label: "ONE+", Description: "Value Fulfilled", Y: 440},
	{ID: NodeInfinity, Label: "∞", Description: "Open Future", Y: 540},
}

// aliases maps alternate spellings to catalog ids.
var aliases = map[string]NodeID{
	"infinity": NodeInfinity,
}

// Nodes returns a copy of the catalog in order.
func Nodes() []Node {
	out := make([]Node, len(catalog))
	copy(out, catalog[:])
	return out
}

// Len is the number of stages.
func Len() int { return len(catalog) }

// Lookup resolves id (or one of its aliases) to its node and catalog index.
func Lookup(id string) (Node, int, bool) {
	if a, ok := aliases[id]; ok {
		id = string(a)
	}
	for i, n := range catalog {
		if string(n.ID) == id {
			return n, i, true
		}
	}
	return Node{}, -1, false
}

// Boost is the parameter gain for collapsing the node at catalog index i:
// 100, 85, 70, 55, 40, 25.
func Boost(index int) int {
	return 100 - index*15
}

// IdeationFactor scales Boost for the ideation parameter.
const IdeationFactor = 0.7

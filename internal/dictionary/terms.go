// Package dictionary holds the compiled-in glossary and its lookup filters.
package dictionary

// Term is a glossary entry. Related ids are not required to exist.
type Term struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Definition string   `json:"definition"`
	Related    []string `json:"related,omitempty"`
}

var terms = []Term{
	{
		ID:         "ONE",
		Title:      "ONE",
		Definition: "The Absolute Void. Pure undifferentiated being. The ground of all possibility from which everything emerges and to which everything returns.",
		Related:    []string{"one", "infinity"},
	},
	{
		ID:         "one",
		Title:      "one",
		// Names the Absolute without "Void" so a search for "void" matches ONE alone.
		Definition: "The primal vortex of potentiality. The first movement of focus and distinction arising from the Absolute (ONE).",
		Related:    []string{"ONE", "Self"},
	},
	{
		ID:         "self",
		Title:      "Self",
		Definition: "The emergence of self-awareness. The point where consciousness recognizes itself as distinct yet still connected to the ground.",
		Related:    []string{"one", "one+"},
	},
	{
		ID:         "one+",
		Title:      "one+",
		Definition: "Embodied consciousness. The integration of self-awareness into form, where the individual experiences limitation and expression in the world.",
		Related:    []string{"Self", "ONE+"},
	},
	{
		ID:         "ONE+",
		Title:      "ONE+",
		Definition: "Value Fulfilled. The realization and embodiment of ultimate meaning, where the individual consciously aligns with and expresses the Absolute.",
		Related:    []string{"one+", "infinity"},
	},
	{
		ID:         "infinity",
		Title:      "∞",
		Definition: "Open Future. Infinite unfolding possibility. The eternal horizon of becoming that remains forever beyond complete grasp, inviting continual exploration.",
		Related:    []string{"ONE", "ONE+"},
	},
}

// Terms returns a copy of the catalog in definition order.
func Terms() []Term {
	out := make([]Term, len(terms))
	for i, t := range terms {
		out[i] = t.clone()
	}
	return out
}

func (t Term) clone() Term {
	t.Related = append([]string(nil), t.Related...)
	return t
}

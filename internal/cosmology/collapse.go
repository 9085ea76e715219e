package cosmology

// CollapseSet records the collapsed stages. Membership only grows until
// Clear. The zero value is an empty set.
type CollapseSet struct {
	members map[NodeID]struct{}
}

// Add inserts id and reports whether it was newly added.
func (c *CollapseSet) Add(id NodeID) bool {
	if c.members == nil {
		c.members = make(map[NodeID]struct{}, len(catalog))
	}
	if _, ok := c.members[id]; ok {
		return false
	}
	c.members[id] = struct{}{}
	return true
}

// Has reports whether id is collapsed.
func (c *CollapseSet) Has(id NodeID) bool {
	_, ok := c.members[id]
	return ok
}

// Len is the number of collapsed stages.
func (c *CollapseSet) Len() int { return len(c.members) }

// Clear empties the set.
func (c *CollapseSet) Clear() {
	c.members = nil
}

// IDs returns the collapsed ids in catalog order.
func (c *CollapseSet) IDs() []NodeID {
	out := make([]NodeID, 0, len(c.members))
	for _, n := range catalog {
		if c.Has(n.ID) {
			out = append(out, n.ID)
		}
	}
	return out
}

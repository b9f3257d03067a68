// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

// MaxDepth caps the ancestor walk in WouldCreateCycle. Ten levels is far
// deeper than any real catalog taxonomy; the cap bounds the walk even if
// the stored forest has already been corrupted into a cycle.
const MaxDepth = 10

// WouldCreateCycle reports whether reassigning nodeID under newParentID
// would make nodeID its own ancestor. parents maps every node id to its
// current parent id (nil for roots).
//
// The check walks upward from the proposed parent: if the walk reaches
// nodeID, the proposed parent is a descendant of nodeID and the reparent
// must be refused. The returned path lists the ancestor ids visited, in
// order, for error reporting. Assigning a node to itself is a cycle.
func WouldCreateCycle(nodeID, newParentID int64, parents map[int64]*int64) (bool, []int64) {
	if newParentID == nodeID {
		return true, []int64{newParentID}
	}

	var path []int64
	seen := make(map[int64]bool)
	current := newParentID
	for depth := 0; depth < MaxDepth; depth++ {
		if seen[current] {
			// Pre-existing cycle in stored data; the reparent cannot
			// make things worse, but refuse it anyway.
			return true, path
		}
		seen[current] = true
		path = append(path, current)

		if current == nodeID {
			return true, path
		}
		parent, ok := parents[current]
		if !ok || parent == nil {
			return false, path
		}
		current = *parent
	}
	// Depth cap reached without finding nodeID. Treat as safe: a valid
	// forest this deep cannot contain nodeID above the cap unless the
	// data is already corrupt, and corrupt chains are bounded here.
	return false, path
}

// ParentMap builds the id → parent_id lookup WouldCreateCycle consumes.
func ParentMap(nodes []Node) map[int64]*int64 {
	parents := make(map[int64]*int64, len(nodes))
	for _, n := range nodes {
		parents[n.ID] = n.ParentID
	}
	return parents
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import "sort"

// Build assembles a flat node list into a Tree. Siblings are ordered by
// sort_order, ties broken by id ascending so the output is deterministic.
//
// A node whose parent_id references an id that is not present in the
// input is treated as a root rather than dropped. Losing rows over a
// stale reference would hide data from the admin screens; surfacing the
// orphan at the top level keeps it visible and editable.
//
// The input slice is never mutated. A visited set guards the walk so
// that corrupt input containing a parent cycle produces a partial tree
// instead of an infinite loop.
func Build(nodes []Node) *Tree {
	byID := make(map[int64]bool, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = true
	}

	// Group children by parent. Nodes with a missing parent become roots.
	children := make(map[int64][]Node)
	var roots []Node
	for _, n := range nodes {
		if n.ParentID == nil || !byID[*n.ParentID] {
			roots = append(roots, n)
			continue
		}
		children[*n.ParentID] = append(children[*n.ParentID], n)
	}

	sortSiblings(roots)
	for _, group := range children {
		sortSiblings(group)
	}

	tree := &Tree{}
	visited := make(map[int64]bool, len(nodes))
	for _, r := range roots {
		if tn := buildSubtree(r, 0, children, visited, tree); tn != nil {
			tree.Roots = append(tree.Roots, tn)
		}
	}
	return tree
}

// buildSubtree attaches node and its descendants, appending each node to
// the flat preorder list as it is placed.
func buildSubtree(n Node, level int, children map[int64][]Node, visited map[int64]bool, tree *Tree) *TreeNode {
	if visited[n.ID] {
		// Cycle in stored data; stop descending rather than loop.
		return nil
	}
	visited[n.ID] = true

	tn := &TreeNode{Node: n, Level: level}
	tree.Flat = append(tree.Flat, tn)
	for _, c := range children[n.ID] {
		if child := buildSubtree(c, level+1, children, visited, tree); child != nil {
			tn.Children = append(tn.Children, child)
		}
	}
	tn.ChildrenCount = len(tn.Children)
	return tn
}

// sortSiblings orders a sibling group by (sort_order, id).
func sortSiblings(group []Node) {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].SortOrder != group[j].SortOrder {
			return group[i].SortOrder < group[j].SortOrder
		}
		return group[i].ID < group[j].ID
	})
}

// Descendants returns the ids of every node below rootID, grouped by
// depth: result[0] holds the direct children, result[1] their children,
// and so on. The traversal is an explicit breadth-first worklist, so
// pathologically deep or corrupt (cyclic) data cannot blow the stack;
// a visited set guarantees termination.
//
// The Cascade Deleter deletes levels in reverse order so that no child
// row ever outlives its parent's removal.
func Descendants(rootID int64, nodes []Node) [][]int64 {
	children := make(map[int64][]int64)
	for _, n := range nodes {
		if n.ParentID != nil {
			children[*n.ParentID] = append(children[*n.ParentID], n.ID)
		}
	}

	visited := map[int64]bool{rootID: true}
	var levels [][]int64
	frontier := children[rootID]
	for len(frontier) > 0 {
		var level, next []int64
		for _, id := range frontier {
			if visited[id] {
				continue
			}
			visited[id] = true
			level = append(level, id)
			next = append(next, children[id]...)
		}
		if len(level) == 0 {
			break
		}
		levels = append(levels, level)
		frontier = next
	}
	return levels
}

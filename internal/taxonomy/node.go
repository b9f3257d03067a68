// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy implements the hierarchical tree logic shared by
// categories and characteristic groups: tree assembly from flat rows,
// cycle-safe reparent validation, and descendant enumeration for
// cascading deletes. All functions here are pure — they never touch
// the database, which keeps them unit-testable with synthetic node sets.
package taxonomy

// Node is the minimal flat-row shape the tree algorithms operate on.
// Both categories and characteristic groups satisfy it.
type Node struct {
	ID        int64
	Name      string
	ParentID  *int64
	SortOrder int
}

// TreeNode is a Node placed in the assembled hierarchy.
type TreeNode struct {
	Node
	Level         int
	ChildrenCount int
	Children      []*TreeNode
}

// Tree is the result of Build: nested roots plus a flat preorder list
// that keeps every subtree contiguous.
type Tree struct {
	Roots []*TreeNode
	Flat  []*TreeNode
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"vitrina/internal/taxonomy"
)

// Category represents a node in the product category tree.
// Products reference at most one category.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ParentID    *int64    `json:"parent_id"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual field populated by store methods.
	ProductCount int `json:"product_count"`
}

// TaxonomyNode converts the category to the shape the tree algorithms use.
func (c *Category) TaxonomyNode() taxonomy.Node {
	return taxonomy.Node{
		ID:        c.ID,
		Name:      c.Name,
		ParentID:  c.ParentID,
		SortOrder: c.SortOrder,
	}
}

// CategoryTree pairs the nested and flat views of the category tree.
type CategoryTree struct {
	Roots []*CategoryTreeNode `json:"tree"`
	Flat  []*CategoryTreeNode `json:"flat"`
}

// CategoryTreeNode is a category with its place in the assembled tree.
type CategoryTreeNode struct {
	Category
	Level         int                 `json:"level"`
	ChildrenCount int                 `json:"children_count"`
	Children      []*CategoryTreeNode `json:"children,omitempty"`
}

// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"vitrina/internal/taxonomy"
)

// CharacteristicGroup is a node in the characteristic taxonomy
// (e.g. "Display" under "Hardware"). Groups own characteristic values;
// products are linked to values, never to groups directly.
type CharacteristicGroup struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ParentID    *int64    `json:"parent_id"`
	SortOrder   int       `json:"sort_order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual field populated by store methods.
	Values []CharacteristicValue `json:"values,omitempty"`
}

// TaxonomyNode converts the group to the shape the tree algorithms use.
func (g *CharacteristicGroup) TaxonomyNode() taxonomy.Node {
	return taxonomy.Node{
		ID:        g.ID,
		Name:      g.Name,
		ParentID:  g.ParentID,
		SortOrder: g.SortOrder,
	}
}

// CharacteristicGroupTree pairs the nested and flat views of the
// characteristic group tree.
type CharacteristicGroupTree struct {
	Roots []*CharacteristicGroupTreeNode `json:"tree"`
	Flat  []*CharacteristicGroupTreeNode `json:"flat"`
}

// CharacteristicGroupTreeNode is a group with its place in the tree.
type CharacteristicGroupTreeNode struct {
	CharacteristicGroup
	Level         int                            `json:"level"`
	ChildrenCount int                            `json:"children_count"`
	Children      []*CharacteristicGroupTreeNode `json:"children,omitempty"`
}

// CharacteristicValue belongs to exactly one characteristic group.
type CharacteristicValue struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	Value     string    `json:"value"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`

	// Virtual field: number of products linked to this value.
	UsageCount int `json:"usage_count"`
}

// ProductCharacteristic is one resolved characteristic of a product,
// as shown on the product detail page.
type ProductCharacteristic struct {
	GroupID   int64  `json:"group_id"`
	GroupName string `json:"group_name"`
	ValueID   int64  `json:"value_id"`
	Value     string `json:"value"`
}

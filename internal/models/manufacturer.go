// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Manufacturer is a product brand.
type Manufacturer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Country     string    `json:"country"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Virtual fields populated by store methods.
	ProductCount int         `json:"product_count"`
	ModelLines   []ModelLine `json:"model_lines,omitempty"`
}

// ModelLine is a manufacturer's product line (e.g. "ThinkPad").
type ModelLine struct {
	ID             int64     `json:"id"`
	ManufacturerID int64     `json:"manufacturer_id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	CreatedAt      time.Time `json:"created_at"`
}

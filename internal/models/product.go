// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Product is a sellable catalog item. Description holds Markdown source;
// the storefront serves it rendered to HTML.
type Product struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	SKU            string    `json:"sku"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Stock          int       `json:"stock"`
	CategoryID     *int64    `json:"category_id"`
	ManufacturerID *int64    `json:"manufacturer_id"`
	ModelLineID    *int64    `json:"model_line_id"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// InStock returns true if at least one unit is available.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// ProductDetail is the storefront product page payload: the product plus
// its resolved relations and the description rendered to HTML.
type ProductDetail struct {
	Product
	DescriptionHTML  string                  `json:"description_html"`
	CategoryName     string                  `json:"category_name,omitempty"`
	ManufacturerName string                  `json:"manufacturer_name,omitempty"`
	ModelLineName    string                  `json:"model_line_name,omitempty"`
	Characteristics  []ProductCharacteristic `json:"characteristics"`
}

// ProductPage is one page of a filtered product listing.
type ProductPage struct {
	Items   []Product `json:"items"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

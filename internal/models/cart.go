// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is an anonymous shopping cart identified by a cookie token.
type Cart struct {
	ID        uuid.UUID  `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Items     []CartItem `json:"items"`
}

// Total returns the cart total across all line items.
func (c *Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// CartItem is one product line in a cart. ProductName and Price are
// joined in from the products table for display.
type CartItem struct {
	ID          int64     `json:"id"`
	CartID      uuid.UUID `json:"cart_id"`
	ProductID   int64     `json:"product_id"`
	Quantity    int       `json:"quantity"`
	ProductName string    `json:"product_name"`
	Price       float64   `json:"price"`
}

// LineTotal returns price × quantity for this line.
func (i *CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

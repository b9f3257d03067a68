// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"vitrina/internal/apperr"
	"vitrina/internal/models"
)

// CartStore manages anonymous shopping carts.
type CartStore struct {
	db *sql.DB
}

// NewCartStore returns a new CartStore.
func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{db: db}
}

// Create inserts an empty cart and returns it.
func (s *CartStore) Create() (*models.Cart, error) {
	var c models.Cart
	err := s.db.QueryRow(`
		INSERT INTO carts DEFAULT VALUES
		RETURNING id, created_at, updated_at
	`).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}
	c.Items = []models.CartItem{}
	return &c, nil
}

// Find retrieves a cart with its items, joining product names and
// current prices. Returns nil if the cart does not exist.
func (s *CartStore) Find(id uuid.UUID) (*models.Cart, error) {
	var c models.Cart
	err := s.db.QueryRow(`
		SELECT id, created_at, updated_at FROM carts WHERE id = $1
	`, id).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, p.name, p.price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	c.Items = []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		err := rows.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.ProductName, &item.Price)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		c.Items = append(c.Items, item)
	}
	return &c, rows.Err()
}

// AddItem adds a product to the cart, merging quantities when the
// product is already in it. Quantity is capped by available stock.
func (s *CartStore) AddItem(cartID uuid.UUID, productID int64, quantity int) error {
	if quantity < 1 {
		return apperr.Validation("quantity must be at least 1")
	}

	var stock int
	var active bool
	err := s.db.QueryRow(`SELECT stock, is_active FROM products WHERE id = $1`, productID).Scan(&stock, &active)
	if err == sql.ErrNoRows {
		return apperr.NotFound("product %d not found", productID)
	}
	if err != nil {
		return fmt.Errorf("load product %d: %w", productID, err)
	}
	if !active {
		return apperr.NotFound("product %d not found", productID)
	}
	if stock < 1 {
		return apperr.Conflict("product is out of stock")
	}

	_, err = s.db.Exec(`
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, LEAST($3, $4))
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = LEAST(cart_items.quantity + $3, $4)
	`, cartID, productID, quantity, stock)
	if err != nil {
		if pgErrCode(err) == pgForeignKeyViolation {
			return apperr.NotFound("cart not found")
		}
		return fmt.Errorf("add cart item: %w", err)
	}
	return s.touch(cartID)
}

// UpdateItem sets the quantity of a cart line. Zero removes the line.
func (s *CartStore) UpdateItem(cartID uuid.UUID, productID int64, quantity int) error {
	if quantity < 0 {
		return apperr.Validation("quantity must not be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(cartID, productID)
	}

	res, err := s.db.Exec(`
		UPDATE cart_items SET quantity = LEAST($1, (SELECT stock FROM products WHERE id = $2))
		WHERE cart_id = $3 AND product_id = $2
	`, quantity, productID, cartID)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updated rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("product %d is not in the cart", productID)
	}
	return s.touch(cartID)
}

// RemoveItem removes a product line from the cart.
func (s *CartStore) RemoveItem(cartID uuid.UUID, productID int64) error {
	res, err := s.db.Exec(`
		DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2
	`, cartID, productID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removed rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("product %d is not in the cart", productID)
	}
	return s.touch(cartID)
}

// touch bumps the cart's updated_at so stale-cart cleanup can spare it.
func (s *CartStore) touch(cartID uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE carts SET updated_at = NOW() WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}

// DeleteStale removes carts untouched for the given number of days.
func (s *CartStore) DeleteStale(days int) (int64, error) {
	res, err := s.db.Exec(`
		DELETE FROM carts WHERE updated_at < NOW() - make_interval(days => $1)
	`, days)
	if err != nil {
		return 0, fmt.Errorf("delete stale carts: %w", err)
	}
	return res.RowsAffected()
}

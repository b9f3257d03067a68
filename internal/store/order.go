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

// OrderStore manages customer orders.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore returns a new OrderStore.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderColumns = `id, number, customer_name, customer_email, customer_phone, shipping_address, status, total, created_at, updated_at`

// scanOrder scans a row into an Order struct.
func scanOrder(scanner interface{ Scan(...any) error }) (*models.Order, error) {
	var o models.Order
	err := scanner.Scan(
		&o.ID, &o.Number, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.Status, &o.Total, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Checkout turns a cart into an order in one transaction: stock is
// checked and decremented with the product rows locked, item names and
// prices are denormalized into order_items, and the cart is emptied.
// Any failure rolls the whole thing back.
func (s *OrderStore) Checkout(cartID uuid.UUID, o *models.Order) (*models.Order, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin checkout: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT ci.product_id, ci.quantity, p.name, p.price, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.product_id
		FOR UPDATE OF p
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart for checkout: %w", err)
	}

	type line struct {
		productID int64
		quantity  int
		name      string
		price     float64
		stock     int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity, &l.name, &l.price, &l.stock); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan checkout line: %w", err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read checkout lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, apperr.Validation("cart is empty")
	}

	var total float64
	for _, l := range lines {
		if l.stock < l.quantity {
			return nil, apperr.Conflict("only %d unit(s) of %q left in stock", l.stock, l.name)
		}
		total += l.price * float64(l.quantity)
	}

	created := &models.Order{}
	err = tx.QueryRow(`
		INSERT INTO orders (customer_name, customer_email, customer_phone, shipping_address, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+orderColumns,
		o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.ShippingAddress, total,
	).Scan(
		&created.ID, &created.Number, &created.CustomerName, &created.CustomerEmail,
		&created.CustomerPhone, &created.ShippingAddress, &created.Status,
		&created.Total, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, apperr.Transaction(fmt.Errorf("insert order: %w", err))
	}

	for _, l := range lines {
		var item models.OrderItem
		err = tx.QueryRow(`
			INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, order_id, product_id, product_name, unit_price, quantity
		`, created.ID, l.productID, l.name, l.price, l.quantity).Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity,
		)
		if err != nil {
			return nil, apperr.Transaction(fmt.Errorf("insert order item: %w", err))
		}
		created.Items = append(created.Items, item)

		_, err = tx.Exec(`
			UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE id = $2
		`, l.quantity, l.productID)
		if err != nil {
			return nil, apperr.Transaction(fmt.Errorf("decrement stock for product %d: %w", l.productID, err))
		}
	}

	if _, err := tx.Exec(`DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return nil, apperr.Transaction(fmt.Errorf("empty cart: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Transaction(err)
	}
	return created, nil
}

// List returns one page of orders, newest first. status narrows the
// listing when non-empty.
func (s *OrderStore) List(status string, page, perPage int) ([]models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 50
	}

	where := ""
	args := []any{}
	if status != "" {
		where = " WHERE status = $1"
		args = append(args, status)
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, perPage, (page-1)*perPage)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

// FindByNumber retrieves an order with its items by public order number.
// Returns nil if not found.
func (s *OrderStore) FindByNumber(number uuid.UUID) (*models.Order, error) {
	row := s.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE number = $1`, number)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order by number: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT id, order_id, product_id, product_name, unit_price, quantity
		FROM order_items WHERE order_id = $1 ORDER BY id
	`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.UnitPrice, &item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

// UpdateStatus moves an order to a new fulfilment status. Cancelling an
// order restores the stock its items took.
func (s *OrderStore) UpdateStatus(id int64, status models.OrderStatus) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback()

	var current models.OrderStatus
	err = tx.QueryRow(`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err == sql.ErrNoRows {
		return apperr.NotFound("order %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("load order %d: %w", id, err)
	}
	if current == status {
		return nil
	}
	if current == models.OrderStatusCancelled {
		return apperr.Conflict("cancelled orders cannot change status")
	}

	if status == models.OrderStatusCancelled {
		_, err = tx.Exec(`
			UPDATE products p SET stock = p.stock + oi.quantity, updated_at = NOW()
			FROM order_items oi
			WHERE oi.order_id = $1 AND oi.product_id = p.id
		`, id)
		if err != nil {
			return apperr.Transaction(fmt.Errorf("restore stock: %w", err))
		}
	}

	_, err = tx.Exec(`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return apperr.Transaction(fmt.Errorf("update order status: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return apperr.Transaction(err)
	}
	return nil
}

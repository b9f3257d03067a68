// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"vitrina/internal/apperr"
	"vitrina/internal/models"
)

// ProductStore manages products and their characteristic links.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, name, slug, sku, description, price, stock, category_id, manufacturer_id, model_line_id, is_active, created_at, updated_at`

// scanProduct scans a row into a Product struct.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	err := scanner.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.Price, &p.Stock,
		&p.CategoryID, &p.ManufacturerID, &p.ModelLineID, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductFilter narrows a product listing. Zero values mean "no filter".
type ProductFilter struct {
	CategoryIDs    []int64
	ManufacturerID int64
	ModelLineID    int64
	ValueIDs       []int64
	MinPrice       float64
	MaxPrice       float64
	Search         string
	InStockOnly    bool
	ActiveOnly     bool
	Page           int
	PerPage        int
}

// List returns one page of products matching the filter, newest first.
// A product matches ValueIDs when it is linked to every given value.
func (s *ProductStore) List(f ProductFilter) (*models.ProductPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 24
	}

	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ActiveOnly {
		conds = append(conds, "p.is_active = TRUE")
	}
	if f.InStockOnly {
		conds = append(conds, "p.stock > 0")
	}
	if len(f.CategoryIDs) > 0 {
		conds = append(conds, "p.category_id = ANY("+arg(f.CategoryIDs)+")")
	}
	if f.ManufacturerID != 0 {
		conds = append(conds, "p.manufacturer_id = "+arg(f.ManufacturerID))
	}
	if f.ModelLineID != 0 {
		conds = append(conds, "p.model_line_id = "+arg(f.ModelLineID))
	}
	if f.MinPrice > 0 {
		conds = append(conds, "p.price >= "+arg(f.MinPrice))
	}
	if f.MaxPrice > 0 {
		conds = append(conds, "p.price <= "+arg(f.MaxPrice))
	}
	if f.Search != "" {
		ph := arg("%" + f.Search + "%")
		conds = append(conds, "(p.name ILIKE "+ph+" OR p.sku ILIKE "+ph+")")
	}
	if len(f.ValueIDs) > 0 {
		conds = append(conds, fmt.Sprintf(`(
			SELECT COUNT(DISTINCT pc.value_id) FROM product_characteristics pc
			WHERE pc.product_id = p.id AND pc.value_id = ANY(%s)
		) = %s`, arg(f.ValueIDs), arg(len(f.ValueIDs))))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM products p`+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + prefixColumns("p", productColumns) + ` FROM products p` + where +
		` ORDER BY p.created_at DESC, p.id DESC LIMIT ` + arg(f.PerPage) + ` OFFSET ` + arg((f.Page-1)*f.PerPage)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	page := &models.ProductPage{Items: []models.Product{}, Total: total, Page: f.Page, PerPage: f.PerPage}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		page.Items = append(page.Items, *p)
	}
	return page, rows.Err()
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}

// FindByID retrieves a product by ID. Returns nil if not found.
func (s *ProductStore) FindByID(id int64) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a product by slug. Returns nil if not found.
func (s *ProductStore) FindBySlug(slug string) (*models.Product, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by slug: %w", err)
	}
	return p, nil
}

// Detail loads the full product page payload for a slug: the product,
// its resolved relation names and its characteristics. The Markdown
// description is rendered by the handler layer. Returns nil if not found.
func (s *ProductStore) Detail(slug string) (*models.ProductDetail, error) {
	var d models.ProductDetail
	var categoryName, manufacturerName, modelLineName sql.NullString
	err := s.db.QueryRow(`
		SELECT `+prefixColumns("p", productColumns)+`,
		       c.name, m.name, ml.name
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN manufacturers m ON m.id = p.manufacturer_id
		LEFT JOIN model_lines ml ON ml.id = p.model_line_id
		WHERE p.slug = $1
	`, slug).Scan(
		&d.ID, &d.Name, &d.Slug, &d.SKU, &d.Description, &d.Price, &d.Stock,
		&d.CategoryID, &d.ManufacturerID, &d.ModelLineID, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt,
		&categoryName, &manufacturerName, &modelLineName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load product detail: %w", err)
	}
	d.CategoryName = categoryName.String
	d.ManufacturerName = manufacturerName.String
	d.ModelLineName = modelLineName.String

	d.Characteristics, err = s.Characteristics(d.ID)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Characteristics returns a product's resolved characteristics ordered
// by group then value.
func (s *ProductStore) Characteristics(productID int64) ([]models.ProductCharacteristic, error) {
	rows, err := s.db.Query(`
		SELECT g.id, g.name, v.id, v.value
		FROM product_characteristics pc
		JOIN characteristic_values v ON v.id = pc.value_id
		JOIN characteristic_groups g ON g.id = v.group_id
		WHERE pc.product_id = $1
		ORDER BY g.sort_order, g.id, v.sort_order, v.id
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("load product characteristics: %w", err)
	}
	defer rows.Close()

	items := []models.ProductCharacteristic{}
	for rows.Next() {
		var c models.ProductCharacteristic
		if err := rows.Scan(&c.GroupID, &c.GroupName, &c.ValueID, &c.Value); err != nil {
			return nil, fmt.Errorf("scan product characteristic: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Create inserts a new product and returns it.
func (s *ProductStore) Create(p *models.Product) (*models.Product, error) {
	row := s.db.QueryRow(`
		INSERT INTO products (name, slug, sku, description, price, stock,
			category_id, manufacturer_id, model_line_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+productColumns,
		p.Name, p.Slug, p.SKU, p.Description, p.Price, p.Stock,
		p.CategoryID, p.ManufacturerID, p.ModelLineID, p.IsActive,
	)
	result, err := scanProduct(row)
	if err != nil {
		switch pgErrCode(err) {
		case pgUniqueViolation:
			return nil, apperr.Conflict("product slug %q or SKU %q already exists", p.Slug, p.SKU)
		case pgForeignKeyViolation:
			return nil, apperr.NotFound("referenced category, manufacturer or model line not found")
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return result, nil
}

// Update modifies an existing product.
func (s *ProductStore) Update(p *models.Product) error {
	res, err := s.db.Exec(`
		UPDATE products SET
			name = $1, slug = $2, sku = $3, description = $4, price = $5,
			stock = $6, category_id = $7, manufacturer_id = $8,
			model_line_id = $9, is_active = $10, updated_at = NOW()
		WHERE id = $11
	`, p.Name, p.Slug, p.SKU, p.Description, p.Price, p.Stock,
		p.CategoryID, p.ManufacturerID, p.ModelLineID, p.IsActive, p.ID)
	if err != nil {
		switch pgErrCode(err) {
		case pgUniqueViolation:
			return apperr.Conflict("product slug %q or SKU %q already exists", p.Slug, p.SKU)
		case pgForeignKeyViolation:
			return apperr.NotFound("referenced category, manufacturer or model line not found")
		}
		return fmt.Errorf("update product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updated rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("product %d not found", p.ID)
	}
	return nil
}

// SetCharacteristics replaces a product's characteristic links with the
// given value ids in one transaction.
func (s *ProductStore) SetCharacteristics(productID int64, valueIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin set characteristics: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM product_characteristics WHERE product_id = $1`, productID); err != nil {
		return apperr.Transaction(fmt.Errorf("clear product characteristics: %w", err))
	}
	for _, valueID := range valueIDs {
		_, err := tx.Exec(`
			INSERT INTO product_characteristics (product_id, value_id) VALUES ($1, $2)
		`, productID, valueID)
		if err != nil {
			if pgErrCode(err) == pgForeignKeyViolation {
				return apperr.NotFound("characteristic value %d not found", valueID)
			}
			return apperr.Transaction(fmt.Errorf("link value %d: %w", valueID, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return apperr.Transaction(err)
	}
	return nil
}

// Delete removes a product and its characteristic links.
func (s *ProductStore) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleted rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("product %d not found", id)
	}
	return nil
}

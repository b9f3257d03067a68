// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"vitrina/internal/apperr"
	"vitrina/internal/models"
)

// ManufacturerStore manages manufacturers and their model lines.
type ManufacturerStore struct {
	db *sql.DB
}

// NewManufacturerStore returns a new ManufacturerStore.
func NewManufacturerStore(db *sql.DB) *ManufacturerStore {
	return &ManufacturerStore{db: db}
}

const manufacturerColumns = `id, name, slug, country, description, created_at, updated_at`

// scanManufacturer scans a row into a Manufacturer struct.
func scanManufacturer(scanner interface{ Scan(...any) error }) (*models.Manufacturer, error) {
	var m models.Manufacturer
	err := scanner.Scan(
		&m.ID, &m.Name, &m.Slug, &m.Country, &m.Description,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns all manufacturers ordered by name, with product counts
// and model lines attached.
func (s *ManufacturerStore) List() ([]models.Manufacturer, error) {
	rows, err := s.db.Query(`
		SELECT m.id, m.name, m.slug, m.country, m.description,
		       m.created_at, m.updated_at,
		       COUNT(p.id) AS product_count
		FROM manufacturers m
		LEFT JOIN products p ON p.manufacturer_id = m.id
		GROUP BY m.id
		ORDER BY m.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list manufacturers: %w", err)
	}
	defer rows.Close()

	var items []models.Manufacturer
	index := map[int64]int{}
	for rows.Next() {
		var m models.Manufacturer
		err := rows.Scan(
			&m.ID, &m.Name, &m.Slug, &m.Country, &m.Description,
			&m.CreatedAt, &m.UpdatedAt, &m.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan manufacturer: %w", err)
		}
		index[m.ID] = len(items)
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lineRows, err := s.db.Query(`
		SELECT id, manufacturer_id, name, slug, created_at
		FROM model_lines ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list model lines: %w", err)
	}
	defer lineRows.Close()

	for lineRows.Next() {
		var l models.ModelLine
		if err := lineRows.Scan(&l.ID, &l.ManufacturerID, &l.Name, &l.Slug, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan model line: %w", err)
		}
		if i, ok := index[l.ManufacturerID]; ok {
			items[i].ModelLines = append(items[i].ModelLines, l)
		}
	}
	return items, lineRows.Err()
}

// FindByID retrieves a manufacturer by ID. Returns nil if not found.
func (s *ManufacturerStore) FindByID(id int64) (*models.Manufacturer, error) {
	row := s.db.QueryRow(`SELECT `+manufacturerColumns+` FROM manufacturers WHERE id = $1`, id)
	m, err := scanManufacturer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find manufacturer by id: %w", err)
	}
	return m, nil
}

// Create inserts a new manufacturer and returns it.
func (s *ManufacturerStore) Create(m *models.Manufacturer) (*models.Manufacturer, error) {
	row := s.db.QueryRow(`
		INSERT INTO manufacturers (name, slug, country, description)
		VALUES ($1, $2, $3, $4)
		RETURNING `+manufacturerColumns,
		m.Name, m.Slug, m.Country, m.Description,
	)
	created, err := scanManufacturer(row)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, apperr.Conflict("manufacturer %q already exists", m.Name)
		}
		return nil, fmt.Errorf("create manufacturer: %w", err)
	}
	return created, nil
}

// Update modifies an existing manufacturer.
func (s *ManufacturerStore) Update(m *models.Manufacturer) error {
	res, err := s.db.Exec(`
		UPDATE manufacturers SET
			name = $1, slug = $2, country = $3, description = $4, updated_at = NOW()
		WHERE id = $5
	`, m.Name, m.Slug, m.Country, m.Description, m.ID)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return apperr.Conflict("manufacturer %q already exists", m.Name)
		}
		return fmt.Errorf("update manufacturer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updated rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("manufacturer %d not found", m.ID)
	}
	return nil
}

// Delete removes a manufacturer. Products keep their rows, losing only
// the reference (ON DELETE SET NULL), and model lines go with it.
func (s *ManufacturerStore) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM manufacturers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete manufacturer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleted rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("manufacturer %d not found", id)
	}
	return nil
}

// CreateModelLine inserts a model line under a manufacturer.
func (s *ManufacturerStore) CreateModelLine(l *models.ModelLine) (*models.ModelLine, error) {
	var created models.ModelLine
	err := s.db.QueryRow(`
		INSERT INTO model_lines (manufacturer_id, name, slug)
		VALUES ($1, $2, $3)
		RETURNING id, manufacturer_id, name, slug, created_at
	`, l.ManufacturerID, l.Name, l.Slug).Scan(
		&created.ID, &created.ManufacturerID, &created.Name, &created.Slug, &created.CreatedAt,
	)
	if err != nil {
		switch pgErrCode(err) {
		case pgUniqueViolation:
			return nil, apperr.Conflict("model line %q already exists for this manufacturer", l.Name)
		case pgForeignKeyViolation:
			return nil, apperr.NotFound("manufacturer %d not found", l.ManufacturerID)
		}
		return nil, fmt.Errorf("create model line: %w", err)
	}
	return &created, nil
}

// DeleteModelLine removes a model line.
func (s *ManufacturerStore) DeleteModelLine(id int64) error {
	res, err := s.db.Exec(`DELETE FROM model_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete model line: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleted rows: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("model line %d not found", id)
	}
	return nil
}

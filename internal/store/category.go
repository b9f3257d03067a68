// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"vitrina/internal/apperr"
	"vitrina/internal/models"
	"vitrina/internal/taxonomy"
)

// CategoryStore manages the product category tree in the database.
type CategoryStore struct {
	db           *sql.DB
	fallbackSlug string
}

// NewCategoryStore returns a new CategoryStore. fallbackSlug names the
// category that adopts products orphaned by a forced subtree delete.
func NewCategoryStore(db *sql.DB, fallbackSlug string) *CategoryStore {
	return &CategoryStore{db: db, fallbackSlug: fallbackSlug}
}

const categoryColumns = `id, name, slug, description, parent_id, sort_order, is_active, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.ParentID, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by sort_order, with product counts.
// When activeOnly is true, inactive categories are filtered out.
func (s *CategoryStore) List(activeOnly bool) ([]models.Category, error) {
	query := `
		SELECT c.id, c.name, c.slug, c.description, c.parent_id, c.sort_order,
		       c.is_active, c.created_at, c.updated_at,
		       COUNT(p.id) AS product_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id`
	if activeOnly {
		query += `
		WHERE c.is_active = TRUE`
	}
	query += `
		GROUP BY c.id
		ORDER BY c.sort_order, c.id`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description,
			&c.ParentID, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&c.ProductCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Tree assembles the nested and flat views of the category tree from a
// single read. Siblings are ordered by sort_order then id, rows whose
// parent no longer exists are promoted to roots.
func (s *CategoryStore) Tree(activeOnly bool) (*models.CategoryTree, error) {
	flat, err := s.List(activeOnly)
	if err != nil {
		return nil, err
	}

	nodes := make([]taxonomy.Node, len(flat))
	byID := make(map[int64]models.Category, len(flat))
	for i, c := range flat {
		nodes[i] = c.TaxonomyNode()
		byID[c.ID] = c
	}

	t := taxonomy.Build(nodes)
	result := &models.CategoryTree{}
	result.Roots = buildCategoryNodes(t.Roots, byID, &result.Flat)
	return result, nil
}

// buildCategoryNodes converts taxonomy tree nodes back into category tree
// nodes, appending each one to flat in the same depth-first order.
func buildCategoryNodes(tns []*taxonomy.TreeNode, byID map[int64]models.Category, flat *[]*models.CategoryTreeNode) []*models.CategoryTreeNode {
	var result []*models.CategoryTreeNode
	for _, tn := range tns {
		node := &models.CategoryTreeNode{
			Category:      byID[tn.ID],
			Level:         tn.Level,
			ChildrenCount: tn.ChildrenCount,
		}
		*flat = append(*flat, node)
		node.Children = buildCategoryNodes(tn.Children, byID, flat)
		result = append(result, node)
	}
	return result
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id int64) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(slug string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. The parent, when given,
// must exist.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	if c.ParentID != nil {
		parent, err := s.FindByID(*c.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.NotFound("parent category %d not found", *c.ParentID)
		}
	}

	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, description, parent_id, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.SortOrder, c.IsActive,
	)
	result, err := scanCategory(row)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, apperr.Conflict("category slug %q already exists", c.Slug)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category. The whole operation runs in one
// transaction: existence checks, the cycle guard against the current
// tree, and the write all see the same snapshot. Moving a node under
// its own descendant is rejected with the offending ancestry path.
func (s *CategoryStore) Update(c *models.Category) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update category: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, c.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if !exists {
		return apperr.NotFound("category %d not found", c.ID)
	}

	if c.ParentID != nil {
		var parentExists bool
		if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, *c.ParentID).Scan(&parentExists); err != nil {
			return fmt.Errorf("check parent category: %w", err)
		}
		if !parentExists {
			return apperr.NotFound("parent category %d not found", *c.ParentID)
		}

		parents, err := loadParentMap(tx, `SELECT id, parent_id FROM categories`, "category")
		if err != nil {
			return err
		}
		if cycle, path := taxonomy.WouldCreateCycle(c.ID, *c.ParentID, parents); cycle {
			return apperr.Cycle(c.ID, *c.ParentID, path)
		}
	}

	_, err = tx.Exec(`
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4,
			sort_order = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`, c.Name, c.Slug, c.Description, c.ParentID, c.SortOrder, c.IsActive, c.ID)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return apperr.Conflict("category slug %q already exists", c.Slug)
		}
		return fmt.Errorf("update category: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Transaction(err)
	}
	return nil
}

// Delete removes a category. Without force the delete is refused while
// the category still has children or products, reporting what blocks it.
// With force the whole subtree is removed in one transaction: products
// are moved to the fallback category (or detached when the fallback is
// missing or part of the deleted subtree) and nodes are deleted from the
// deepest level upward so no child ever outlives its parent.
func (s *CategoryStore) Delete(id int64, force bool) (*DeleteResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin delete category: %w", err)
	}
	defer tx.Rollback()

	var name string
	err = tx.QueryRow(`SELECT name FROM categories WHERE id = $1`, id).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("category %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load category %d: %w", id, err)
	}

	if !force {
		result, err := s.deletePlain(tx, id)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, apperr.Transaction(err)
		}
		return result, nil
	}

	result, err := s.deleteSubtree(tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Transaction(err)
	}
	return result, nil
}

// deletePlain removes a single childless, productless category.
func (s *CategoryStore) deletePlain(tx *sql.Tx, id int64) (*DeleteResult, error) {
	children, err := childNames(tx, `SELECT id, name FROM categories WHERE parent_id = $1 ORDER BY sort_order, id`, id)
	if err != nil {
		return nil, fmt.Errorf("check category children: %w", err)
	}
	if len(children) > 0 {
		return nil, apperr.HasChildren(len(children), children)
	}

	var productCount int
	err = tx.QueryRow(`SELECT COUNT(*) FROM products WHERE category_id = $1`, id).Scan(&productCount)
	if err != nil {
		return nil, fmt.Errorf("count category products: %w", err)
	}
	if productCount > 0 {
		sample, err := sampleNames(tx, `SELECT name FROM products WHERE category_id = $1 ORDER BY id LIMIT $2`, id, sampleLimit)
		if err != nil {
			return nil, fmt.Errorf("sample category products: %w", err)
		}
		return nil, apperr.HasLeafRefs(productCount, sample)
	}

	if _, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete category %d: %w", id, err)
	}
	return &DeleteResult{DeletedNodes: []int64{id}}, nil
}

// deleteSubtree force-deletes a category and all of its descendants.
func (s *CategoryStore) deleteSubtree(tx *sql.Tx, id int64) (*DeleteResult, error) {
	nodes, err := taxonomyNodes(tx, `SELECT id, name, parent_id, sort_order FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("load category tree: %w", err)
	}

	levels := taxonomy.Descendants(id, nodes)
	doomed := map[int64]bool{id: true}
	all := []int64{id}
	for _, level := range levels {
		for _, nodeID := range level {
			doomed[nodeID] = true
			all = append(all, nodeID)
		}
	}

	reassigned, err := s.reassignProducts(tx, all, doomed)
	if err != nil {
		return nil, err
	}

	// Deepest level first, the root last.
	for i := len(levels) - 1; i >= 0; i-- {
		if _, err := tx.Exec(`DELETE FROM categories WHERE id = ANY($1)`, levels[i]); err != nil {
			return nil, apperr.Transaction(fmt.Errorf("delete category level %d: %w", i, err))
		}
	}
	if _, err := tx.Exec(`DELETE FROM categories WHERE id = $1`, id); err != nil {
		return nil, apperr.Transaction(fmt.Errorf("delete category %d: %w", id, err))
	}

	return &DeleteResult{DeletedNodes: all, ReassignedProducts: reassigned}, nil
}

// reassignProducts moves products out of the doomed categories. They go
// to the fallback category unless it is missing or itself being deleted,
// in which case they are left uncategorized.
func (s *CategoryStore) reassignProducts(tx *sql.Tx, doomedIDs []int64, doomed map[int64]bool) (int64, error) {
	var fallbackID sql.NullInt64
	err := tx.QueryRow(`SELECT id FROM categories WHERE slug = $1`, s.fallbackSlug).Scan(&fallbackID.Int64)
	if err == nil {
		fallbackID.Valid = !doomed[fallbackID.Int64]
	} else if err != sql.ErrNoRows {
		return 0, fmt.Errorf("find fallback category: %w", err)
	}

	res, err := tx.Exec(`UPDATE products SET category_id = $1, updated_at = NOW() WHERE category_id = ANY($2)`, fallbackID, doomedIDs)
	if err != nil {
		return 0, apperr.Transaction(fmt.Errorf("reassign products: %w", err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reassigned rows: %w", err)
	}
	return n, nil
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CategoryStore) NextSortOrder(parentID *int64) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, err
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}

// SubtreeIDs returns the ids of a category and all of its descendants.
// Used by product listing to include a whole branch in a category filter.
func (s *CategoryStore) SubtreeIDs(id int64) ([]int64, error) {
	nodes, err := taxonomyNodesDB(s.db, `SELECT id, name, parent_id, sort_order FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("load category tree: %w", err)
	}
	ids := []int64{id}
	for _, level := range taxonomy.Descendants(id, nodes) {
		ids = append(ids, level...)
	}
	return ids, nil
}

// childNames collects (id, name) rows and returns the names in order.
func childNames(tx *sql.Tx, query string, id int64) ([]string, error) {
	rows, err := tx.Query(query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var childID int64
		var name string
		if err := rows.Scan(&childID, &name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// sampleNames collects single-column name rows.
func sampleNames(tx *sql.Tx, query string, args ...any) ([]string, error) {
	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// rowQuerier is implemented by *sql.DB and *sql.Tx.
type rowQuerier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// taxonomyNodes loads tree nodes inside a transaction.
func taxonomyNodes(tx *sql.Tx, query string) ([]taxonomy.Node, error) {
	return loadTaxonomyNodes(tx, query)
}

// taxonomyNodesDB loads tree nodes outside a transaction.
func taxonomyNodesDB(db *sql.DB, query string) ([]taxonomy.Node, error) {
	return loadTaxonomyNodes(db, query)
}

func loadTaxonomyNodes(q rowQuerier, query string) ([]taxonomy.Node, error) {
	rows, err := q.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []taxonomy.Node
	for rows.Next() {
		var n taxonomy.Node
		if err := rows.Scan(&n.ID, &n.Name, &n.ParentID, &n.SortOrder); err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

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

// CharacteristicStore manages the characteristic group tree and the
// values that hang off it.
type CharacteristicStore struct {
	db *sql.DB
}

// NewCharacteristicStore returns a new CharacteristicStore.
func NewCharacteristicStore(db *sql.DB) *CharacteristicStore {
	return &CharacteristicStore{db: db}
}

const characteristicGroupColumns = `id, name, description, parent_id, sort_order, is_active, created_at, updated_at`

// scanCharacteristicGroup scans a row into a CharacteristicGroup struct.
func scanCharacteristicGroup(scanner interface{ Scan(...any) error }) (*models.CharacteristicGroup, error) {
	var g models.CharacteristicGroup
	err := scanner.Scan(
		&g.ID, &g.Name, &g.Description, &g.ParentID,
		&g.SortOrder, &g.IsActive, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// List returns all characteristic groups ordered by sort_order.
func (s *CharacteristicStore) List(activeOnly bool) ([]models.CharacteristicGroup, error) {
	query := `SELECT ` + characteristicGroupColumns + ` FROM characteristic_groups`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY sort_order, id`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list characteristic groups: %w", err)
	}
	defer rows.Close()

	var items []models.CharacteristicGroup
	for rows.Next() {
		g, err := scanCharacteristicGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan characteristic group: %w", err)
		}
		items = append(items, *g)
	}
	return items, rows.Err()
}

// Tree assembles the nested and flat views of the characteristic group
// tree, with each group's values attached.
func (s *CharacteristicStore) Tree(activeOnly bool) (*models.CharacteristicGroupTree, error) {
	flat, err := s.List(activeOnly)
	if err != nil {
		return nil, err
	}

	values, err := s.valuesByGroup()
	if err != nil {
		return nil, err
	}

	nodes := make([]taxonomy.Node, len(flat))
	byID := make(map[int64]models.CharacteristicGroup, len(flat))
	for i, g := range flat {
		g.Values = values[g.ID]
		nodes[i] = g.TaxonomyNode()
		byID[g.ID] = g
	}

	t := taxonomy.Build(nodes)
	result := &models.CharacteristicGroupTree{}
	result.Roots = buildCharacteristicNodes(t.Roots, byID, &result.Flat)
	return result, nil
}

// buildCharacteristicNodes mirrors buildCategoryNodes for group trees.
func buildCharacteristicNodes(tns []*taxonomy.TreeNode, byID map[int64]models.CharacteristicGroup, flat *[]*models.CharacteristicGroupTreeNode) []*models.CharacteristicGroupTreeNode {
	var result []*models.CharacteristicGroupTreeNode
	for _, tn := range tns {
		node := &models.CharacteristicGroupTreeNode{
			CharacteristicGroup: byID[tn.ID],
			Level:               tn.Level,
			ChildrenCount:       tn.ChildrenCount,
		}
		*flat = append(*flat, node)
		node.Children = buildCharacteristicNodes(tn.Children, byID, flat)
		result = append(result, node)
	}
	return result
}

// valuesByGroup loads all characteristic values keyed by group, with
// per-value usage counts.
func (s *CharacteristicStore) valuesByGroup() (map[int64][]models.CharacteristicValue, error) {
	rows, err := s.db.Query(`
		SELECT v.id, v.group_id, v.value, v.sort_order, v.created_at,
		       COUNT(pc.product_id) AS usage_count
		FROM characteristic_values v
		LEFT JOIN product_characteristics pc ON pc.value_id = v.id
		GROUP BY v.id
		ORDER BY v.sort_order, v.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list characteristic values: %w", err)
	}
	defer rows.Close()

	values := make(map[int64][]models.CharacteristicValue)
	for rows.Next() {
		var v models.CharacteristicValue
		if err := rows.Scan(&v.ID, &v.GroupID, &v.Value, &v.SortOrder, &v.CreatedAt, &v.UsageCount); err != nil {
			return nil, fmt.Errorf("scan characteristic value: %w", err)
		}
		values[v.GroupID] = append(values[v.GroupID], v)
	}
	return values, rows.Err()
}

// FindByID retrieves a characteristic group by ID. Returns nil if not found.
func (s *CharacteristicStore) FindByID(id int64) (*models.CharacteristicGroup, error) {
	row := s.db.QueryRow(`SELECT `+characteristicGroupColumns+` FROM characteristic_groups WHERE id = $1`, id)
	g, err := scanCharacteristicGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find characteristic group by id: %w", err)
	}
	return g, nil
}

// Create inserts a new characteristic group and returns it.
func (s *CharacteristicStore) Create(g *models.CharacteristicGroup) (*models.CharacteristicGroup, error) {
	if g.ParentID != nil {
		parent, err := s.FindByID(*g.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, apperr.NotFound("parent characteristic group %d not found", *g.ParentID)
		}
	}

	row := s.db.QueryRow(`
		INSERT INTO characteristic_groups (name, description, parent_id, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+characteristicGroupColumns,
		g.Name, g.Description, g.ParentID, g.SortOrder, g.IsActive,
	)
	result, err := scanCharacteristicGroup(row)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, apperr.Conflict("characteristic group %q already exists under this parent", g.Name)
		}
		return nil, fmt.Errorf("create characteristic group: %w", err)
	}
	return result, nil
}

// Update modifies an existing characteristic group. Existence checks,
// the cycle guard, and the write run in one transaction so a reparent
// is validated against the tree it lands on.
func (s *CharacteristicStore) Update(g *models.CharacteristicGroup) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update characteristic group: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM characteristic_groups WHERE id = $1)`, g.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check characteristic group: %w", err)
	}
	if !exists {
		return apperr.NotFound("characteristic group %d not found", g.ID)
	}

	if g.ParentID != nil {
		var parentExists bool
		if err := tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM characteristic_groups WHERE id = $1)`, *g.ParentID).Scan(&parentExists); err != nil {
			return fmt.Errorf("check parent characteristic group: %w", err)
		}
		if !parentExists {
			return apperr.NotFound("parent characteristic group %d not found", *g.ParentID)
		}

		parents, err := loadParentMap(tx, `SELECT id, parent_id FROM characteristic_groups`, "characteristic group")
		if err != nil {
			return err
		}
		if cycle, path := taxonomy.WouldCreateCycle(g.ID, *g.ParentID, parents); cycle {
			return apperr.Cycle(g.ID, *g.ParentID, path)
		}
	}

	_, err = tx.Exec(`
		UPDATE characteristic_groups SET
			name = $1, description = $2, parent_id = $3,
			sort_order = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
	`, g.Name, g.Description, g.ParentID, g.SortOrder, g.IsActive, g.ID)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return apperr.Conflict("characteristic group %q already exists under this parent", g.Name)
		}
		return fmt.Errorf("update characteristic group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Transaction(err)
	}
	return nil
}

// Delete removes a characteristic group. Without force the delete is
// refused while child groups exist or any of the group's values is
// still linked to a product. With force the whole subtree goes in one
// transaction: product links first, then values, then groups from the
// deepest level upward.
func (s *CharacteristicStore) Delete(id int64, force bool) (*DeleteResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin delete characteristic group: %w", err)
	}
	defer tx.Rollback()

	var name string
	err = tx.QueryRow(`SELECT name FROM characteristic_groups WHERE id = $1`, id).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("characteristic group %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("load characteristic group %d: %w", id, err)
	}

	var result *DeleteResult
	if force {
		result, err = s.deleteSubtree(tx, id)
	} else {
		result, err = s.deletePlain(tx, id)
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Transaction(err)
	}
	return result, nil
}

// deletePlain removes a single group whose values are unused. Unused
// values are removed along with their group.
func (s *CharacteristicStore) deletePlain(tx *sql.Tx, id int64) (*DeleteResult, error) {
	children, err := childNames(tx, `SELECT id, name FROM characteristic_groups WHERE parent_id = $1 ORDER BY sort_order, id`, id)
	if err != nil {
		return nil, fmt.Errorf("check characteristic group children: %w", err)
	}
	if len(children) > 0 {
		return nil, apperr.HasChildren(len(children), children)
	}

	var usageCount int
	err = tx.QueryRow(`
		SELECT COUNT(*)
		FROM product_characteristics pc
		JOIN characteristic_values v ON v.id = pc.value_id
		WHERE v.group_id = $1
	`, id).Scan(&usageCount)
	if err != nil {
		return nil, fmt.Errorf("count characteristic usages: %w", err)
	}
	if usageCount > 0 {
		sample, err := sampleNames(tx, `
			SELECT DISTINCT p.name
			FROM products p
			JOIN product_characteristics pc ON pc.product_id = p.id
			JOIN characteristic_values v ON v.id = pc.value_id
			WHERE v.group_id = $1
			ORDER BY p.name LIMIT $2
		`, id, sampleLimit)
		if err != nil {
			return nil, fmt.Errorf("sample characteristic usages: %w", err)
		}
		return nil, apperr.HasLeafRefs(usageCount, sample)
	}

	res, err := tx.Exec(`DELETE FROM characteristic_values WHERE group_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("delete characteristic values: %w", err)
	}
	removedValues, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("removed value rows: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM characteristic_groups WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("delete characteristic group %d: %w", id, err)
	}
	return &DeleteResult{DeletedNodes: []int64{id}, RemovedValues: removedValues}, nil
}

// deleteSubtree force-deletes a group, its descendants, their values and
// every product link to those values.
func (s *CharacteristicStore) deleteSubtree(tx *sql.Tx, id int64) (*DeleteResult, error) {
	nodes, err := taxonomyNodes(tx, `SELECT id, name, parent_id, sort_order FROM characteristic_groups`)
	if err != nil {
		return nil, fmt.Errorf("load characteristic group tree: %w", err)
	}

	levels := taxonomy.Descendants(id, nodes)
	all := []int64{id}
	for _, level := range levels {
		all = append(all, level...)
	}

	res, err := tx.Exec(`
		DELETE FROM product_characteristics
		WHERE value_id IN (SELECT id FROM characteristic_values WHERE group_id = ANY($1))
	`, all)
	if err != nil {
		return nil, apperr.Transaction(fmt.Errorf("delete product links: %w", err))
	}
	removedLinks, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("removed link rows: %w", err)
	}

	res, err = tx.Exec(`DELETE FROM characteristic_values WHERE group_id = ANY($1)`, all)
	if err != nil {
		return nil, apperr.Transaction(fmt.Errorf("delete characteristic values: %w", err))
	}
	removedValues, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("removed value rows: %w", err)
	}

	for i := len(levels) - 1; i >= 0; i-- {
		if _, err := tx.Exec(`DELETE FROM characteristic_groups WHERE id = ANY($1)`, levels[i]); err != nil {
			return nil, apperr.Transaction(fmt.Errorf("delete characteristic group level %d: %w", i, err))
		}
	}
	if _, err := tx.Exec(`DELETE FROM characteristic_groups WHERE id = $1`, id); err != nil {
		return nil, apperr.Transaction(fmt.Errorf("delete characteristic group %d: %w", id, err))
	}

	return &DeleteResult{DeletedNodes: all, RemovedValues: removedValues, RemovedLinks: removedLinks}, nil
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CharacteristicStore) NextSortOrder(parentID *int64) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM characteristic_groups WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM characteristic_groups WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, err
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}

// CreateValue inserts a value into a group.
func (s *CharacteristicStore) CreateValue(v *models.CharacteristicValue) (*models.CharacteristicValue, error) {
	group, err := s.FindByID(v.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperr.NotFound("characteristic group %d not found", v.GroupID)
	}

	var created models.CharacteristicValue
	err = s.db.QueryRow(`
		INSERT INTO characteristic_values (group_id, value, sort_order)
		VALUES ($1, $2, $3)
		RETURNING id, group_id, value, sort_order, created_at
	`, v.GroupID, v.Value, v.SortOrder).Scan(
		&created.ID, &created.GroupID, &created.Value, &created.SortOrder, &created.CreatedAt,
	)
	if err != nil {
		if pgErrCode(err) == pgUniqueViolation {
			return nil, apperr.Conflict("value %q already exists in this group", v.Value)
		}
		return nil, fmt.Errorf("create characteristic value: %w", err)
	}
	return &created, nil
}

// DeleteValue removes a single value. A value still linked to products
// is refused unless force is set, in which case the links go too.
func (s *CharacteristicStore) DeleteValue(id int64, force bool) (*DeleteResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin delete characteristic value: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRow(`SELECT EXISTS (SELECT 1 FROM characteristic_values WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("load characteristic value %d: %w", id, err)
	}
	if !exists {
		return nil, apperr.NotFound("characteristic value %d not found", id)
	}

	var usageCount int
	err = tx.QueryRow(`SELECT COUNT(*) FROM product_characteristics WHERE value_id = $1`, id).Scan(&usageCount)
	if err != nil {
		return nil, fmt.Errorf("count value usages: %w", err)
	}

	var removedLinks int64
	if usageCount > 0 {
		if !force {
			sample, err := sampleNames(tx, `
				SELECT p.name
				FROM products p
				JOIN product_characteristics pc ON pc.product_id = p.id
				WHERE pc.value_id = $1
				ORDER BY p.name LIMIT $2
			`, id, sampleLimit)
			if err != nil {
				return nil, fmt.Errorf("sample value usages: %w", err)
			}
			return nil, apperr.HasLeafRefs(usageCount, sample)
		}
		res, err := tx.Exec(`DELETE FROM product_characteristics WHERE value_id = $1`, id)
		if err != nil {
			return nil, apperr.Transaction(fmt.Errorf("delete value links: %w", err))
		}
		removedLinks, err = res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("removed link rows: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM characteristic_values WHERE id = $1`, id); err != nil {
		return nil, apperr.Transaction(fmt.Errorf("delete characteristic value %d: %w", id, err))
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Transaction(err)
	}
	return &DeleteResult{RemovedValues: 1, RemovedLinks: removedLinks}, nil
}

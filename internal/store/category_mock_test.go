// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Cascade delete behavior is verified against sqlmock so failure paths
// (broken connections, constraint errors mid-transaction) can be
// injected deterministically. Happy-path coverage against a real
// database lives in category_test.go.
package store

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vitrina/internal/apperr"
	"vitrina/internal/models"
)

// sliceConverter lets []int64 parameters (used with ANY($1)) pass
// through to sqlmock, which the default driver converter rejects.
type sliceConverter struct{}

func (sliceConverter) ConvertValue(v any) (driver.Value, error) {
	if _, ok := v.([]int64); ok {
		return v, nil
	}
	return driver.DefaultParameterConverter.ConvertValue(v)
}

func newMockCategoryStore(t *testing.T) (sqlmock.Sqlmock, *CategoryStore) {
	t.Helper()
	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.ValueConverterOption(sliceConverter{}),
	)
	require.NoError(t, err, "create sqlmock")
	t.Cleanup(func() { db.Close() })
	return mock, NewCategoryStore(db, "accessories")
}

func TestCategoryDeleteBlockedByChildrenDoesNotMutate(t *testing.T) {
	mock, s := newMockCategoryStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM categories WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Electronics"))
	mock.ExpectQuery(`SELECT id, name FROM categories WHERE parent_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(2), "Laptops").
			AddRow(int64(3), "Phones"))
	mock.ExpectRollback()

	result, err := s.Delete(1, false)
	require.Error(t, err)
	assert.Nil(t, result)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeHasChildren, appErr.Code)
	assert.Equal(t, 2, appErr.Details["children_count"])
	assert.Equal(t, []string{"Laptops", "Phones"}, appErr.Details["children_names"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryDeleteBlockedByProductsReportsSample(t *testing.T) {
	mock, s := newMockCategoryStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM categories WHERE id = $1`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Cables"))
	mock.ExpectQuery(`SELECT id, name FROM categories WHERE parent_id = \$1`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE category_id = $1`)).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT name FROM products WHERE category_id = \$1 ORDER BY id LIMIT \$2`).
		WithArgs(int64(4), sampleLimit).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("HDMI 2m").AddRow("HDMI 5m").AddRow("USB-C 1m").
			AddRow("USB-C 2m").AddRow("Lightning 1m"))
	mock.ExpectRollback()

	_, err := s.Delete(4, false)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeHasLeafRefs, appErr.Code)
	assert.Equal(t, 7, appErr.Details["references_count"])
	assert.Len(t, appErr.Details["references_sample"], 5)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// treeRows returns a three-level tree: 1 -> 2 -> 3, with 10 as an
// unrelated root holding the "accessories" fallback.
func treeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "parent_id", "sort_order"}).
		AddRow(int64(1), "Electronics", nil, 0).
		AddRow(int64(2), "Laptops", int64(1), 0).
		AddRow(int64(3), "Gaming Laptops", int64(2), 0).
		AddRow(int64(10), "Accessories", nil, 1)
}

func TestCategoryForceDeleteCascadesBottomUp(t *testing.T) {
	mock, s := newMockCategoryStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM categories WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Electronics"))
	mock.ExpectQuery(`SELECT id, name, parent_id, sort_order FROM categories`).
		WillReturnRows(treeRows())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM categories WHERE slug = $1`)).
		WithArgs("accessories").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectExec(`UPDATE products SET category_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	// Deepest level first: 3, then 2, then the root itself.
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = ANY($1)`)).
		WithArgs([]int64{3}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = ANY($1)`)).
		WithArgs([]int64{2}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := s.Delete(1, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, result.DeletedNodes)
	assert.Equal(t, int64(3), result.ReassignedProducts)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryForceDeleteDetachesWhenFallbackInsideSubtree(t *testing.T) {
	mock, s := newMockCategoryStore(t)

	// The fallback lives under the node being deleted, so products must
	// end up uncategorized instead of pointing at a dead category.
	rows := sqlmock.NewRows([]string{"id", "name", "parent_id", "sort_order"}).
		AddRow(int64(1), "Electronics", nil, 0).
		AddRow(int64(10), "Accessories", int64(1), 0)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM categories WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Electronics"))
	mock.ExpectQuery(`SELECT id, name, parent_id, sort_order FROM categories`).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM categories WHERE slug = $1`)).
		WithArgs("accessories").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectExec(`UPDATE products SET category_id = \$1`).
		WithArgs(nil, []int64{1, 10}).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = ANY($1)`)).
		WithArgs([]int64{10}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result, err := s.Delete(1, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 10}, result.DeletedNodes)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryForceDeleteRollsBackOnFailure(t *testing.T) {
	mock, s := newMockCategoryStore(t)

	boom := errors.New("connection reset by peer")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM categories WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Electronics"))
	mock.ExpectQuery(`SELECT id, name, parent_id, sort_order FROM categories`).
		WillReturnRows(treeRows())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id FROM categories WHERE slug = $1`)).
		WithArgs("accessories").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectExec(`UPDATE products SET category_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = ANY($1)`)).
		WithArgs([]int64{3}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// The second level delete dies; everything before it must roll back.
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = ANY($1)`)).
		WithArgs([]int64{2}).
		WillReturnError(boom)
	mock.ExpectRollback()

	result, err := s.Delete(1, true)
	require.Error(t, err)
	assert.Nil(t, result)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeTransaction, appErr.Code)
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryDeleteNotFound(t *testing.T) {
	mock, s := newMockCategoryStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT name FROM categories WHERE id = $1`)).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := s.Delete(42, false)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeNotFound, appErr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryUpdateReparentRunsInOneTransaction(t *testing.T) {
	mock, s := newMockCategoryStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`)).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, parent_id FROM categories`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id"}).
			AddRow(int64(1), nil).
			AddRow(int64(2), int64(1)).
			AddRow(int64(3), int64(2)).
			AddRow(int64(10), nil))
	mock.ExpectExec(`UPDATE categories SET`).
		WithArgs("Gaming Laptops", "gaming-laptops", "", int64(10), 0, true, int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	parentID := int64(10)
	err := s.Update(&models.Category{
		ID:       3,
		Name:     "Gaming Laptops",
		Slug:     "gaming-laptops",
		ParentID: &parentID,
		IsActive: true,
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryUpdateCycleRollsBackBeforeWrite(t *testing.T) {
	mock, s := newMockCategoryStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`)).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, parent_id FROM categories`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id"}).
			AddRow(int64(1), nil).
			AddRow(int64(2), int64(1)).
			AddRow(int64(3), int64(2)))
	mock.ExpectRollback()

	parentID := int64(3)
	err := s.Update(&models.Category{
		ID:       1,
		Name:     "Electronics",
		Slug:     "electronics",
		ParentID: &parentID,
		IsActive: true,
	})

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeCycle, appErr.Code)

	// No UPDATE was issued; the guard fired inside the transaction.
	assert.NoError(t, mock.ExpectationsWereMet())
}

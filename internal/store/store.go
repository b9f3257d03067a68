// Package store provides database access methods for all Vitrina
// entities. Each store struct wraps a *sql.DB and exposes typed query
// methods. Classified business failures (not found, conflicts, blocked
// deletes) are returned as apperr values; infrastructure failures are
// wrapped with context.
package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// sampleLimit caps how many referencing entity names a blocked delete
// reports back to the caller.
const sampleLimit = 5

// DeleteResult describes what a successful node deletion removed.
type DeleteResult struct {
	DeletedNodes       []int64 `json:"deleted_nodes"`
	ReassignedProducts int64   `json:"reassigned_products,omitempty"`
	RemovedLinks       int64   `json:"removed_links,omitempty"`
	RemovedValues      int64   `json:"removed_values,omitempty"`
}

// Postgres error codes the stores classify.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// pgErrCode extracts the SQLSTATE from a pgx error, or "" for other errors.
func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// loadParentMap reads an id -> parent_id mapping for a taxonomy table.
// Reparent checks call it inside the update transaction so the cycle
// guard sees the same tree the write lands on.
func loadParentMap(q rowQuerier, query, label string) (map[int64]*int64, error) {
	rows, err := q.Query(query)
	if err != nil {
		return nil, fmt.Errorf("load %s parents: %w", label, err)
	}
	defer rows.Close()

	parents := make(map[int64]*int64)
	for rows.Next() {
		var id int64
		var parentID *int64
		if err := rows.Scan(&id, &parentID); err != nil {
			return nil, fmt.Errorf("scan %s parent: %w", label, err)
		}
		parents[id] = parentID
	}
	return parents, rows.Err()
}

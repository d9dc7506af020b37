package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store is the persistence collaborator of the importer. It runs every
// statement on the handle it was built with, so a Store built on a *sqlx.Tx
// sees the transaction's own uncommitted rows.
type Store struct {
	db sqlx.ExtContext
}

func NewStore(db sqlx.ExtContext) *Store {
	return &Store{db: db}
}

func (s *Store) insert(ctx context.Context, query string, arg interface{}) (int64, error) {
	result, err := sqlx.NamedExecContext(ctx, s.db, query, arg)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

var countableTables = map[string]bool{
	"projects":                                true,
	"dimensions":                              true,
	"units":                                   true,
	"conserved_entities":                      true,
	"transformable_entities":                  true,
	"goods":                                   true,
	"processes":                               true,
	"transformable_entity_conserved_entities": true,
	"good_transformable_entities":             true,
	"good_goods":                              true,
	"economic_flows":                          true,
	"elementary_flow_compartments":            true,
	"elementary_flows":                        true,
}

// Count returns the number of rows in one of the entity tables.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if !countableTables[table] {
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	if err := sqlx.GetContext(ctx, s.db, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

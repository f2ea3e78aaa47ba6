package storage

import (
	"context"
	"fmt"
	"sync"

	"tabclean/internal/ddl"
	"tabclean/pkg/records"
)

// Dialect renders backend-specific DDL from the generic table model.
type Dialect struct {
	// MapKind picks the SQL type for a column of the given value kind.
	MapKind func(records.Kind) string
	// CreateTable renders an idempotent CREATE TABLE statement.
	CreateTable func(ddl.TableDef) (string, error)
}

var (
	ddlMu    sync.RWMutex
	dialects = map[string]Dialect{}
)

// RegisterDDL registers (or replaces) the dialect for kind. Backends call it
// from init.
func RegisterDDL(kind string, d Dialect) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	dialects[kind] = d
}

// EnsureTable creates table on repo, if missing, with one column per snapshot
// column typed from the snapshot's value kinds.
func EnsureTable(ctx context.Context, kind string, repo Repository, table string, s *records.Snapshot) error {
	ddlMu.RLock()
	d, ok := dialects[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	def, err := ddl.FromSnapshot(table, s, d.MapKind)
	if err != nil {
		return fmt.Errorf("infer table definition: %w", err)
	}
	stmt, err := d.CreateTable(def)
	if err != nil {
		return err
	}
	return repo.Exec(ctx, stmt)
}

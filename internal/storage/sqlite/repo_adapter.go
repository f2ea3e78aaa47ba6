package sqlite

import (
	"context"
	"strings"

	"tabclean/internal/ddl"
	"tabclean/internal/storage"
	"tabclean/pkg/records"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

var style = ddl.Style{
	Quote:       func(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` },
	IfNotExists: true,
}

// MapKind maps value kinds onto SQLite affinities. Booleans are stored as
// 0/1 and dates as ISO-8601 text.
func MapKind(k records.Kind) string {
	switch k {
	case records.KindNumber:
		return "REAL"
	case records.KindBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS with double-quoted
// identifiers.
func CreateTableSQL(t ddl.TableDef) (string, error) { return ddl.BuildCreateTableSQL(t, style) }

// wrappedRepo adds Close on top of *Repository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("sqlite", storage.Dialect{MapKind: MapKind, CreateTable: CreateTableSQL})
}

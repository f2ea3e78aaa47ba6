package postgres

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

// MapKind maps value kinds onto Postgres types.
func MapKind(k records.Kind) string {
	switch k {
	case records.KindNumber:
		return "DOUBLE PRECISION"
	case records.KindBool:
		return "BOOLEAN"
	case records.KindDate:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS with quoted identifiers.
func CreateTableSQL(t ddl.TableDef) (string, error) { return ddl.BuildCreateTableSQL(t, style) }

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
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("postgres", storage.Dialect{MapKind: MapKind, CreateTable: CreateTableSQL})
}

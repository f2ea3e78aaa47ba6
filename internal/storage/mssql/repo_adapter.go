package mssql

import (
	"context"
	"fmt"
	"strings"

	"tabclean/internal/ddl"
	"tabclean/internal/storage"
	"tabclean/pkg/records"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

var style = ddl.Style{Quote: msIdent}

// MapKind maps value kinds onto SQL Server types.
func MapKind(k records.Kind) string {
	switch k {
	case records.KindNumber:
		return "FLOAT"
	case records.KindBool:
		return "BIT"
	case records.KindDate:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// CreateTableSQL guards CREATE TABLE with OBJECT_ID, since SQL Server has no
// CREATE TABLE IF NOT EXISTS.
func CreateTableSQL(t ddl.TableDef) (string, error) {
	create, err := ddl.BuildCreateTableSQL(t, style)
	if err != nil {
		return "", err
	}
	name := strings.ReplaceAll(style.QualifiedName(t.FQN), "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\n%s", name, create), nil
}

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
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
	storage.RegisterDDL("mssql", storage.Dialect{MapKind: MapKind, CreateTable: CreateTableSQL})
}

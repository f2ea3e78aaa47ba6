// Package all wires every built-in storage backend into the storage factory.
// It exists for its side effects:
//
//	import _ "tabclean/internal/storage/all"
//
// makes "sqlite", "postgres", "mssql" and "mysql" available to storage.New and
// storage.EnsureTable. A binary that needs fewer backends can blank-import
// the individual packages instead.
package all

import (
	_ "tabclean/internal/storage/mssql"
	_ "tabclean/internal/storage/mysql"
	_ "tabclean/internal/storage/postgres"
	_ "tabclean/internal/storage/sqlite"
)

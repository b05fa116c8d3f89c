// Package all wires every built-in storage backend into the storage factory.
//
// It exists for side effects: importing it runs the init functions of each
// backend, which register their factories and DDL bootstrappers. After
//
//	import _ "layoffs/internal/storage/all"
//
// the kinds "mssql", "mysql", "postgres" and "sqlite" are available through
// storage.New and storage.EnsureTable. A binary that needs only a subset can
// blank-import the individual backend packages instead.
package all

import (
	_ "layoffs/internal/storage/mssql"
	_ "layoffs/internal/storage/mysql"
	_ "layoffs/internal/storage/postgres"
	_ "layoffs/internal/storage/sqlite"
)

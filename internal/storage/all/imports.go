// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories with the storage package. The following kinds become available:
//
//   - "postgres" (tablemigrate/internal/storage/postgres)
//   - "mssql"    (tablemigrate/internal/storage/mssql)
//   - "sqlite"   (tablemigrate/internal/storage/sqlite)
//   - "mysql"    (tablemigrate/internal/storage/mysql)
//   - "oracle"   (tablemigrate/internal/storage/oracle)
//
// Typical usage (in cmd/tablemigrate or a similar wiring layer):
//
//	import _ "tablemigrate/internal/storage/all"
//
//	src, err := storage.New(ctx, storage.Config{Kind: "mssql", DSN: dsn})
//
// A binary that needs only a subset of backends can import them one by one
// instead of this package.
package all

import (
	_ "tablemigrate/internal/storage/mssql"
	_ "tablemigrate/internal/storage/mysql"
	_ "tablemigrate/internal/storage/oracle"
	_ "tablemigrate/internal/storage/postgres"
	_ "tablemigrate/internal/storage/sqlite"
)

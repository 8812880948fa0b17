// Package database provides SQLite connectivity for Hearth Core.
//
// It opens the state store (WAL mode, busy timeout, single connection),
// answers health checks, and applies the forward-only migrations embedded
// by the migrations package.
//
// Usage:
//
//	db, err := database.Open(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// All queries use parameterised statements. The database file is created
// with 0600 permissions.
package database

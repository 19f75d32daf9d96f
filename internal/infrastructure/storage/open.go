package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect captures the per-driver differences of the item store.
type Dialect struct {
	Driver      string
	Placeholder sq.PlaceholderFormat
	schema      []string
}

var (
	Postgres = Dialect{Driver: "pgx", Placeholder: sq.Dollar, schema: postgresSchema}
	SQLite   = Dialect{Driver: "sqlite", Placeholder: sq.Question, schema: sqliteSchema}
)

// DialectFor resolves a configured driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string, maxOpen int) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	if dialect.Driver == SQLite.Driver {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("open %s: %w", dialect.Driver, err)
	}
	if dialect.Driver == SQLite.Driver {
		// :memory: databases exist per connection.
		db.SetMaxOpenConns(1)
	} else if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("ping %s: %w", dialect.Driver, err)
	}
	return db, dialect, nil
}

// sqliteDSN makes the driver write timestamps in a sortable layout.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_time_format=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_time_format=sqlite"
}

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	for _, stmt := range dialect.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

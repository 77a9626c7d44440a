package utils

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DB wraps the connection pool together with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DialectFor picks the backend from the DSN: postgres URLs go to pgx, anything
// else is treated as a SQLite database file.
func DialectFor(dsn string) Dialect {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return DialectPostgres
	}
	return DialectSQLite
}

func OpenDB(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		dsn = "luggage.db"
	}
	dialect := DialectFor(dsn)

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectPostgres:
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxIdleTime(20 * time.Second)
	default:
		db, err = sql.Open("sqlite", dsn+"?_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)")
		if err != nil {
			return nil, err
		}
		// one writer at a time; readers share the WAL
		db.SetMaxOpenConns(4)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect, err)
	}

	out := &DB{DB: db, Dialect: dialect}
	if err = out.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return out, nil
}

// Rebind rewrites ? placeholders into $n for PostgreSQL.
func (d *DB) Rebind(query string) string {
	return Rebind(d.Dialect, query)
}

func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// EnsureSchema creates the tables on first run. There is no migration history;
// the schema is fixed at creation time.
func (d *DB) EnsureSchema(ctx context.Context) error {
	idCol := "INTEGER PRIMARY KEY AUTOINCREMENT"
	tsCol := "DATETIME DEFAULT CURRENT_TIMESTAMP"
	if d.Dialect == DialectPostgres {
		idCol = "BIGSERIAL PRIMARY KEY"
		tsCol = "TIMESTAMPTZ DEFAULT NOW()"
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id ` + idCol + `,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'passenger' CHECK(role IN ('passenger','admin')),
			created_at ` + tsCol + `
		)`,
		`CREATE TABLE IF NOT EXISTS lost_reports (
			id ` + idCol + `,
			passenger_id BIGINT NOT NULL REFERENCES users(id),
			flight_no TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL,
			last_seen TEXT NOT NULL,
			date_lost TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'Pending',
			remarks TEXT NOT NULL DEFAULT '',
			created_at ` + tsCol + `
		)`,
		`CREATE INDEX IF NOT EXISTS idx_lost_reports_passenger ON lost_reports(passenger_id)`,
		`CREATE INDEX IF NOT EXISTS idx_lost_reports_status ON lost_reports(status)`,
		`CREATE TABLE IF NOT EXISTS found_reports (
			id ` + idCol + `,
			finder_name TEXT NOT NULL,
			contact TEXT NOT NULL,
			description TEXT NOT NULL,
			place_found TEXT NOT NULL,
			date_found TEXT NOT NULL,
			created_at ` + tsCol + `
		)`,
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for _, s := range stmts {
		if _, err := d.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// IsUniqueViolation reports whether err comes from a UNIQUE constraint on
// either backend.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
		return code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")
	}
	return false
}

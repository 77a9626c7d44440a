package utils_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostluggage/utils"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		dsn  string
		want utils.Dialect
	}{
		{"postgres://u:p@localhost/luggage", utils.DialectPostgres},
		{"postgresql://localhost/luggage", utils.DialectPostgres},
		{"luggage.db", utils.DialectSQLite},
		{"/var/lib/luggage/data.db", utils.DialectSQLite},
	}
	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			assert.Equal(t, tt.want, utils.DialectFor(tt.dsn))
		})
	}
}

func TestRebind(t *testing.T) {
	q := "UPDATE lost_reports SET status = ?, remarks = ? WHERE id = ?"
	assert.Equal(t, q, utils.Rebind(utils.DialectSQLite, q))
	assert.Equal(t,
		"UPDATE lost_reports SET status = $1, remarks = $2 WHERE id = $3",
		utils.Rebind(utils.DialectPostgres, q))
}

func TestOpenDB_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := utils.OpenDB(ctx, filepath.Join(t.TempDir(), "luggage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	assert.Equal(t, utils.DialectSQLite, db.Dialect)

	// schema creation is idempotent
	require.NoError(t, db.EnsureSchema(ctx))

	insert := `INSERT INTO users (name, email, password_hash, role) VALUES (?, ?, ?, ?)`
	_, err = db.ExecContext(ctx, insert, "A", "a@example.com", "x", "passenger")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "B", "a@example.com", "y", "passenger")
	require.Error(t, err)
	assert.True(t, utils.IsUniqueViolation(err))

	_, err = db.ExecContext(ctx, insert, "C", "c@example.com", "z", "superuser")
	require.Error(t, err)
	assert.False(t, utils.IsUniqueViolation(err))

	assert.False(t, utils.IsUniqueViolation(nil))
}

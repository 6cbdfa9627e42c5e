package postgresql

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsHaveUpAndDown(t *testing.T) {
	files, err := fs.Glob(migrationsFS, migrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		raw, err := fs.ReadFile(migrationsFS, name)
		require.NoError(t, err)
		body := string(raw)
		assert.Contains(t, body, "-- +goose Up", name)
		assert.Contains(t, body, "-- +goose Down", name)
	}
}

func TestInitialSchemaCoversAllTables(t *testing.T) {
	raw, err := fs.ReadFile(migrationsFS, migrationsDir+"/00001_init_schema.sql")
	require.NoError(t, err)

	for _, table := range []string{
		"users", "system_settings", "clients", "client_contacts", "products",
		"order_services", "order_equipments", "order_parts", "order_history",
		"order_photos", "stock_movements", "bank_accounts", "transactions", "audit_logs",
	} {
		assert.True(t, strings.Contains(string(raw), "CREATE TABLE "+table+" ("), table)
	}
}

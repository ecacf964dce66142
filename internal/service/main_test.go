package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"expense-ledger/internal/repository"
	"expense-ledger/internal/repository/sqlite"
)

// testRepos opens an in-memory database with the full schema applied and
// returns live repositories backed by it.
func testRepos(t *testing.T) (repository.UserRepository, repository.ExpenseRepository) {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, sqlite.ApplyMigrations(db))
	t.Cleanup(func() { db.Close() })

	return sqlite.NewUserRepository(db), sqlite.NewExpenseRepository(db)
}

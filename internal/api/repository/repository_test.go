package repository

import (
	"context"
	"testing"

	"kevdhev/personal-finance-api/internal/api/models"
	"kevdhev/personal-finance-api/internal/db"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	pool, err := db.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.InitSchema(pool))

	t.Cleanup(func() { pool.Close() })
	return pool
}

func createTestUser(t *testing.T, repo UserRepository, username string) *models.User {
	t.Helper()

	user, err := repo.Create(context.Background(), username, username+"@example.com", "hash")
	require.NoError(t, err)
	return user
}

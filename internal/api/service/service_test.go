package service

import (
	"testing"

	"kevdhev/personal-finance-api/internal/api/repository"
	"kevdhev/personal-finance-api/internal/db"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newTestRepos(t *testing.T) (repository.UserRepository, repository.MovementRepository) {
	t.Helper()

	pool, err := db.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.InitSchema(pool))
	t.Cleanup(func() { pool.Close() })

	return repository.NewUserRepository(pool), repository.NewMovementRepository(pool)
}

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *Repository {
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%d user=testuser password=testpass dbname=testdb sslmode=disable",
		host, port.Int())
	repo, err := NewRepository(DriverPostgres, dsn)
	require.NoError(t, err)
	require.NoError(t, repo.RunMigrations("./migrations"))

	t.Cleanup(func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})
	return repo
}

func TestPostgres_ProductLifecycle(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	p := newProduct("Kettle", "35.10")
	require.NoError(t, repo.CreateProduct(ctx, p))

	got, err := repo.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "35.10", got.Price.StringFixed(2))
	assert.True(t, got.ImageConsistent())

	require.NoError(t, repo.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, repo.DeleteProduct(ctx, p.ID), domain.ErrNotFound)
}

func TestPostgres_DuplicateUser(t *testing.T) {
	repo := setupPostgres(t)
	ctx := context.Background()

	first := &domain.User{Email: "a@shop.test", Name: "A", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(ctx, first))
	assert.Equal(t, domain.RoleAdmin, first.Role)

	err := repo.CreateUser(ctx, &domain.User{Email: "a@shop.test", Name: "B", PasswordHash: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestPostgres_ConcurrentFirstSignups(t *testing.T) {
	repo := setupPostgres(t)
	assertSingleAdmin(t, repo)
}

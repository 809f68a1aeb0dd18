package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Repository {
	// Use in-memory database for tests
	repo, err := NewRepository(DriverSQLite, ":memory:")
	require.NoError(t, err)

	require.NoError(t, repo.RunMigrations("./migrations"))
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newProduct(title, price string) *domain.Product {
	p := &domain.Product{
		Title:       title,
		Description: title + " description",
		Price:       decimal.RequireFromString(price),
		Cost:        decimal.RequireFromString("1.25"),
	}
	p.SetImage(domain.Image{Filename: "a.png", MimeType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}})
	return p
}

func TestNewRepository_UnknownDriver(t *testing.T) {
	_, err := NewRepository("oracle", "dsn")
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	repo := setupTestDB(t)
	assert.NoError(t, repo.RunMigrations("./migrations"))
}

func TestCreateProduct_AndGet(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	p := newProduct("Lamp", "19.99")
	require.NoError(t, repo.CreateProduct(ctx, p))
	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := repo.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Title)
	assert.Equal(t, "19.99", got.Price.StringFixed(2))
	assert.Equal(t, "1.25", got.Cost.StringFixed(2))
	assert.Equal(t, p.ImageData, got.ImageData)
	assert.Equal(t, "image/png", got.ImageMimeType)
	assert.True(t, got.ImageConsistent())
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	p, err := repo.GetProduct(context.Background(), 404)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetProduct_CancelledContext(t *testing.T) {
	repo := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.GetProduct(ctx, 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestListProducts_OmitsImagePayload(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateProduct(ctx, newProduct("A", "1.00")))
	require.NoError(t, repo.CreateProduct(ctx, newProduct("B", "2.00")))

	products, err := repo.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].Title)
	assert.Equal(t, "B", products[1].Title)
	assert.Nil(t, products[0].ImageData)
	assert.Equal(t, "a.png", products[0].ImageFilename)
}

func TestListProducts_Empty(t *testing.T) {
	repo := setupTestDB(t)

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGetProductsByIDs(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	a := newProduct("A", "1.00")
	b := newProduct("B", "2.00")
	require.NoError(t, repo.CreateProduct(ctx, a))
	require.NoError(t, repo.CreateProduct(ctx, b))

	products, err := repo.GetProductsByIDs(ctx, []int64{b.ID, 999, a.ID})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, a.ID, products[0].ID)
	assert.Equal(t, b.ID, products[1].ID)

	none, err := repo.GetProductsByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateProduct(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	p := newProduct("Lamp", "19.99")
	require.NoError(t, repo.CreateProduct(ctx, p))

	p.Title = "Desk lamp"
	p.Price = decimal.RequireFromString("24.50")
	require.NoError(t, repo.UpdateProduct(ctx, p))

	got, err := repo.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Desk lamp", got.Title)
	assert.Equal(t, "24.50", got.Price.StringFixed(2))
	assert.WithinDuration(t, time.Now(), got.UpdatedAt, time.Minute)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	repo := setupTestDB(t)
	p := newProduct("Ghost", "1.00")
	p.ID = 77

	assert.ErrorIs(t, repo.UpdateProduct(context.Background(), p), domain.ErrNotFound)
}

func TestDeleteProduct(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	p := newProduct("Lamp", "19.99")
	require.NoError(t, repo.CreateProduct(ctx, p))

	require.NoError(t, repo.DeleteProduct(ctx, p.ID))

	_, err := repo.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteProduct(ctx, p.ID), domain.ErrNotFound)
}

func TestCreateUser_FirstIsAdmin(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	first := &domain.User{Email: "boss@shop.test", Name: "Boss", PasswordHash: "x"}
	second := &domain.User{Email: "ann@shop.test", Name: "Ann", PasswordHash: "y"}
	require.NoError(t, repo.CreateUser(ctx, first))
	require.NoError(t, repo.CreateUser(ctx, second))

	assert.Equal(t, domain.RoleAdmin, first.Role)
	assert.Equal(t, domain.RoleCustomer, second.Role)

	got, err := repo.GetUserByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
}

func TestCreateUser_SecondAdminRowRejected(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateUser(ctx, &domain.User{Email: "boss@shop.test", Name: "Boss", PasswordHash: "x"}))

	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO users (email, name, password_hash, role) VALUES ('x@shop.test', 'X', 'x', 'admin')`)
	require.Error(t, err)
	assert.True(t, isAdminViolation(err))
	assert.True(t, isUniqueViolation(err))
}

func TestCreateUser_FallsBackToCustomer(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.CreateUser(ctx, &domain.User{Email: "boss@shop.test", Name: "Boss", PasswordHash: "x"}))

	u := &domain.User{Email: "late@shop.test", Name: "Late", PasswordHash: "x"}
	require.NoError(t, repo.insertUser(ctx, u, insertCustomer))
	assert.Equal(t, domain.RoleCustomer, u.Role)

	err := repo.insertUser(ctx, &domain.User{Email: "dup@shop.test", Name: "Dup", PasswordHash: "x"},
		`INSERT INTO users (email, name, password_hash, role, created_at) VALUES ($1, $2, $3, 'admin', $4) RETURNING id, role`)
	assert.ErrorIs(t, err, errAdminTaken)
}

func TestCreateUser_ConcurrentSignupsOneAdmin(t *testing.T) {
	repo := setupTestDB(t)
	assertSingleAdmin(t, repo)
}

// assertSingleAdmin signs up several users at once on an empty table.
func assertSingleAdmin(t *testing.T, repo *Repository) {
	t.Helper()
	ctx := context.Background()

	const signups = 8
	users := make([]*domain.User, signups)
	errs := make([]error, signups)
	var wg sync.WaitGroup
	for i := 0; i < signups; i++ {
		users[i] = &domain.User{
			Email:        fmt.Sprintf("u%d@shop.test", i),
			Name:         fmt.Sprintf("User %d", i),
			PasswordHash: "x",
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateUser(ctx, users[i])
		}(i)
	}
	wg.Wait()

	admins := 0
	for i := range users {
		require.NoError(t, errs[i])
		if users[i].Role == domain.RoleAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)

	var stored int
	require.NoError(t, repo.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = 'admin'`).Scan(&stored))
	assert.Equal(t, 1, stored)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, &domain.User{Email: "a@shop.test", Name: "A", PasswordHash: "x"}))
	err := repo.CreateUser(ctx, &domain.User{Email: "a@shop.test", Name: "B", PasswordHash: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestCreateUser_DuplicateName(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateUser(ctx, &domain.User{Email: "a@shop.test", Name: "Same", PasswordHash: "x"}))
	err := repo.CreateUser(ctx, &domain.User{Email: "b@shop.test", Name: "Same", PasswordHash: "x"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUser)
}

func TestGetUserByEmail(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	u := &domain.User{Email: "a@shop.test", Name: "A", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, u))

	got, err := repo.GetUserByEmail(ctx, "a@shop.test")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = repo.GetUserByEmail(ctx, "missing@shop.test")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

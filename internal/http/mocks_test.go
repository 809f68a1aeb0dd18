package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const defaultTestTimeout = 5 * time.Second

type CatalogMock struct {
	products map[int64]*domain.Product
	lastIn   *domain.ProductInput
	err      error
}

func (c *CatalogMock) List(context.Context) ([]*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([]*domain.Product, 0, len(c.products))
	for id := int64(1); id <= int64(len(c.products)); id++ {
		if p, ok := c.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *CatalogMock) Get(_ context.Context, id int64) (*domain.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (c *CatalogMock) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	c.lastIn = &in
	if c.err != nil {
		return nil, c.err
	}
	valid, err := in.Validate(true)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{ID: int64(len(c.products) + 1)}
	valid.Apply(p)
	return p, nil
}

func (c *CatalogMock) Update(_ context.Context, id int64, in domain.ProductInput) (*domain.Product, error) {
	c.lastIn = &in
	if c.err != nil {
		return nil, c.err
	}
	p, ok := c.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	valid, err := in.Validate(false)
	if err != nil {
		return nil, err
	}
	valid.Apply(p)
	return p, nil
}

func (c *CatalogMock) Delete(_ context.Context, id int64) error {
	if c.err != nil {
		return c.err
	}
	if _, ok := c.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(c.products, id)
	return nil
}

type CartMock struct {
	view    domain.CartView
	items   int
	lastSID string
	err     error
}

func (c *CartMock) View(_ context.Context, sid string) (domain.CartView, error) {
	c.lastSID = sid
	return c.view, c.err
}

func (c *CartMock) Add(_ context.Context, sid string, _ int64) (int, error) {
	c.lastSID = sid
	return c.items, c.err
}

func (c *CartMock) Remove(_ context.Context, sid string, _ int64) (int, error) {
	c.lastSID = sid
	return c.items, c.err
}

type CheckoutMock struct {
	url     string
	view    domain.CartView
	lastSID string
	err     error
}

func (c *CheckoutMock) Initiate(_ context.Context, sid string) (string, error) {
	c.lastSID = sid
	return c.url, c.err
}

func (c *CheckoutMock) Complete(_ context.Context, sid string) (domain.CartView, error) {
	c.lastSID = sid
	return c.view, c.err
}

type UserMock struct {
	user *domain.User
	err  error
}

func (u *UserMock) Signup(context.Context, domain.SignupInput) (*domain.User, error) {
	return u.user, u.err
}

func (u *UserMock) Login(context.Context, string, string) (*domain.User, error) {
	return u.user, u.err
}

type testServer struct {
	handler  http.Handler
	sessions *session.Manager
	catalog  *CatalogMock
	carts    *CartMock
	checkout *CheckoutMock
	users    *UserMock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger, _ := test.NewNullLogger()
	ts := &testServer{
		sessions: session.NewManager([]byte("test-secret"), false),
		catalog:  &CatalogMock{products: map[int64]*domain.Product{}},
		carts:    &CartMock{},
		checkout: &CheckoutMock{},
		users:    &UserMock{},
	}
	ts.handler = NewRouter(RouterConfig{
		Logger:         logger,
		Sessions:       ts.sessions,
		Gate:           auth.NewGate(),
		Catalog:        ts.catalog,
		Carts:          ts.carts,
		Checkout:       ts.checkout,
		Users:          ts.users,
		RequestTimeout: defaultTestTimeout,
		MaxUploadBytes: 1 << 20,
	})
	return ts
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

// cookieFor signs st into a session cookie.
func (ts *testServer) cookieFor(t *testing.T, st *session.State) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, ts.sessions.Save(rec, httptest.NewRequest(http.MethodGet, "/", nil), st))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[len(cookies)-1]
}

func (ts *testServer) adminCookie(t *testing.T) *http.Cookie {
	st := &session.State{ID: "admin-sid"}
	st.Login(&domain.User{ID: 1, Role: domain.RoleAdmin})
	return ts.cookieFor(t, st)
}

// lastSession decodes the final session cookie a response set.
func (ts *testServer) lastSession(t *testing.T, rec *httptest.ResponseRecorder) (*session.State, *http.Cookie) {
	t.Helper()
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	c := cookies[len(cookies)-1]
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	return ts.sessions.Load(req), c
}

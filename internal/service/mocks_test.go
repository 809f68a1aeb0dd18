package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

// mockProductRepo implements repository.ProductRepository for testing
type mockProductRepo struct {
	m        sync.Mutex
	products map[int64]*domain.Product
	nextID   int64
	err      error
	calls    atomic.Int32
	// gate blocks ListProducts until closed when set
	gate chan struct{}
}

func newMockProductRepo(products ...*domain.Product) *mockProductRepo {
	repo := &mockProductRepo{products: map[int64]*domain.Product{}}
	for _, p := range products {
		repo.products[p.ID] = p
		if p.ID > repo.nextID {
			repo.nextID = p.ID
		}
	}
	return repo
}

func (m *mockProductRepo) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.calls.Add(1)
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepo) GetProductsByIDs(_ context.Context, ids []int64) ([]*domain.Product, error) {
	m.calls.Add(1)
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*domain.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockProductRepo) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	m.calls.Add(1)
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockProductRepo) CreateProduct(_ context.Context, p *domain.Product) error {
	m.calls.Add(1)
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	p.ID = m.nextID
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) UpdateProduct(_ context.Context, p *domain.Product) error {
	m.calls.Add(1)
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	m.products[p.ID] = p
	return nil
}

func (m *mockProductRepo) DeleteProduct(_ context.Context, id int64) error {
	m.calls.Add(1)
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

// mockUserRepo implements repository.UserRepository for testing
type mockUserRepo struct {
	users     []*domain.User
	getErr    error
	createErr error
	created   int
}

func (m *mockUserRepo) CreateUser(_ context.Context, u *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created++
	u.ID = int64(len(m.users) + 1)
	u.Role = domain.RoleCustomer
	if len(m.users) == 0 {
		u.Role = domain.RoleAdmin
	}
	m.users = append(m.users, u)
	return nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

// mockCartStore implements session.CartStore for testing
type mockCartStore struct {
	carts     map[string]domain.Cart
	permanent map[string]bool
	err       error
	deleteErr error
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{carts: map[string]domain.Cart{}, permanent: map[string]bool{}}
}

func (m *mockCartStore) Get(_ context.Context, sid string) (domain.Cart, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append(domain.Cart{}, m.carts[sid]...), nil
}

func (m *mockCartStore) Set(_ context.Context, sid string, c domain.Cart, permanent bool) error {
	if m.err != nil {
		return m.err
	}
	m.carts[sid] = c
	m.permanent[sid] = permanent
	return nil
}

func (m *mockCartStore) Delete(_ context.Context, sid string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.carts, sid)
	return nil
}

type mockProvider struct {
	url string
	err error
	req *checkout.Request
}

func (m *mockProvider) CreateSession(_ context.Context, req *checkout.Request) (string, error) {
	m.req = req
	return m.url, m.err
}

type publishedEvent struct {
	eventType string
	key       string
	payload   any
}

type mockPublisher struct {
	events []publishedEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, publishedEvent{eventType, key, payload})
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type mockObserver struct {
	results []string
}

func (m *mockObserver) ObserveCheckout(result string) {
	m.results = append(m.results, result)
}

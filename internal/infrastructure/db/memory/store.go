// Package memory implements the catalog repositories over process memory.
// It backs STORE_DRIVER=memory for local runs and the router tests; a single
// mutex serializes every operation, which gives stock updates the same
// all-or-nothing behaviour as the database stores.
package memory

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
)

// Store holds users, categories and sweets.
type Store struct {
	mu         sync.Mutex
	seq        int
	users      map[string]*domain.User
	categories map[string]*domain.Category
	sweets     map[string]*domain.Sweet
}

func New() *Store {
	return &Store{
		users:      make(map[string]*domain.User),
		categories: make(map[string]*domain.Category),
		sweets:     make(map[string]*domain.Sweet),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Categories returns the category repository view of the store.
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s: s} }

// Sweets returns the sweet repository view of the store.
func (s *Store) Sweets() *SweetRepository { return &SweetRepository{s: s} }

// Ping satisfies the readiness check contract.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) nextID(prefix string) string {
	s.seq++
	return prefix + "_" + strconv.Itoa(s.seq)
}

// UserRepository implements ports.UserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	clone := *user
	clone.ID = r.s.nextID("usr")
	r.s.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// CategoryRepository implements ports.CategoryRepository.
type CategoryRepository struct{ s *Store }

func (r *CategoryRepository) Create(_ context.Context, c *domain.Category) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := domain.CategoryKey(c.Name)
	for _, existing := range r.s.categories {
		if domain.CategoryKey(existing.Name) == key {
			return nil, domain.ErrCategoryExists
		}
	}
	clone := *c
	clone.ID = r.s.nextID("cat")
	r.s.categories[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *CategoryRepository) FindByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	out := *c
	return &out, nil
}

func (r *CategoryRepository) List(_ context.Context) ([]*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SweetRepository implements ports.SweetRepository.
type SweetRepository struct{ s *Store }

func (r *SweetRepository) Create(_ context.Context, sw *domain.Sweet) (*domain.Sweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	clone := *sw
	clone.ID = r.s.nextID("swt")
	r.s.sweets[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *SweetRepository) FindByID(_ context.Context, id string) (*domain.Sweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sw, ok := r.s.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	out := *sw
	return &out, nil
}

func (r *SweetRepository) List(ctx context.Context) ([]*domain.Sweet, error) {
	return r.Search(ctx, domain.SearchFilter{})
}

func (r *SweetRepository) Search(_ context.Context, filter domain.SearchFilter) ([]*domain.Sweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*domain.Sweet, 0, len(r.s.sweets))
	for _, sw := range r.s.sweets {
		if !filter.Matches(sw) {
			continue
		}
		clone := *sw
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *SweetRepository) Update(_ context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sw, ok := r.s.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	updated := patch.Apply(*sw)
	updated.UpdatedAt = time.Now().UTC()
	r.s.sweets[id] = &updated
	out := updated
	return &out, nil
}

func (r *SweetRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.sweets[id]; !ok {
		return domain.ErrSweetNotFound
	}
	delete(r.s.sweets, id)
	return nil
}

func (r *SweetRepository) DecrementStock(_ context.Context, id string, quantity int) (*domain.Sweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sw, ok := r.s.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	if sw.Stock < quantity {
		return nil, domain.ErrInsufficientStock
	}
	sw.Stock -= quantity
	sw.UpdatedAt = time.Now().UTC()
	out := *sw
	return &out, nil
}

func (r *SweetRepository) IncrementStock(_ context.Context, id string, quantity int) (*domain.Sweet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	sw, ok := r.s.sweets[id]
	if !ok {
		return nil, domain.ErrSweetNotFound
	}
	sw.Stock += quantity
	sw.UpdatedAt = time.Now().UTC()
	out := *sw
	return &out, nil
}

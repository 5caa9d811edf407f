package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sweetshop/sweet-inventory/internal/core/domain"
	"github.com/sweetshop/sweet-inventory/internal/core/ports"
	"github.com/sweetshop/sweet-inventory/internal/infrastructure/db/memory"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

var (
	adminA = &domain.User{ID: "admin-a", Role: domain.RoleAdmin}
	adminB = &domain.User{ID: "admin-b", Role: domain.RoleAdmin}
	buyer  = &domain.User{ID: "buyer", Role: domain.RoleUser}
)

type fixture struct {
	store    *memory.Store
	svc      *SweetService
	category *domain.Category
}

func newFixture(t *testing.T, replay ports.PurchaseReplayStore) *fixture {
	t.Helper()
	store := memory.New()
	cat, err := store.Categories().Create(context.Background(), &domain.Category{Name: "Candy"})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return &fixture{
		store:    store,
		svc:      NewSweetService(store.Sweets(), store.Categories(), replay, discardLogger),
		category: cat,
	}
}

func (f *fixture) seedSweet(t *testing.T, owner *domain.User, name string, price string, stock int) *domain.Sweet {
	t.Helper()
	sweet, err := f.svc.Create(context.Background(), owner, ports.CreateSweetInput{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: f.category.ID,
	})
	if err != nil {
		t.Fatalf("seed sweet %s: %v", name, err)
	}
	return sweet
}

func (f *fixture) stockOf(t *testing.T, id string) int {
	t.Helper()
	sweet, err := f.store.Sweets().FindByID(context.Background(), id)
	if err != nil {
		t.Fatalf("find sweet: %v", err)
	}
	return sweet.Stock
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestSweetService_Create_Success(t *testing.T) {
	f := newFixture(t, nil)

	sweet := f.seedSweet(t, adminA, "  Gum ", "1.25", 10)
	if sweet.ID == "" {
		t.Fatal("expected an ID")
	}
	if sweet.Name != "Gum" {
		t.Errorf("expected trimmed name, got %q", sweet.Name)
	}
	if sweet.OwnerID != adminA.ID {
		t.Errorf("expected owner %s, got %s", adminA.ID, sweet.OwnerID)
	}
	if sweet.Stock != 10 || !sweet.Price.Equal(decimal.RequireFromString("1.25")) {
		t.Errorf("unexpected stock/price: %d %s", sweet.Stock, sweet.Price)
	}
}

func TestSweetService_Create_RequiresAdmin(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Create(context.Background(), buyer, ports.CreateSweetInput{
		Name: "Gum", Price: decimal.NewFromInt(1), Stock: 1, CategoryID: f.category.ID,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestSweetService_Create_Validation(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Create(context.Background(), adminA, ports.CreateSweetInput{
		Name: "", Price: decimal.NewFromInt(-1), Stock: -3,
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"name", "price", "stock", "categoryId"} {
		if len(verr.Fields[field]) == 0 {
			t.Errorf("expected message for %q, got %+v", field, verr.Fields)
		}
	}
}

func TestSweetService_Create_UnknownCategory(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Create(context.Background(), adminA, ports.CreateSweetInput{
		Name: "Gum", Price: decimal.NewFromInt(1), Stock: 1, CategoryID: "missing",
	})
	if !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Update / Delete
// ---------------------------------------------------------------------------

func TestSweetService_Update_PartialFields(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)

	updated, err := f.svc.Update(context.Background(), adminA, sweet.ID, domain.SweetPatch{Price: decPtr("2.50")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Price.Equal(decimal.RequireFromString("2.50")) {
		t.Errorf("expected price 2.50, got %s", updated.Price)
	}
	if updated.Name != "Gum" || updated.Stock != 10 || updated.OwnerID != adminA.ID {
		t.Errorf("untouched fields changed: %+v", updated)
	}
}

func TestSweetService_Update_EmptyPatch(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)

	_, err := f.svc.Update(context.Background(), adminA, sweet.ID, domain.SweetPatch{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSweetService_Update_InvalidFields(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)

	_, err := f.svc.Update(context.Background(), adminA, sweet.ID, domain.SweetPatch{
		Name: strPtr("   "), Price: decPtr("-0.01"), Stock: intPtr(-1),
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Fields["name"]) == 0 || len(verr.Fields["price"]) == 0 || len(verr.Fields["stock"]) == 0 {
		t.Errorf("expected name, price and stock messages, got %+v", verr.Fields)
	}

	_, err = f.svc.Update(context.Background(), adminA, sweet.ID, domain.SweetPatch{CategoryID: strPtr("missing")})
	if !errors.Is(err, domain.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestSweetService_NonOwnerAlwaysForbidden(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)
	ctx := context.Background()

	patches := []domain.SweetPatch{
		{},
		{Name: strPtr("Stolen")},
		{Stock: intPtr(-5)},
	}
	for i, p := range patches {
		if _, err := f.svc.Update(ctx, adminB, sweet.ID, p); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("update patch %d: expected ErrForbidden, got %v", i, err)
		}
	}
	for _, q := range []int{-1, 0, 5} {
		if _, err := f.svc.Restock(ctx, adminB, sweet.ID, q); !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("restock %d: expected ErrForbidden, got %v", q, err)
		}
	}
	if err := f.svc.Delete(ctx, adminB, sweet.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("delete: expected ErrForbidden, got %v", err)
	}

	if got := f.stockOf(t, sweet.ID); got != 10 {
		t.Errorf("forbidden calls must not touch stock, got %d", got)
	}
}

func TestSweetService_NotFoundBeforeForbidden(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.svc.Update(ctx, adminB, "missing", domain.SweetPatch{}); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Errorf("update: expected ErrSweetNotFound, got %v", err)
	}
	if err := f.svc.Delete(ctx, adminB, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
	if _, err := f.svc.Restock(ctx, adminB, "missing", 0); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("restock: expected ErrNotFound, got %v", err)
	}
}

func TestSweetService_Delete(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)

	if err := f.svc.Delete(context.Background(), adminA, sweet.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), sweet.ID); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected deleted sweet to be gone, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Purchase / Restock
// ---------------------------------------------------------------------------

func TestSweetService_Purchase_DecrementsExactly(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)

	out, err := f.svc.Purchase(context.Background(), buyer, ports.PurchaseInput{SweetID: sweet.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	updated := out.Sweet
	if out.Replayed {
		t.Fatal("first purchase must not be reported as a replay")
	}
	if updated.Stock != 7 {
		t.Fatalf("expected stock 7, got %d", updated.Stock)
	}
	if updated.Name != sweet.Name || !updated.Price.Equal(sweet.Price) || updated.OwnerID != sweet.OwnerID {
		t.Fatalf("purchase changed more than stock: %+v", updated)
	}
}

func TestSweetService_Purchase_InsufficientStock(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 2)

	_, err := f.svc.Purchase(context.Background(), buyer, ports.PurchaseInput{SweetID: sweet.ID, Quantity: 3})
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if got := f.stockOf(t, sweet.ID); got != 2 {
		t.Fatalf("stock must stay 2, got %d", got)
	}
}

func TestSweetService_Purchase_InvalidQuantity(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 2)

	for _, q := range []int{0, -4} {
		_, err := f.svc.Purchase(context.Background(), buyer, ports.PurchaseInput{SweetID: sweet.ID, Quantity: q})
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || len(verr.Fields["quantity"]) == 0 {
			t.Errorf("quantity %d: expected quantity validation error, got %v", q, err)
		}
	}
}

func TestSweetService_Purchase_NotFound(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Purchase(context.Background(), buyer, ports.PurchaseInput{SweetID: "missing", Quantity: 1})
	if !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
}

func TestSweetService_Purchase_ConcurrentNeverOversells(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 20)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Purchase(context.Background(), buyer, ports.PurchaseInput{SweetID: sweet.ID, Quantity: 1})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 20 {
		t.Errorf("expected 20 successful purchases, got %d", succeeded)
	}
	if got := f.stockOf(t, sweet.ID); got != 0 {
		t.Errorf("expected stock 0, got %d", got)
	}
}

func TestSweetService_Restock(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 4)

	updated, err := f.svc.Restock(context.Background(), adminA, sweet.ID, 5)
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if updated.Stock != 9 {
		t.Fatalf("expected stock 9, got %d", updated.Stock)
	}

	if _, err := f.svc.Restock(context.Background(), adminA, sweet.ID, 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
}

func TestSweetService_StockNeverNegative(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 5)
	rng := rand.New(rand.NewSource(7))
	ctx := context.Background()

	expected := 5
	for i := 0; i < 500; i++ {
		q := rng.Intn(6) + 1
		if rng.Intn(3) == 0 {
			if _, err := f.svc.Restock(ctx, adminA, sweet.ID, q); err != nil {
				t.Fatalf("restock: %v", err)
			}
			expected += q
			continue
		}
		_, err := f.svc.Purchase(ctx, buyer, ports.PurchaseInput{SweetID: sweet.ID, Quantity: q})
		switch {
		case err == nil:
			expected -= q
		case errors.Is(err, domain.ErrInsufficientStock):
			if q <= expected {
				t.Fatalf("purchase of %d refused with stock %d", q, expected)
			}
		default:
			t.Fatalf("purchase: %v", err)
		}

		if got := f.stockOf(t, sweet.ID); got != expected || got < 0 {
			t.Fatalf("step %d: expected stock %d, got %d", i, expected, got)
		}
	}
}

// ---------------------------------------------------------------------------
// Idempotent purchases
// ---------------------------------------------------------------------------

// stubReplayStore mimics the Redis SETNX/GET/SET/DEL semantics under a lock.
type stubReplayStore struct {
	mu       sync.Mutex
	entries  map[string]domain.PurchaseRecord
	claimErr error
	released []string
}

func newStubReplayStore() *stubReplayStore {
	return &stubReplayStore{entries: make(map[string]domain.PurchaseRecord)}
}

func (s *stubReplayStore) Claim(_ context.Context, key string, quantity int) (*domain.PurchaseRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimErr != nil {
		return nil, false, s.claimErr
	}
	if rec, ok := s.entries[key]; ok {
		return &rec, false, nil
	}
	s.entries[key] = domain.PurchaseRecord{Quantity: quantity}
	return nil, true, nil
}

func (s *stubReplayStore) Complete(_ context.Context, key string, record domain.PurchaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = record
	return nil
}

func (s *stubReplayStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	s.released = append(s.released, key)
	return nil
}

// slowSweets delays every decrement so concurrent purchases overlap.
type slowSweets struct {
	ports.SweetRepository
	delay time.Duration
}

func (r slowSweets) DecrementStock(ctx context.Context, id string, quantity int) (*domain.Sweet, error) {
	time.Sleep(r.delay)
	return r.SweetRepository.DecrementStock(ctx, id, quantity)
}

func TestSweetService_Purchase_IdempotencyReplay(t *testing.T) {
	f := newFixture(t, newStubReplayStore())
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)

	in := ports.PurchaseInput{SweetID: sweet.ID, Quantity: 4, IdempotencyKey: "key-1"}
	first, err := f.svc.Purchase(context.Background(), buyer, in)
	if err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	second, err := f.svc.Purchase(context.Background(), buyer, in)
	if err != nil {
		t.Fatalf("replayed purchase: %v", err)
	}

	if first.Replayed || !second.Replayed {
		t.Errorf("expected only the second purchase to be a replay: %v %v", first.Replayed, second.Replayed)
	}
	if second.Sweet.Stock != first.Sweet.Stock {
		t.Errorf("replay must return the recorded result: %d vs %d", second.Sweet.Stock, first.Sweet.Stock)
	}
	if got := f.stockOf(t, sweet.ID); got != 6 {
		t.Errorf("replay must not decrement again, stock %d", got)
	}
}

func TestSweetService_Purchase_ConcurrentRetriesDecrementOnce(t *testing.T) {
	store := memory.New()
	cat, err := store.Categories().Create(context.Background(), &domain.Category{Name: "Candy"})
	if err != nil {
		t.Fatalf("seed category: %v", err)
	}
	sweets := slowSweets{SweetRepository: store.Sweets(), delay: 5 * time.Millisecond}
	svc := NewSweetService(sweets, store.Categories(), newStubReplayStore(), discardLogger)

	sweet, err := svc.Create(context.Background(), adminA, ports.CreateSweetInput{
		Name: "Gum", Price: decimal.NewFromInt(1), Stock: 100, CategoryID: cat.ID,
	})
	if err != nil {
		t.Fatalf("seed sweet: %v", err)
	}

	var wg sync.WaitGroup
	in := ports.PurchaseInput{SweetID: sweet.ID, Quantity: 1, IdempotencyKey: "retry-1"}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Purchase(context.Background(), buyer, in)
			if err != nil && !errors.Is(err, domain.ErrPurchaseInProgress) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := store.Sweets().FindByID(context.Background(), sweet.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Stock != 99 {
		t.Fatalf("expected a single decrement to 99, got %d", got.Stock)
	}
}

func TestSweetService_Purchase_KeyReusedWithOtherQuantity(t *testing.T) {
	f := newFixture(t, newStubReplayStore())
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)

	in := ports.PurchaseInput{SweetID: sweet.ID, Quantity: 2, IdempotencyKey: "key-1"}
	if _, err := f.svc.Purchase(context.Background(), buyer, in); err != nil {
		t.Fatalf("first purchase: %v", err)
	}

	in.Quantity = 3
	if _, err := f.svc.Purchase(context.Background(), buyer, in); !errors.Is(err, domain.ErrIdempotencyKeyReused) {
		t.Fatalf("expected ErrIdempotencyKeyReused, got %v", err)
	}
	if !errors.Is(domain.ErrIdempotencyKeyReused, domain.ErrConflict) {
		t.Fatal("key reuse should be a conflict")
	}
	if got := f.stockOf(t, sweet.ID); got != 8 {
		t.Fatalf("expected stock 8, got %d", got)
	}
}

func TestSweetService_Purchase_FailedPurchaseReleasesKey(t *testing.T) {
	replay := newStubReplayStore()
	f := newFixture(t, replay)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 2)

	in := ports.PurchaseInput{SweetID: sweet.ID, Quantity: 3, IdempotencyKey: "key-1"}
	if _, err := f.svc.Purchase(context.Background(), buyer, in); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if len(replay.released) != 1 {
		t.Fatalf("expected the claim to be released, got %v", replay.released)
	}

	if _, err := f.svc.Restock(context.Background(), adminA, sweet.ID, 5); err != nil {
		t.Fatalf("restock: %v", err)
	}
	out, err := f.svc.Purchase(context.Background(), buyer, in)
	if err != nil {
		t.Fatalf("retry after restock: %v", err)
	}
	if out.Replayed || out.Sweet.Stock != 4 {
		t.Fatalf("expected a fresh purchase leaving 4, got replayed=%v stock=%d", out.Replayed, out.Sweet.Stock)
	}
}

func TestSweetService_Purchase_PendingKeyIsRefused(t *testing.T) {
	replay := newStubReplayStore()
	f := newFixture(t, replay)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)

	key := buyer.ID + ":" + sweet.ID + ":key-1"
	replay.entries[key] = domain.PurchaseRecord{Quantity: 1}

	_, err := f.svc.Purchase(context.Background(), buyer, ports.PurchaseInput{SweetID: sweet.ID, Quantity: 1, IdempotencyKey: "key-1"})
	if !errors.Is(err, domain.ErrPurchaseInProgress) {
		t.Fatalf("expected ErrPurchaseInProgress, got %v", err)
	}
	if got := f.stockOf(t, sweet.ID); got != 10 {
		t.Fatalf("stock must stay 10, got %d", got)
	}
}

func TestSweetService_Purchase_ReplayStoreFailureIsIgnored(t *testing.T) {
	replay := newStubReplayStore()
	replay.claimErr = errors.New("redis down")
	f := newFixture(t, replay)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)

	out, err := f.svc.Purchase(context.Background(), buyer, ports.PurchaseInput{SweetID: sweet.ID, Quantity: 1, IdempotencyKey: "k"})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if out.Sweet.Stock != 9 {
		t.Fatalf("expected stock 9, got %d", out.Sweet.Stock)
	}
}

func TestSweetService_PriceOutOfRange(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)
	ctx := context.Background()

	for _, price := range []string{"1e7000", "0.12345", "10000000000000000"} {
		_, err := f.svc.Create(ctx, adminA, ports.CreateSweetInput{
			Name: "Gum", Price: decimal.RequireFromString(price), Stock: 1, CategoryID: f.category.ID,
		})
		var verr *domain.ValidationError
		if !errors.As(err, &verr) || len(verr.Fields["price"]) == 0 {
			t.Errorf("create with price %s: expected price validation error, got %v", price, err)
		}

		_, err = f.svc.Update(ctx, adminA, sweet.ID, domain.SweetPatch{Price: decPtr(price)})
		if !errors.As(err, &verr) || len(verr.Fields["price"]) == 0 {
			t.Errorf("update with price %s: expected price validation error, got %v", price, err)
		}

		_, err = f.svc.Search(ctx, domain.SearchFilter{PriceMin: decPtr(price)})
		if !errors.As(err, &verr) || len(verr.Fields["priceMin"]) == 0 {
			t.Errorf("search with priceMin %s: expected priceMin validation error, got %v", price, err)
		}
	}
}

func TestSweetService_AuthorizeOwner(t *testing.T) {
	f := newFixture(t, nil)
	sweet := f.seedSweet(t, adminA, "Gum", "1.00", 10)
	ctx := context.Background()

	if err := f.svc.AuthorizeOwner(ctx, adminA, sweet.ID); err != nil {
		t.Fatalf("owner should be authorized, got %v", err)
	}
	if err := f.svc.AuthorizeOwner(ctx, adminB, sweet.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.svc.AuthorizeOwner(ctx, adminB, "missing"); !errors.Is(err, domain.ErrSweetNotFound) {
		t.Fatalf("expected ErrSweetNotFound, got %v", err)
	}
	if err := f.svc.AuthorizeOwner(ctx, buyer, sweet.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for a non-admin, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

func TestSweetService_Search(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.seedSweet(t, adminA, "Chocolate Bar", "2.00", 5)
	f.seedSweet(t, adminA, "Gummy Bears", "1.00", 5)
	f.seedSweet(t, adminB, "Dark CHOCOLATE", "4.50", 5)

	all, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	unfiltered, err := f.svc.Search(ctx, domain.SearchFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(unfiltered) != len(all) || len(all) != 3 {
		t.Fatalf("no filters must equal list: %d vs %d", len(unfiltered), len(all))
	}

	byName, _ := f.svc.Search(ctx, domain.SearchFilter{Name: "chocolate"})
	if len(byName) != 2 {
		t.Errorf("name filter: expected 2, got %d", len(byName))
	}

	ranged, _ := f.svc.Search(ctx, domain.SearchFilter{Name: "chocolate", PriceMax: decPtr("2.00")})
	if len(ranged) != 1 || ranged[0].Name != "Chocolate Bar" {
		t.Errorf("name+price filter: unexpected %+v", ranged)
	}
}

func TestSweetService_Search_InvertedRange(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Search(context.Background(), domain.SearchFilter{
		Name: "gum", CategoryID: f.category.ID, PriceMin: decPtr("5"), PriceMax: decPtr("1"),
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || len(verr.Fields["priceMin"]) == 0 {
		t.Fatalf("expected priceMin validation error, got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/akramasif506/cloudstore3-sub001/internal/domain"
)

var errBoom = errors.New("boom")

/* ---------- users ---------- */

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	fail  bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.fail {
		return errBoom
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if f.fail {
		return nil, errBoom
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.fail {
		return nil, errBoom
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		if q == "" || strings.Contains(u.Email, q) || strings.Contains(u.Name, q) {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return errBoom
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) CountAll(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUserRepo) InTx(ctx context.Context, fn func(tx domain.UserRepository) error) error {
	return fn(f)
}

/* ---------- listings ---------- */

type fakeListingRepo struct {
	mu       sync.Mutex
	listings map[string]*domain.Listing
	fail     bool
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: map[string]*domain.Listing{}}
}

func (f *fakeListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	if f.fail {
		return errBoom
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.listings[l.ID] = &cp
	return nil
}

func (f *fakeListingRepo) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (f *fakeListingRepo) List(ctx context.Context, fl domain.ListingFilter) ([]domain.Listing, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Listing
	for _, l := range f.listings {
		if fl.Status != "" && l.Status != fl.Status {
			continue
		}
		if fl.OwnerID != "" && l.OwnerID != fl.OwnerID {
			continue
		}
		if fl.Category != "" && l.Category != fl.Category {
			continue
		}
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (f *fakeListingRepo) UpdateStatus(ctx context.Context, id string, status domain.ListingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return errBoom
	}
	l.Status = status
	return nil
}

/* ---------- reviews ---------- */

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []domain.Review
}

func (f *fakeReviewRepo) Append(ctx context.Context, r *domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews = append(f.reviews, *r)
	return nil
}

func (f *fakeReviewRepo) ListByListing(ctx context.Context, listingID string) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Review
	for _, r := range f.reviews {
		if r.ListingID == listingID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) CountByListing(ctx context.Context, listingID string) (int64, error) {
	out, _ := f.ListByListing(ctx, listingID)
	return int64(len(out)), nil
}

/* ---------- orders ---------- */

type fakeOrderRepo struct {
	mu     sync.Mutex
	cart   []domain.CartItem
	orders []domain.Order
}

func (f *fakeOrderRepo) PlaceFromCart(ctx context.Context, ownerID string, build func(items []domain.CartItem) (*domain.Order, error)) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []domain.CartItem
	for _, it := range f.cart {
		if it.OwnerID == ownerID {
			mine = append(mine, it)
		}
	}
	o, err := build(mine)
	if err != nil {
		return nil, err
	}
	f.orders = append(f.orders, *o)
	var rest []domain.CartItem
	for _, it := range f.cart {
		if it.OwnerID != ownerID {
			rest = append(rest, it)
		}
	}
	f.cart = rest
	return o, nil
}

func (f *fakeOrderRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Order
	for _, o := range f.orders {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) ListAll(ctx context.Context, offset, limit int) ([]domain.Order, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Order(nil), f.orders...), int64(len(f.orders)), nil
}

/* ---------- blob store ---------- */

type fakeBlobStore struct {
	mu    sync.Mutex
	saved map[string][]byte
	fail  bool
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{saved: map[string][]byte{}}
}

func (f *fakeBlobStore) Save(ctx context.Context, path string, r io.Reader, contentType string) (string, error) {
	if f.fail {
		return "", errBoom
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[path] = b
	return path, nil
}

func (f *fakeBlobStore) URL(ref string) string { return "/uploads/" + ref }

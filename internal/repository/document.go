package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/liew807/winwin8/internal/ident"
	"github.com/liew807/winwin8/internal/model"
	"github.com/liew807/winwin8/internal/password"
	"github.com/liew807/winwin8/internal/record"
)

// document is the on-disk layout: one JSON file holding all collections.
// Records are kept as raw maps so that files written by older revisions
// (snake_case fields) load through the record normalizer.
type document struct {
	Users    []map[string]any `json:"users"`
	Products []map[string]any `json:"products"`
	Orders   []map[string]any `json:"orders"`
	Settings map[string]any   `json:"settings"`
}

// DocumentStore implements Store on a single JSON document file. The file is
// loaded once; after that the in-memory state is authoritative and every
// mutation rewrites the full document under the write lock. The lock
// serializes the load-mutate-persist cycle, so concurrent creates cannot
// lose writes.
type DocumentStore struct {
	path string

	mu       sync.RWMutex
	users    []model.User
	products []model.Product
	orders   []model.Order
	settings model.Settings
}

// NewDocumentStore loads (or creates) the document file and seeds the
// bootstrap admin and default settings if absent.
func NewDocumentStore(path string) (*DocumentStore, error) {
	s := &DocumentStore{path: path}

	if err := s.load(); err != nil {
		return nil, err
	}

	if err := s.seed(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *DocumentStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.settings = model.DefaultSettings()
			return nil
		}
		return fmt.Errorf("read document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse document %s: %w", s.path, err)
	}

	for _, m := range doc.Users {
		s.users = append(s.users, record.User(m))
	}
	for _, m := range doc.Products {
		s.products = append(s.products, record.Product(m))
	}
	for _, m := range doc.Orders {
		s.orders = append(s.orders, record.Order(m))
	}
	s.settings = record.Settings(doc.Settings)

	return nil
}

func (s *DocumentStore) seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false

	hasAdmin := false
	for _, u := range s.users {
		if u.IsAdmin {
			hasAdmin = true
			break
		}
	}
	if !hasAdmin {
		hash, err := password.Hash(model.DefaultAdminPassword)
		if err != nil {
			return err
		}
		s.users = append(s.users, model.User{
			ID:        ident.NewID(),
			Username:  model.AdminUsername,
			Password:  hash,
			IsAdmin:   true,
			CreatedAt: time.Now().UTC(),
		})
		changed = true
	}

	def := model.DefaultSettings()
	if s.settings == (model.Settings{}) {
		s.settings = def
		changed = true
	}

	if changed {
		return s.persistLocked()
	}
	return nil
}

// persistLocked rewrites the whole document atomically. Callers must hold
// the write lock.
func (s *DocumentStore) persistLocked() error {
	doc := document{
		Users:    make([]map[string]any, 0, len(s.users)),
		Products: make([]map[string]any, 0, len(s.products)),
		Orders:   make([]map[string]any, 0, len(s.orders)),
		Settings: record.SettingsDoc(s.settings),
	}
	for _, u := range s.users {
		doc.Users = append(doc.Users, record.UserDoc(u))
	}
	for _, p := range s.products {
		doc.Products = append(doc.Products, record.ProductDoc(p))
	}
	for _, o := range s.orders {
		doc.Orders = append(doc.Orders, record.OrderDoc(o))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp document: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close document: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace document: %w", err)
	}

	return nil
}

// Close is a no-op; the document is persisted after every mutation.
func (s *DocumentStore) Close() error { return nil }

// Kind reports the backend type.
func (s *DocumentStore) Kind() string { return KindFile }

// Users returns all users, most recent first.
func (s *DocumentStore) Users(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]model.User, len(s.users))
	copy(users, s.users)
	sortNewestFirst(users, func(u model.User) (time.Time, int64) { return u.CreatedAt, u.ID })
	return users, nil
}

// CreateUser appends a new user. A taken username yields ErrUserExists.
func (s *DocumentStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return model.User{}, fmt.Errorf("%w: %s", ErrUserExists, u.Username)
		}
	}

	if u.ID == 0 {
		u.ID = ident.NewID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	s.users = append(s.users, u)
	if err := s.persistLocked(); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// UserByUsername returns the user with the given username, or ErrNotFound.
func (s *DocumentStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// TouchLastLogin records the time of a successful authentication.
func (s *DocumentStore) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == id {
			at := at.UTC()
			s.users[i].LastLogin = &at
			return s.persistLocked()
		}
	}
	return ErrNotFound
}

// Products returns all products, most recent first.
func (s *DocumentStore) Products(ctx context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]model.Product, len(s.products))
	copy(products, s.products)
	sortNewestFirst(products, func(p model.Product) (time.Time, int64) { return p.CreatedAt, p.ID })
	return products, nil
}

// CreateProduct appends a new product.
func (s *DocumentStore) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = ident.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	s.products = append(s.products, p)
	if err := s.persistLocked(); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// DeleteProduct removes a product, reporting whether it existed.
func (s *DocumentStore) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			if err := s.persistLocked(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Orders returns all orders, most recent first.
func (s *DocumentStore) Orders(ctx context.Context) ([]model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]model.Order, len(s.orders))
	copy(orders, s.orders)
	sortNewestFirst(orders, func(o model.Order) (time.Time, int64) { return o.CreatedAt, o.ID })
	return orders, nil
}

// CreateOrder appends a new order.
func (s *DocumentStore) CreateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if o.ID == 0 {
		o.ID = ident.NewID()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	s.orders = append(s.orders, o)
	if err := s.persistLocked(); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// UpdateOrderStatus sets the status of an order, reporting whether it
// existed. The status value itself is not validated.
func (s *DocumentStore) UpdateOrderStatus(ctx context.Context, id int64, status string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			s.orders[i].UpdatedAt = time.Now().UTC()
			if err := s.persistLocked(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// Settings returns the stored settings record.
func (s *DocumentStore) Settings(ctx context.Context) (model.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

// SaveSettings replaces the stored settings record.
func (s *DocumentStore) SaveSettings(ctx context.Context, st model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = st
	return s.persistLocked()
}

// Counts returns per-collection record counts.
func (s *DocumentStore) Counts(ctx context.Context) (model.Counts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.Counts{
		Users:    int64(len(s.users)),
		Products: int64(len(s.products)),
		Orders:   int64(len(s.orders)),
	}, nil
}

// sortNewestFirst orders records by creation time descending, breaking ties
// by id so listings are stable within one millisecond.
func sortNewestFirst[T any](items []T, key func(T) (time.Time, int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
}

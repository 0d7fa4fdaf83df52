// Package repository contains the storage drivers behind the store facade:
// a PostgreSQL driver and a JSON document-file driver, selected once at
// startup. Both present identical semantics through the Store interface.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/liew807/winwin8/internal/model"
)

// ErrUserExists is returned when creating a user whose username is taken.
var (
	ErrUserExists = errors.New("user already exists")
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
)

// Backend kinds reported by Store.Kind.
const (
	KindPostgres = "postgres"
	KindFile     = "file"
)

// Store is the data-access contract consumed by the service layer. List
// methods return records most-recent-first.
type Store interface {
	Close() error
	Kind() string

	Users(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)
	// TouchLastLogin returns ErrNotFound when no user has the given id.
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error

	Products(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) (bool, error)

	Orders(ctx context.Context) ([]model.Order, error)
	CreateOrder(ctx context.Context, o model.Order) (model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (bool, error)

	Settings(ctx context.Context) (model.Settings, error)
	SaveSettings(ctx context.Context, s model.Settings) error

	Counts(ctx context.Context) (model.Counts, error)
}

// Open selects the backend driver: a non-empty database URI selects
// PostgreSQL, otherwise the document file at dataFile is used.
func Open(databaseURI, dataFile string) (Store, error) {
	if databaseURI != "" {
		return NewPostgresStore(databaseURI)
	}
	return NewDocumentStore(dataFile)
}

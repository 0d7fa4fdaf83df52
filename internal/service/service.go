// Package service implements the store facade: one data-access surface with
// identical behavior regardless of which backend driver is active.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/liew807/winwin8/internal/ident"
	"github.com/liew807/winwin8/internal/model"
	"github.com/liew807/winwin8/internal/password"
	"github.com/liew807/winwin8/internal/repository"
	"github.com/liew807/winwin8/internal/validation"
)

// ErrInvalidInput marks malformed write input. Handlers translate it to a
// 4xx response; everything else from the backend surfaces as a generic
// failure.
var ErrInvalidInput = errors.New("invalid input")

// Service is the store facade. It owns input validation, default synthesis
// and the error taxonomy; the backend driver never leaks past it.
type Service struct {
	store  repository.Store
	logger *zap.Logger
}

// New creates the facade over the given backend driver.
func New(store repository.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Close releases the backend driver.
func (s *Service) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

// Backend reports the active backend kind.
func (s *Service) Backend() string {
	return s.store.Kind()
}

// ProductInput is the raw create-product payload. Price is kept undecoded
// because callers send it as either a JSON number or a numeric string.
type ProductInput struct {
	Name        string `json:"name"`
	Price       any    `json:"price"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ListProducts returns all products, most recent first. Backend failures are
// logged and reported as an empty list.
func (s *Service) ListProducts(ctx context.Context) []model.Product {
	products, err := s.store.Products(ctx)
	if err != nil {
		s.logger.Error("list products", zap.Error(err))
		return []model.Product{}
	}
	if products == nil {
		products = []model.Product{}
	}
	return products
}

// CreateProduct validates the input and stores a new product. The image
// reference falls back to a placeholder.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if in.Price == nil {
		return nil, fmt.Errorf("%w: product price is required", ErrInvalidInput)
	}
	price, err := validation.ParsePrice(in.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	image := in.Image
	if image == "" {
		image = model.DefaultProductImage
	}

	p, err := s.store.CreateProduct(ctx, model.Product{
		Name:        in.Name,
		Price:       price,
		Description: in.Description,
		ImageURL:    image,
	})
	if err != nil {
		s.logger.Error("create product", zap.Error(err))
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes a product by id. A missing id is not an error and
// reports false.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.store.DeleteProduct(ctx, id)
	if err != nil {
		s.logger.Error("delete product", zap.Error(err), zap.Int64("id", id))
		return false, err
	}
	return deleted, nil
}

// OrderInput is the raw create-order payload. Every field is optional;
// numeric fields are kept undecoded for lenient coercion.
type OrderInput struct {
	OrderNumber   string `json:"orderNumber"`
	UserID        string `json:"userId"`
	ProductID     string `json:"productId"`
	ProductName   string `json:"productName"`
	ProductPrice  any    `json:"productPrice"`
	TotalAmount   any    `json:"totalAmount"`
	PaymentMethod string `json:"paymentMethod"`
	Status        string `json:"status"`
}

// ListOrders returns all orders, most recent first. Backend failures are
// logged and reported as an empty list.
func (s *Service) ListOrders(ctx context.Context) []model.Order {
	orders, err := s.store.Orders(ctx)
	if err != nil {
		s.logger.Error("list orders", zap.Error(err))
		return []model.Order{}
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders
}

// CreateOrder stores a new order, synthesizing every missing field: a
// unique order number, numeric fields to 0, payment method to "tng" and
// status to "pending". It never fails for missing input.
func (s *Service) CreateOrder(ctx context.Context, in OrderInput) (*model.Order, error) {
	number := in.OrderNumber
	if number == "" {
		number = ident.NextOrderNumber()
	}

	method := in.PaymentMethod
	if method == "" {
		method = model.DefaultPaymentMethod
	}

	status := in.Status
	if status == "" {
		status = model.OrderStatusPending
	}

	o, err := s.store.CreateOrder(ctx, model.Order{
		OrderNumber:   number,
		UserID:        in.UserID,
		ProductID:     in.ProductID,
		ProductName:   in.ProductName,
		ProductPrice:  validation.ParseAmount(in.ProductPrice),
		TotalAmount:   validation.ParseAmount(in.TotalAmount),
		PaymentMethod: method,
		Status:        status,
	})
	if err != nil {
		s.logger.Error("create order", zap.Error(err))
		return nil, err
	}
	return &o, nil
}

// SetOrderStatus sets an order status without validating the value against
// the known set; arbitrary strings are accepted on purpose. Reports false
// when the order does not exist.
func (s *Service) SetOrderStatus(ctx context.Context, id int64, status string) (bool, error) {
	updated, err := s.store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		s.logger.Error("set order status", zap.Error(err), zap.Int64("id", id))
		return false, err
	}
	return updated, nil
}

// Authenticate verifies credentials and returns the sanitized user, or nil
// when the username is unknown or the password does not match. The two
// failure modes are indistinguishable: the unknown-user path still burns a
// hash comparison so both land in the same timing class.
func (s *Service) Authenticate(ctx context.Context, username, plain string) (*model.User, error) {
	u, err := s.store.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			password.VerifyDummy(plain)
			return nil, nil
		}
		s.logger.Error("authenticate", zap.Error(err))
		return nil, err
	}

	if !password.Verify(plain, u.Password) {
		return nil, nil
	}

	now := time.Now().UTC()
	if err := s.store.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("touch last login", zap.Error(err), zap.Int64("id", u.ID))
	}
	u.LastLogin = &now

	sanitized := u.Sanitized()
	return &sanitized, nil
}

// Register creates a new account with a hashed password and returns the
// sanitized user. A taken username yields repository.ErrUserExists; the
// ≥6-character password policy is re-validated here even though the route
// layer checks it too.
func (s *Service) Register(ctx context.Context, username, plain string) (*model.User, error) {
	if !validation.ValidCredentials(username, plain) {
		return nil, fmt.Errorf("%w: username required and password must be at least %d characters",
			ErrInvalidInput, validation.MinPasswordLength)
	}

	hash, err := password.Hash(plain)
	if err != nil {
		s.logger.Error("hash password", zap.Error(err))
		return nil, err
	}

	u, err := s.store.CreateUser(ctx, model.User{
		Username: username,
		Password: hash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, err
		}
		s.logger.Error("register", zap.Error(err))
		return nil, err
	}

	sanitized := u.Sanitized()
	return &sanitized, nil
}

// GetSettings returns the settings record with every missing field replaced
// by its baked-in default, so callers always see a fully populated object.
func (s *Service) GetSettings(ctx context.Context) model.Settings {
	st, err := s.store.Settings(ctx)
	if err != nil {
		s.logger.Error("get settings", zap.Error(err))
		return model.DefaultSettings()
	}
	return fillSettings(st)
}

// UpdateSettings shallow-merges the non-empty fields of patch into the
// current settings and persists the result.
func (s *Service) UpdateSettings(ctx context.Context, patch model.Settings) (model.Settings, error) {
	current := s.GetSettings(ctx)

	if patch.StoreName != "" {
		current.StoreName = patch.StoreName
	}
	if patch.KuaishouLink != "" {
		current.KuaishouLink = patch.KuaishouLink
	}
	if patch.ContactInfo != "" {
		current.ContactInfo = patch.ContactInfo
	}
	if patch.WelcomeMessage != "" {
		current.WelcomeMessage = patch.WelcomeMessage
	}

	if err := s.store.SaveSettings(ctx, current); err != nil {
		s.logger.Error("update settings", zap.Error(err))
		return model.Settings{}, err
	}
	return current, nil
}

// Backup returns a full dump of the current store state. User records carry
// their bcrypt hashes; plaintext is never stored, so none can appear here.
func (s *Service) Backup(ctx context.Context) (*model.Snapshot, error) {
	users, err := s.store.Users(ctx)
	if err != nil {
		s.logger.Error("backup users", zap.Error(err))
		return nil, err
	}
	products, err := s.store.Products(ctx)
	if err != nil {
		s.logger.Error("backup products", zap.Error(err))
		return nil, err
	}
	orders, err := s.store.Orders(ctx)
	if err != nil {
		s.logger.Error("backup orders", zap.Error(err))
		return nil, err
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		s.logger.Error("backup settings", zap.Error(err))
		return nil, err
	}

	if users == nil {
		users = []model.User{}
	}
	if products == nil {
		products = []model.Product{}
	}
	if orders == nil {
		orders = []model.Order{}
	}

	return &model.Snapshot{
		Users:    users,
		Products: products,
		Orders:   orders,
		Settings: fillSettings(settings),
	}, nil
}

// Status reports liveness, the active backend and record counts. A backend
// failure degrades the status instead of failing the call.
func (s *Service) Status(ctx context.Context) model.Status {
	st := model.Status{
		Status:  "ok",
		Backend: s.store.Kind(),
	}

	counts, err := s.store.Counts(ctx)
	if err != nil {
		s.logger.Error("count records", zap.Error(err))
		st.Status = "degraded"
		return st
	}
	st.Counts = counts
	return st
}

func fillSettings(st model.Settings) model.Settings {
	def := model.DefaultSettings()
	if st.StoreName == "" {
		st.StoreName = def.StoreName
	}
	if st.KuaishouLink == "" {
		st.KuaishouLink = def.KuaishouLink
	}
	if st.ContactInfo == "" {
		st.ContactInfo = def.ContactInfo
	}
	if st.WelcomeMessage == "" {
		st.WelcomeMessage = def.WelcomeMessage
	}
	return st
}

package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/liew807/winwin8/internal/model"
	"github.com/liew807/winwin8/internal/password"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements Store on top of a PostgreSQL connection pool.
// Money columns hold fixed-point cents; conversion to two-decimal floats
// happens at this boundary.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database, applies the schema migrations
// and seeds the bootstrap admin and default settings if absent.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}

	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if err := s.seed(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// seed materializes the bootstrap admin and the default settings row exactly
// once. The check-then-insert runs before traffic, so a concurrent duplicate
// insert is benign and absorbed by ON CONFLICT DO NOTHING.
func (s *PostgresStore) seed(ctx context.Context) error {
	var hasAdmin bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE is_admin)`,
	).Scan(&hasAdmin)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}

	if !hasAdmin {
		hash, err := password.Hash(model.DefaultAdminPassword)
		if err != nil {
			return err
		}
		_, err = s.pool.Exec(ctx,
			`INSERT INTO users (username, password_hash, is_admin) VALUES ($1, $2, TRUE)
			 ON CONFLICT (username) DO NOTHING`,
			model.AdminUsername, hash,
		)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}

	def := model.DefaultSettings()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO settings (id, store_name, kuaishou_link, contact_info, welcome_message)
		 VALUES (1, $1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		def.StoreName, def.KuaishouLink, def.ContactInfo, def.WelcomeMessage,
	)
	if err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Kind reports the backend type.
func (s *PostgresStore) Kind() string { return KindPostgres }

// Users returns all users, most recent first.
func (s *PostgresStore) Users(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, password_hash, is_admin, created_at, last_login
		 FROM users
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.IsAdmin, &u.CreatedAt, &u.LastLogin); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return users, nil
}

// CreateUser inserts a new user. A taken username yields ErrUserExists.
func (s *PostgresStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, is_admin)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		u.Username, u.Password, u.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.User{}, fmt.Errorf("%w: %s", ErrUserExists, u.Username)
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UserByUsername returns the user with the given username, or ErrNotFound.
func (s *PostgresStore) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, is_admin, created_at, last_login
		 FROM users
		 WHERE username = $1`,
		username,
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.IsAdmin, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

// TouchLastLogin records the time of a successful authentication.
func (s *PostgresStore) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET last_login = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Products returns all products, most recent first.
func (s *PostgresStore) Products(ctx context.Context) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, price_cents, description, image_url, created_at
		 FROM products
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var (
			p          model.Product
			priceCents int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &priceCents, &p.Description, &p.ImageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Price = centsToAmount(priceCents)
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// CreateProduct inserts a new product.
func (s *PostgresStore) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO products (name, price_cents, description, image_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		p.Name, amountToCents(p.Price), p.Description, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return model.Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// DeleteProduct removes a product, reporting whether it existed.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Orders returns all orders, most recent first.
func (s *PostgresStore) Orders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, order_number, user_id, product_id, product_name,
		        product_price_cents, total_amount_cents, payment_method, status,
		        created_at, updated_at
		 FROM orders
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var (
			o           model.Order
			priceCents  int64
			amountCents int64
		)
		if err := rows.Scan(
			&o.ID, &o.OrderNumber, &o.UserID, &o.ProductID, &o.ProductName,
			&priceCents, &amountCents, &o.PaymentMethod, &o.Status,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.ProductPrice = centsToAmount(priceCents)
		o.TotalAmount = centsToAmount(amountCents)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

// CreateOrder inserts a new order.
func (s *PostgresStore) CreateOrder(ctx context.Context, o model.Order) (model.Order, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO orders (order_number, user_id, product_id, product_name,
		                     product_price_cents, total_amount_cents, payment_method, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		o.OrderNumber, o.UserID, o.ProductID, o.ProductName,
		amountToCents(o.ProductPrice), amountToCents(o.TotalAmount),
		o.PaymentMethod, o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// UpdateOrderStatus sets the status of an order, reporting whether it
// existed. The status value itself is not validated.
func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id int64, status string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Settings returns the singleton settings row.
func (s *PostgresStore) Settings(ctx context.Context) (model.Settings, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT store_name, kuaishou_link, contact_info, welcome_message
		 FROM settings
		 WHERE id = 1`,
	)

	var st model.Settings
	err := row.Scan(&st.StoreName, &st.KuaishouLink, &st.ContactInfo, &st.WelcomeMessage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Settings{}, ErrNotFound
		}
		return model.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	return st, nil
}

// SaveSettings upserts the singleton settings row.
func (s *PostgresStore) SaveSettings(ctx context.Context, st model.Settings) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO settings (id, store_name, kuaishou_link, contact_info, welcome_message)
		 VALUES (1, $1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET
		     store_name = EXCLUDED.store_name,
		     kuaishou_link = EXCLUDED.kuaishou_link,
		     contact_info = EXCLUDED.contact_info,
		     welcome_message = EXCLUDED.welcome_message`,
		st.StoreName, st.KuaishouLink, st.ContactInfo, st.WelcomeMessage,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Counts returns per-collection record counts.
func (s *PostgresStore) Counts(ctx context.Context) (model.Counts, error) {
	var c model.Counts
	err := s.pool.QueryRow(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM users),
		     (SELECT COUNT(*) FROM products),
		     (SELECT COUNT(*) FROM orders)`,
	).Scan(&c.Users, &c.Products, &c.Orders)
	if err != nil {
		return model.Counts{}, fmt.Errorf("count records: %w", err)
	}
	return c, nil
}

func amountToCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

func centsToAmount(c int64) float64 {
	return float64(c) / 100
}

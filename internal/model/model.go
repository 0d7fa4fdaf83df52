// Package model contains the canonical storefront entities shared by all backends.
package model

import "time"

// Order status values used for defaults. SetOrderStatus deliberately accepts
// arbitrary strings, so nothing enforces this set.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCompleted = "completed"
)

// Defaults synthesized when the caller or the stored record omits a field.
const (
	DefaultPaymentMethod = "tng"
	DefaultProductImage  = "https://via.placeholder.com/300"

	AdminUsername        = "admin"
	DefaultAdminPassword = "admin123"
)

// User represents a storefront account. Password holds the bcrypt hash and is
// stripped before the record leaves the service layer.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Password  string     `json:"password,omitempty"`
	IsAdmin   bool       `json:"isAdmin"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// Sanitized returns a copy of the user with the password hash removed.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// Product represents a catalog item. Products are created and deleted, never
// updated in place.
type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Order represents a placed order. ProductName and ProductPrice are snapshots
// captured at creation time; UserID and ProductID are free-form references,
// not enforced relations.
type Order struct {
	ID            int64     `json:"id"`
	OrderNumber   string    `json:"orderNumber"`
	UserID        string    `json:"userId"`
	ProductID     string    `json:"productId"`
	ProductName   string    `json:"productName"`
	ProductPrice  float64   `json:"productPrice"`
	TotalAmount   float64   `json:"totalAmount"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Settings is the singleton store configuration record.
type Settings struct {
	StoreName      string `json:"storeName"`
	KuaishouLink   string `json:"kuaishouLink"`
	ContactInfo    string `json:"contactInfo"`
	WelcomeMessage string `json:"welcomeMessage"`
}

// DefaultSettings returns the baked-in settings used to seed a fresh store
// and to fill fields missing from a stored record.
func DefaultSettings() Settings {
	return Settings{
		StoreName:      "WinWin8",
		KuaishouLink:   "https://www.kuaishou.com",
		ContactInfo:    "support@winwin8.com",
		WelcomeMessage: "Welcome to WinWin8!",
	}
}

// Counts holds per-collection record counts for the status endpoint.
type Counts struct {
	Users    int64 `json:"users"`
	Products int64 `json:"products"`
	Orders   int64 `json:"orders"`
}

// Snapshot is a full dump of the current store state.
type Snapshot struct {
	Users    []User    `json:"users"`
	Products []Product `json:"products"`
	Orders   []Order   `json:"orders"`
	Settings Settings  `json:"settings"`
}

// Status describes service liveness and the active backend.
type Status struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Counts  Counts `json:"counts"`
}

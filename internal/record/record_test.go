package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liew807/winwin8/internal/model"
)

func TestUserAcceptsLegacySnakeCase(t *testing.T) {
	u := User(map[string]any{
		"id":            float64(1700000000123),
		"username":      "admin",
		"password_hash": "$2a$10$hash",
		"is_admin":      true,
		"created_at":    "2024-01-02T03:04:05Z",
		"last_login":    "2024-02-03T04:05:06Z",
	})

	assert.Equal(t, int64(1700000000123), u.ID)
	assert.Equal(t, "admin", u.Username)
	assert.Equal(t, "$2a$10$hash", u.Password)
	assert.True(t, u.IsAdmin)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), u.CreatedAt)
	require.NotNil(t, u.LastLogin)
	assert.Equal(t, time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC), *u.LastLogin)
}

func TestAdminFlagResolvesAcrossSourceNames(t *testing.T) {
	tests := []struct {
		name string
		m    map[string]any
		want bool
	}{
		{"canonical", map[string]any{"isAdmin": true}, true},
		{"snake", map[string]any{"is_admin": true}, true},
		{"short", map[string]any{"admin": true}, true},
		{"numeric truthy", map[string]any{"is_admin": float64(1)}, true},
		{"string truthy", map[string]any{"admin": "true"}, true},
		{"canonical false, legacy true", map[string]any{"isAdmin": false, "is_admin": true}, true},
		{"absent defaults to false", map[string]any{"username": "u"}, false},
		{"nil defaults to false", map[string]any{"isAdmin": nil}, false},
		{"all false", map[string]any{"isAdmin": false, "is_admin": false, "admin": false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, User(tt.m).IsAdmin)
		})
	}
}

func TestProductRoundTripIsStable(t *testing.T) {
	p := model.Product{
		ID:          42,
		Name:        "Mug",
		Price:       19.99,
		Description: "ceramic",
		ImageURL:    "https://example.com/mug.png",
		CreatedAt:   time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
	}

	once := Product(ProductDoc(p))
	assert.Equal(t, p, once)

	twice := Product(ProductDoc(once))
	assert.Equal(t, once, twice)
}

func TestOrderRoundTripIsStable(t *testing.T) {
	o := model.Order{
		ID:            7,
		OrderNumber:   "DD12345678",
		UserID:        "u-1",
		ProductID:     "p-1",
		ProductName:   "Mug",
		ProductPrice:  19.99,
		TotalAmount:   39.98,
		PaymentMethod: "tng",
		Status:        model.OrderStatusPending,
		CreatedAt:     time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
		UpdatedAt:     time.Date(2024, 3, 4, 5, 6, 8, 0, time.UTC),
	}

	once := Order(OrderDoc(o))
	assert.Equal(t, o, once)

	twice := Order(OrderDoc(once))
	assert.Equal(t, once, twice)
}

func TestOrderAcceptsLegacySnakeCase(t *testing.T) {
	o := Order(map[string]any{
		"id":             float64(5),
		"order_number":   "DD00000001",
		"user_id":        "u-9",
		"product_id":     "p-9",
		"product_name":   "Hat",
		"product_price":  "12.50",
		"total_amount":   float64(25),
		"payment_method": "cash",
		"status":         "paid",
		"created_at":     "2023-12-31T23:59:59Z",
	})

	assert.Equal(t, "DD00000001", o.OrderNumber)
	assert.Equal(t, "u-9", o.UserID)
	assert.Equal(t, 12.5, o.ProductPrice)
	assert.Equal(t, 25.0, o.TotalAmount)
	assert.Equal(t, "cash", o.PaymentMethod)
	assert.Equal(t, "paid", o.Status)
}

func TestSettingsAliases(t *testing.T) {
	s := Settings(map[string]any{
		"store_name":      "Legacy Shop",
		"kuaishou_link":   "https://ks.example",
		"contact_info":    "wx:legacy",
		"welcome_message": "hello",
	})

	assert.Equal(t, model.Settings{
		StoreName:      "Legacy Shop",
		KuaishouLink:   "https://ks.example",
		ContactInfo:    "wx:legacy",
		WelcomeMessage: "hello",
	}, s)

	assert.Equal(t, s, Settings(SettingsDoc(s)))
}

func TestTimestampsSurviveEpochMillis(t *testing.T) {
	p := Product(map[string]any{
		"id":        float64(1),
		"name":      "Old",
		"price":     float64(1),
		"createdAt": float64(1700000000000),
	})

	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), p.CreatedAt)
}

// Package record maps raw backend records to and from the canonical camelCase
// shape. Older document files (and relational rows) used snake_case names, so
// every read accepts the known aliases of each field; writes emit canonical
// names only. Normalizing a record that is already canonical is a no-op, so
// normalize → denormalize → normalize is stable.
package record

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/liew807/winwin8/internal/model"
)

// User builds a canonical user from a raw record. The admin flag is resolved
// by logical OR across all of its historical names and defaults to false.
func User(m map[string]any) model.User {
	u := model.User{
		ID:        intAt(m, "id"),
		Username:  strAt(m, "username", "user_name"),
		Password:  strAt(m, "password", "passwordHash", "password_hash"),
		IsAdmin:   boolAt(m, "isAdmin", "is_admin", "admin"),
		CreatedAt: timeAt(m, "createdAt", "created_at"),
	}
	if t := timeAt(m, "lastLogin", "last_login"); !t.IsZero() {
		u.LastLogin = &t
	}
	return u
}

// UserDoc converts a user to its canonical stored form.
func UserDoc(u model.User) map[string]any {
	m := map[string]any{
		"id":        u.ID,
		"username":  u.Username,
		"password":  u.Password,
		"isAdmin":   u.IsAdmin,
		"createdAt": stamp(u.CreatedAt),
	}
	if u.LastLogin != nil {
		m["lastLogin"] = stamp(*u.LastLogin)
	}
	return m
}

// Product builds a canonical product from a raw record.
func Product(m map[string]any) model.Product {
	return model.Product{
		ID:          intAt(m, "id"),
		Name:        strAt(m, "name"),
		Price:       numAt(m, "price"),
		Description: strAt(m, "description"),
		ImageURL:    strAt(m, "imageUrl", "image_url", "image"),
		CreatedAt:   timeAt(m, "createdAt", "created_at"),
	}
}

// ProductDoc converts a product to its canonical stored form.
func ProductDoc(p model.Product) map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"price":       p.Price,
		"description": p.Description,
		"imageUrl":    p.ImageURL,
		"createdAt":   stamp(p.CreatedAt),
	}
}

// Order builds a canonical order from a raw record.
func Order(m map[string]any) model.Order {
	return model.Order{
		ID:            intAt(m, "id"),
		OrderNumber:   strAt(m, "orderNumber", "order_number"),
		UserID:        strAt(m, "userId", "user_id"),
		ProductID:     strAt(m, "productId", "product_id"),
		ProductName:   strAt(m, "productName", "product_name"),
		ProductPrice:  numAt(m, "productPrice", "product_price"),
		TotalAmount:   numAt(m, "totalAmount", "total_amount"),
		PaymentMethod: strAt(m, "paymentMethod", "payment_method"),
		Status:        strAt(m, "status"),
		CreatedAt:     timeAt(m, "createdAt", "created_at"),
		UpdatedAt:     timeAt(m, "updatedAt", "updated_at"),
	}
}

// OrderDoc converts an order to its canonical stored form.
func OrderDoc(o model.Order) map[string]any {
	return map[string]any{
		"id":            o.ID,
		"orderNumber":   o.OrderNumber,
		"userId":        o.UserID,
		"productId":     o.ProductID,
		"productName":   o.ProductName,
		"productPrice":  o.ProductPrice,
		"totalAmount":   o.TotalAmount,
		"paymentMethod": o.PaymentMethod,
		"status":        o.Status,
		"createdAt":     stamp(o.CreatedAt),
		"updatedAt":     stamp(o.UpdatedAt),
	}
}

// Settings builds canonical settings from a raw record.
func Settings(m map[string]any) model.Settings {
	return model.Settings{
		StoreName:      strAt(m, "storeName", "store_name"),
		KuaishouLink:   strAt(m, "kuaishouLink", "kuaishou_link"),
		ContactInfo:    strAt(m, "contactInfo", "contact_info"),
		WelcomeMessage: strAt(m, "welcomeMessage", "welcome_message"),
	}
}

// SettingsDoc converts settings to their canonical stored form.
func SettingsDoc(s model.Settings) map[string]any {
	return map[string]any{
		"storeName":      s.StoreName,
		"kuaishouLink":   s.KuaishouLink,
		"contactInfo":    s.ContactInfo,
		"welcomeMessage": s.WelcomeMessage,
	}
}

func strAt(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			return t
		case json.Number:
			return t.String()
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(t, 10)
		}
	}
	return ""
}

func numAt(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t
		case int64:
			return float64(t)
		case int:
			return float64(t)
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f
			}
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func intAt(m map[string]any, keys ...string) int64 {
	return int64(math.Round(numAt(m, keys...)))
}

func boolAt(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool:
			if t {
				return true
			}
		case string:
			if t == "true" || t == "1" {
				return true
			}
		case float64:
			if t != 0 {
				return true
			}
		case int64:
			if t != 0 {
				return true
			}
		}
	}
	return false
}

func timeAt(m map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
				return ts
			}
		case time.Time:
			return t
		case float64:
			// Epoch milliseconds, as written by early document files.
			return time.UnixMilli(int64(t)).UTC()
		case int64:
			return time.UnixMilli(t).UTC()
		}
	}
	return time.Time{}
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

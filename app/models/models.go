// Package models defines the wire-level records of the VPerfumes tracking
// API. Field names are fixed by the server contract — do not rename the JSON
// tags.
package models

import "time"

// Order status vocabulary. The localized labels are the API values: the
// server stores and returns them verbatim, and the UI shows them unchanged.
const (
	StatusOngoing   = "جاري"
	StatusDone      = "تم"
	StatusCancelled = "ملغي"
)

// Statuses lists the closed status set in display order.
func Statuses() []string {
	return []string{StatusOngoing, StatusDone, StatusCancelled}
}

// ValidStatus reports whether s is one of the three known labels.
func ValidStatus(s string) bool {
	return s == StatusOngoing || s == StatusDone || s == StatusCancelled
}

// Identity is the authenticated caller as known to the client. The server is
// the source of truth; the client holds a cached copy invalidated on logout
// or 401.
type Identity struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Role        string    `json:"role"` // "admin" or "company"
	CompanyName string    `json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool { return i != nil && i.Role == "admin" }

// IsCompany reports whether the identity carries the company role.
func (i *Identity) IsCompany() bool { return i != nil && i.Role == "company" }

// Order is a delivery job record. OrderDate is a plain "YYYY-MM-DD" string
// on the wire; parsing happens only where ordering matters (see app/view).
type Order struct {
	ID            string    `json:"id"`
	OrderNumber   string    `json:"order_number"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	DeliveryArea  string    `json:"delivery_area"`
	OrderPrice    float64   `json:"order_price"`
	DeliveryCost  float64   `json:"delivery_cost"`
	Status        string    `json:"status"`
	OrderDate     string    `json:"order_date"`
	Notes         string    `json:"notes,omitempty"`
	CompanyID     string    `json:"company_id,omitempty"`
	CompanyName   string    `json:"company_name,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// OrderInput carries the mutable order fields for create and update calls.
// Admin callers must set CompanyName so the server can attach the order to
// the right account; company callers leave it empty.
type OrderInput struct {
	OrderNumber   string  `json:"order_number"   validate:"required"`
	CustomerName  string  `json:"customer_name"  validate:"required"`
	CustomerPhone string  `json:"customer_phone" validate:"required"`
	DeliveryArea  string  `json:"delivery_area"  validate:"required"`
	OrderPrice    float64 `json:"order_price"`
	DeliveryCost  float64 `json:"delivery_cost"`
	Status        string  `json:"status"         validate:"required,in=جاري,تم,ملغي"`
	OrderDate     string  `json:"order_date"     validate:"required,date"`
	Notes         string  `json:"notes,omitempty"`
	CompanyName   string  `json:"company_name,omitempty"`
}

// HistoryEntry is one audit-trail record for an order, fetched lazily and
// read-only on the client.
type HistoryEntry struct {
	ID        string                 `json:"id"`
	OrderID   string                 `json:"order_id"`
	Action    string                 `json:"action"` // "created", "updated" or "deleted"
	Changes   map[string]interface{} `json:"changes"`
	UserID    string                 `json:"user_id"`
	Username  string                 `json:"username"`
	Timestamp time.Time              `json:"timestamp"`
}

// CompanyAccount is a company login credential. Distinct from the
// company_name strings embedded in orders: orders keep their label even
// after the account is deleted.
type CompanyAccount struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	CompanyName string    `json:"company_name"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Stats is the server-computed aggregate snapshot. Never derived locally
// from the order list — the two may transiently disagree until refetch.
type Stats struct {
	Total     int `json:"total"`
	Ongoing   int `json:"ongoing"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// ResetPasswordResult is the one-time reveal of a regenerated company
// password. It must live only in transient memory: never logged, cached or
// persisted — the server cannot return it again.
type ResetPasswordResult struct {
	CompanyName string `json:"company_name"`
	Username    string `json:"username"`
	NewPassword string `json:"new_password"`
}

// PushEvent is one frame on the push channel. The only type the server
// sends today is "new_order" with the created order embedded.
type PushEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Order   *Order `json:"order,omitempty"`
}

// EventNewOrder is the push-channel frame type for order creations.
const EventNewOrder = "new_order"

package model

import "time"

// OrderStatus is the lifecycle state of an order. An "open" order is the
// active shopping cart for a (tenant, customer) pair; there is at most one.
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "open"
	OrderStatusFinalized OrderStatus = "finalized"
)

// AttendanceMode says who is allowed to reply to the conversation.
type AttendanceMode string

const (
	AttendanceModeBot    AttendanceMode = "bot"
	AttendanceModeManual AttendanceMode = "manual"
)

// AttendanceStatus flags conversations that asked for a human.
type AttendanceStatus string

const (
	AttendanceStatusNone              AttendanceStatus = "none"
	AttendanceStatusRequiresAttention AttendanceStatus = "requires_attention"
)

type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type Order struct {
	ID               int64            `json:"id"`
	TenantID         int64            `json:"tenant_id"`
	Customer         string           `json:"customer"` // phone number without the gateway prefix
	Status           OrderStatus      `json:"status"`
	TotalCents       int64            `json:"total_cents"`
	Mode             AttendanceMode   `json:"attendance_mode"`
	AttendanceStatus AttendanceStatus `json:"attendance_status"`
	Items            []OrderItem      `json:"items"`
	CreatedAt        time.Time        `json:"created_at"`
	FinalizedAt      *time.Time       `json:"finalized_at,omitempty"`
}

func (Order) TableName() string { return "orders" }

type OrderFilter struct {
	TenantID int64
	Status   *OrderStatus
	Customer *string
	Limit    int
	Offset   int
	Desc     bool
}

// CartLine is one rendered cart entry. Missing marks items whose product no
// longer resolves (deleted or deactivated after being added).
type CartLine struct {
	ProductID     int64
	Name          string
	Quantity      int
	SubtotalCents int64
	Missing       bool
}

type CartView struct {
	OrderID    int64
	Lines      []CartLine
	TotalCents int64
}

func (v *CartView) Empty() bool {
	return v == nil || len(v.Lines) == 0
}

// CartUpdate is the result of adding an item to the cart.
type CartUpdate struct {
	OrderID    int64
	Product    *Product
	Quantity   int
	TotalCents int64
}

// Receipt is the result of a successful checkout.
type Receipt struct {
	OrderID    int64
	TotalCents int64
}

package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment stage of an order.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusPacking    OrderStatus = "packing"
	StatusDelivery   OrderStatus = "delivery"
	StatusDone       OrderStatus = "done"
)

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusProcessing, StatusPacking, StatusDelivery, StatusDone:
		return true
	}
	return false
}

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentUnknown PaymentMethod = "unknown"
	PaymentCash    PaymentMethod = "cash"
	PaymentCard    PaymentMethod = "card"
)

// Order represents a customer order.
type Order struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	Firstname     string        `json:"firstname" db:"firstname"`
	Lastname      string        `json:"lastname" db:"lastname"`
	Phonenumber   string        `json:"phonenumber" db:"phonenumber"`
	Address       string        `json:"address" db:"address"`
	Status        OrderStatus   `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	CalledAt      *time.Time    `json:"called_at,omitempty" db:"called_at"`
	DeliveredAt   *time.Time    `json:"delivered_at,omitempty" db:"delivered_at"`
	Comment       string        `json:"comment" db:"comment"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	RestaurantID  *int64        `json:"restaurant_id,omitempty" db:"restaurant_id"`
}

// OrderItem represents a line item in an order. Price is the product price
// captured when the order was placed.
type OrderItem struct {
	ID        uuid.UUID       `json:"-" db:"id"`
	OrderID   uuid.UUID       `json:"-" db:"order_id"`
	ProductID int64           `json:"product" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// OrderTotal sums price times quantity over the given lines.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// OrderPayload is the undecoded body of an order registration request.
// Fields stay raw so that type mismatches are reported per field.
type OrderPayload struct {
	Firstname   json.RawMessage `json:"firstname"`
	Lastname    json.RawMessage `json:"lastname"`
	Phonenumber json.RawMessage `json:"phonenumber"`
	Address     json.RawMessage `json:"address"`
	Products    json.RawMessage `json:"products"`
}

// OrderRequest is a validated order registration request.
type OrderRequest struct {
	Firstname   string
	Lastname    string
	Phonenumber string // E.164
	Address     string
	Items       []OrderItemRequest
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	ProductID int64 `json:"product"`
	Quantity  int   `json:"quantity"`
}

// OrderResponse represents the response payload for an order.
type OrderResponse struct {
	ID          uuid.UUID          `json:"id"`
	Firstname   string             `json:"firstname"`
	Lastname    string             `json:"lastname"`
	Phonenumber string             `json:"phonenumber"`
	Address     string             `json:"address"`
	Products    []OrderItemRequest `json:"products"`
}

// RankedRestaurant is a candidate restaurant with its distance to an order.
// DistanceKM is nil when either side could not be geocoded.
type RankedRestaurant struct {
	Restaurant  RestaurantCandidate `json:"restaurant"`
	Coordinates *Coordinates        `json:"coordinates,omitempty"`
	DistanceKM  *float64            `json:"distance_km,omitempty"`
	Distance    string              `json:"distance"`
}

// OrderAssignment is one open order with the restaurants able to fulfil it.
type OrderAssignment struct {
	Order      Order              `json:"order"`
	Items      []OrderItem        `json:"items"`
	Total      decimal.Decimal    `json:"total"`
	Candidates []RankedRestaurant `json:"candidates"`
	Error      string             `json:"error,omitempty"`
}

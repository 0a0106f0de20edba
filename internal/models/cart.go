package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CartItem struct {
	ProductID ID              `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
}

func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Retailer struct {
	ID           ID               `json:"id"`
	Name         string           `json:"name"`
	Location     string           `json:"location"`
	Rating       float64          `json:"rating"`
	IsOpen       bool             `json:"is_open"`
	Distance     *float64         `json:"distance,omitempty"`
	DeliveryTime string           `json:"delivery_time,omitempty"`
	MinimumOrder *decimal.Decimal `json:"minimum_order,omitempty"`
}

type CartView struct {
	Items            []CartItem      `json:"items"`
	SelectedRetailer *Retailer       `json:"selected_retailer"`
	Total            decimal.Decimal `json:"total"`
	ItemCount        int             `json:"item_count"`
}

// AddItemRequest carries an item to add. A nil Quantity means 1.
type AddItemRequest struct {
	ProductID ID              `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  *int            `json:"quantity,omitempty"`
}

// UpdateQuantityRequest sets a line's quantity. Quantity is required; zero
// or below removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type CheckoutRequest struct {
	PaymentMethod   string `json:"payment_method"`
	DeliveryAddress string `json:"delivery_address"`
	Notes           string `json:"notes,omitempty"`
}

type Order struct {
	IdempotencyKey  string          `json:"idempotency_key"`
	RetailerID      ID              `json:"retailer_id"`
	Items           []CartItem      `json:"items"`
	Total           decimal.Decimal `json:"total"`
	PaymentMethod   string          `json:"payment_method"`
	DeliveryAddress string          `json:"delivery_address"`
	Notes           string          `json:"notes,omitempty"`
}

type OrderReceipt struct {
	OrderID   ID              `json:"order_id"`
	Status    string          `json:"status"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

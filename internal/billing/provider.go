package billing

import "context"

type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusExpired OrderStatus = "expired"
)

type OrderRequest struct {
	// Receipt is our transaction id; the provider echoes it back on fetch.
	Receipt  string
	Plan     Plan
	Currency string
}

// Order is the provider-side view of a purchase, handed to the client to
// complete checkout.
type Order struct {
	ID          string      `json:"id"`
	Status      OrderStatus `json:"status"`
	Receipt     string      `json:"receipt"`
	Amount      int64       `json:"amount"`
	Currency    string      `json:"currency"`
	CheckoutURL string      `json:"checkoutUrl,omitempty"`
}

type PaymentProvider interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
}

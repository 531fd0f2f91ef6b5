package domain

import (
	"time"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

// Order statuses. Every status has its own code.
const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusReady      OrderStatus = "is_ready"
	OrderStatusCompleted  OrderStatus = "completed"
)

// BuyingType is how the customer receives the order.
type BuyingType string

const (
	BuyingTypeSelf     BuyingType = "self"
	BuyingTypeDelivery BuyingType = "delivery"
)

// OrderDateLayout is the wire format of Order.OrderDate.
const OrderDateLayout = "2006-01-02"

// Order is the snapshot of a cart taken at checkout.
type Order struct {
	ID         string      `json:"id"`
	Number     int         `json:"number,omitempty"`
	CustomerID string      `json:"customer_id"`
	CartID     string      `json:"cart_id"`
	Cart       *Cart       `json:"cart,omitempty"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Phone      string      `json:"phone"`
	Address    string      `json:"address"`
	Status     OrderStatus `json:"status"`
	BuyingType BuyingType  `json:"buying_type"`
	Comment    string      `json:"comment"`
	OrderDate  time.Time   `json:"order_date"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ValidStatuses returns all order statuses in lifecycle order.
func ValidStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusNew,
		OrderStatusInProgress,
		OrderStatusReady,
		OrderStatusCompleted,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if string(s) == status {
			return true
		}
	}
	return false
}

// IsValidBuyingType checks if a buying type string is valid.
func IsValidBuyingType(bt string) bool {
	return bt == string(BuyingTypeSelf) || bt == string(BuyingTypeDelivery)
}

// AllowedTransitions defines which status transitions are valid.
func AllowedTransitions() map[OrderStatus][]OrderStatus {
	return map[OrderStatus][]OrderStatus{
		OrderStatusNew:        {OrderStatusInProgress},
		OrderStatusInProgress: {OrderStatusReady},
		OrderStatusReady:      {OrderStatusCompleted},
		OrderStatusCompleted:  {},
	}
}

// CanTransitionTo checks if the order can move to the target status.
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	for _, s := range AllowedTransitions()[o.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// NumberOrders sets display numbers on orders sorted newest first, so the
// newest order gets 1.
func NumberOrders(orders []Order) {
	for i := range orders {
		orders[i].Number = i + 1
	}
}

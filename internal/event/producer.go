package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// Kafka topics for storefront domain events.
var (
	TopicCartUpdated        = pkgkafka.Topic("cart", "updated")
	TopicOrderPlaced        = pkgkafka.Topic("order", "placed")
	TopicCustomerRegistered = pkgkafka.Topic("customer", "registered")
)

// Event types carried in the envelope.
const (
	TypeCartUpdated        = "cart.updated"
	TypeOrderPlaced        = "order.placed"
	TypeCustomerRegistered = "customer.registered"
)

// Aggregate types.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeOrder    = "order"
	AggregateTypeCustomer = "customer"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	CartID           string         `json:"cart_id"`
	CustomerID       string         `json:"customer_id"`
	Lines            []CartLineData `json:"lines"`
	NumberOfProducts int            `json:"number_of_products"`
	FinalPrice       string         `json:"final_price"`
}

// CartLineData is the line payload within cart events.
type CartLineData struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	FinalPrice string `json:"final_price"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID    string `json:"order_id"`
	CustomerID string `json:"customer_id"`
	CartID     string `json:"cart_id"`
	BuyingType string `json:"buying_type"`
	Status     string `json:"status"`
	OrderDate  string `json:"order_date"`
	FinalPrice string `json:"final_price"`
}

// CustomerRegisteredData is the payload for a customer.registered event.
type CustomerRegisteredData struct {
	CustomerID string `json:"customer_id"`
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
}

// Publisher sends an event envelope to a topic. *pkgkafka.Producer
// satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher Publisher
	logger    *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(publisher Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateID, aggregateType string, data any) error {
	agg := pkgkafka.Aggregate{Type: aggregateType, ID: aggregateID}
	event, err := pkgkafka.NewEvent(ctx, eventType, agg, SourceStorefront, data)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("event_type", eventType),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

// PublishCartUpdated publishes a cart.updated event with the cart's current
// lines and totals.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	lines := make([]CartLineData, len(cart.Lines))
	for i, l := range cart.Lines {
		lines[i] = CartLineData{
			ProductID:  l.ProductID,
			Qty:        l.Qty,
			FinalPrice: l.FinalPrice.StringFixed(2),
		}
	}

	data := CartUpdatedData{
		CartID:           cart.ID,
		CustomerID:       cart.CustomerID,
		Lines:            lines,
		NumberOfProducts: cart.NumberOfProducts,
		FinalPrice:       cart.FinalPrice.StringFixed(2),
	}
	return p.publish(ctx, TopicCartUpdated, TypeCartUpdated, cart.ID, AggregateTypeCart, data)
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	data := OrderPlacedData{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		CartID:     order.CartID,
		BuyingType: string(order.BuyingType),
		Status:     string(order.Status),
		OrderDate:  order.OrderDate.Format(domain.OrderDateLayout),
	}
	if order.Cart != nil {
		data.FinalPrice = order.Cart.FinalPrice.StringFixed(2)
	}
	return p.publish(ctx, TopicOrderPlaced, TypeOrderPlaced, order.ID, AggregateTypeOrder, data)
}

// PublishCustomerRegistered publishes a customer.registered event.
func (p *Producer) PublishCustomerRegistered(ctx context.Context, user *domain.User, customer *domain.Customer) error {
	data := CustomerRegisteredData{
		CustomerID: customer.ID,
		UserID:     user.ID,
		Username:   user.Username,
		Email:      user.Email,
	}
	return p.publish(ctx, TopicCustomerRegistered, TypeCustomerRegistered, customer.ID, AggregateTypeCustomer, data)
}

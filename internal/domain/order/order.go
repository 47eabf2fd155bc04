package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/product"
)

// Kind selects how a completed purchase is fulfilled.
type Kind string

const (
	// KindPhysical purchases are shipped.
	KindPhysical Kind = "physical"
	// KindDigital purchases are fulfilled with a download link.
	KindDigital Kind = "digital"
)

// KindFor returns the purchase kind matching a product kind.
func KindFor(k product.Kind) Kind {
	if k == product.KindDigital {
		return KindDigital
	}
	return KindPhysical
}

// fulfilment returns the event emitted after a purchase of this kind completes.
func (k Kind) fulfilment() EventType {
	switch k {
	case KindDigital:
		return EventDownloadLinkSent
	default:
		return EventItemShipped
	}
}

// EventType enumerates the observable steps of a purchase.
type EventType string

// Purchase lifecycle events.
const (
	EventOrderPlaced       EventType = "order_placed"
	EventInsufficientStock EventType = "insufficient_stock"
	EventDiscountApplied   EventType = "discount_applied"
	EventStockDeducted     EventType = "stock_deducted"
	EventOrderCompleted    EventType = "order_completed"
	EventItemShipped       EventType = "item_shipped"
	EventDownloadLinkSent  EventType = "download_link_sent"
)

// Event describes one step of a purchase lifecycle.
type Event struct {
	Type        EventType
	PurchaseID  string
	Kind        Kind
	ProductID   string
	ProductName string
	Buyer       string
	Quantity    int
	// Available is the stock level seen by a rejected initiation.
	Available int
	Total     decimal.Decimal
	// Discount is set for EventDiscountApplied.
	Discount discount.Discount
}

// Recorder receives purchase events in the order they occur.
type Recorder interface {
	Record(ctx context.Context, e Event)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, e Event)

// Record calls f(ctx, e).
func (f RecorderFunc) Record(ctx context.Context, e Event) { f(ctx, e) }

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) {}

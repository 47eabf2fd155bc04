package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/shopper"
)

// Sentinel errors for purchase lifecycle misuse.
var (
	ErrOrderNotInitiated = errors.New("order not initiated")
	ErrMissingParty      = errors.New("buyer and item are required")
)

// Purchase lifecycle states.
const (
	StateNew       = "new"
	StateInitiated = "initiated"
	StateCompleted = "completed"
)

const (
	eventInitiate = "initiate"
	eventDiscount = "discount"
	eventFinalize = "finalize"
)

// Purchase binds a shopper, an item and a quantity through the
// initiate, discount and finalize phases.
//
// A Purchase may be initiated again after it completes; the new order
// replaces the previous one. It is not safe for concurrent use.
type Purchase struct {
	svc       *Service
	id        string
	kind      Kind
	lifecycle *fsm.FSM

	buyer    *shopper.Shopper
	item     *product.Item
	quantity int
	total    decimal.Decimal
}

func newPurchase(svc *Service, kind Kind) *Purchase {
	return &Purchase{
		svc:  svc,
		id:   uuid.New().String(),
		kind: kind,
		lifecycle: fsm.NewFSM(
			StateNew,
			fsm.Events{
				{Name: eventInitiate, Src: []string{StateNew, StateInitiated, StateCompleted}, Dst: StateInitiated},
				{Name: eventDiscount, Src: []string{StateInitiated}, Dst: StateInitiated},
				{Name: eventFinalize, Src: []string{StateInitiated}, Dst: StateCompleted},
			},
			fsm.Callbacks{},
		),
	}
}

func (p *Purchase) ID() string              { return p.id }
func (p *Purchase) Kind() Kind              { return p.kind }
func (p *Purchase) Buyer() *shopper.Shopper { return p.buyer }
func (p *Purchase) Item() *product.Item     { return p.item }
func (p *Purchase) Quantity() int           { return p.quantity }
func (p *Purchase) Total() decimal.Decimal  { return p.total }
func (p *Purchase) State() string           { return p.lifecycle.Current() }

// Initiate places an order for quantity units of item. It returns false,
// without touching the purchase, when the item does not have enough stock.
func (p *Purchase) Initiate(ctx context.Context, buyer *shopper.Shopper, item *product.Item, quantity int) (_ bool, rerr error) {
	ctx, span := p.svc.tracer.Start(ctx, "Purchase.Initiate", trace.WithAttributes(
		attribute.String("purchase.id", p.id),
		attribute.Int("purchase.quantity", quantity),
	))
	defer func() { endSpan(span, rerr) }()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if buyer == nil || item == nil {
		return false, ErrMissingParty
	}
	if quantity <= 0 {
		return false, &product.InvalidQuantityError{ProductID: item.ID(), Quantity: quantity}
	}

	if available := item.Stock(); available < quantity {
		p.svc.metrics.rejected.Add(ctx, 1, kindAttr(p.kind))
		p.svc.recorder.Record(ctx, Event{
			Type:        EventInsufficientStock,
			PurchaseID:  p.id,
			Kind:        p.kind,
			ProductID:   item.ID(),
			ProductName: item.Name(),
			Buyer:       buyer.FullName(),
			Quantity:    quantity,
			Available:   available,
		})
		return false, nil
	}

	if err := p.fire(ctx, eventInitiate); err != nil {
		return false, err
	}
	p.buyer = buyer
	p.item = item
	p.quantity = quantity
	p.total = item.Price().Mul(decimal.NewFromInt(int64(quantity)))

	p.svc.metrics.placed.Add(ctx, 1, kindAttr(p.kind))
	p.svc.recorder.Record(ctx, p.event(EventOrderPlaced))
	return true, nil
}

// ApplyDiscount recomputes the total with d. Discounts accumulate when
// applied more than once.
func (p *Purchase) ApplyDiscount(ctx context.Context, d discount.Discount) (rerr error) {
	ctx, span := p.svc.tracer.Start(ctx, "Purchase.ApplyDiscount", trace.WithAttributes(
		attribute.String("purchase.id", p.id),
		attribute.String("discount", d.String()),
	))
	defer func() { endSpan(span, rerr) }()

	if p.lifecycle.Cannot(eventDiscount) {
		return ErrOrderNotInitiated
	}

	total, err := d.Apply(p.total)
	if err != nil {
		return errors.Wrap(err, "apply discount")
	}
	p.total = total

	p.svc.metrics.discounts.Add(ctx, 1, kindAttr(p.kind))
	e := p.event(EventDiscountApplied)
	e.Discount = d
	p.svc.recorder.Record(ctx, e)
	return nil
}

// Finalize deducts the ordered quantity from stock and completes the
// purchase. If stock changed since initiation and no longer covers the
// order, the *product.InsufficientStockError is returned and the purchase
// stays initiated. A cancelled ctx is reported before any stock is taken.
func (p *Purchase) Finalize(ctx context.Context) (rerr error) {
	ctx, span := p.svc.tracer.Start(ctx, "Purchase.Finalize", trace.WithAttributes(
		attribute.String("purchase.id", p.id),
	))
	defer func() { endSpan(span, rerr) }()

	if p.lifecycle.Cannot(eventFinalize) {
		return ErrOrderNotInitiated
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := p.item.DecreaseStock(p.quantity); err != nil {
		return errors.Wrap(err, "decrease stock")
	}
	if err := p.fire(ctx, eventFinalize); err != nil {
		return err
	}

	p.svc.metrics.completed.Add(ctx, 1, kindAttr(p.kind))
	p.svc.recorder.Record(ctx, p.event(EventStockDeducted))
	p.svc.recorder.Record(ctx, p.event(EventOrderCompleted))
	p.svc.recorder.Record(ctx, p.event(p.kind.fulfilment()))
	return nil
}

// fire runs a lifecycle transition. Self-transitions are reported by fsm as
// NoTransitionError and are not failures here. The transition ignores
// cancellation; callers check ctx before any side effect.
func (p *Purchase) fire(ctx context.Context, event string) error {
	err := p.lifecycle.Event(context.WithoutCancel(ctx), event)
	var noTransition fsm.NoTransitionError
	if err == nil || errors.As(err, &noTransition) {
		return nil
	}
	return errors.Wrapf(err, "transition %s", event)
}

func (p *Purchase) event(t EventType) Event {
	return Event{
		Type:        t,
		PurchaseID:  p.id,
		Kind:        p.kind,
		ProductID:   p.item.ID(),
		ProductName: p.item.Name(),
		Buyer:       p.buyer.FullName(),
		Quantity:    p.quantity,
		Total:       p.total,
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

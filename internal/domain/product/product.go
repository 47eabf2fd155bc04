package product

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Kind distinguishes physical goods from digital ones.
type Kind string

const (
	// KindPhysical is a product that is shipped to the customer.
	KindPhysical Kind = "physical"
	// KindDigital is a product delivered through a download link.
	KindDigital Kind = "digital"
)

// ParseKind converts a seed value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindPhysical, KindDigital:
		return k, nil
	default:
		return "", errors.Errorf("unsupported product kind: %q", s)
	}
}

// Label returns the human-readable label used in product listings.
func (k Kind) Label() string {
	switch k {
	case KindPhysical:
		return "Physical Product"
	case KindDigital:
		return "Digital Product"
	default:
		return "Product"
	}
}

// Alert is delivered to listeners when an item runs out of stock.
type Alert struct {
	ProductID string
	Name      string
}

// Message returns the out-of-stock notification text.
func (a Alert) Message() string {
	return fmt.Sprintf("%s is out of stock!", a.Name)
}

// AlertFunc receives out-of-stock alerts.
type AlertFunc func(Alert)

// Item is a catalog product with a tracked stock level.
//
// Stock only ever decreases through DecreaseStock, which checks and subtracts
// under a single lock, so the level never goes negative.
type Item struct {
	id    string
	name  string
	kind  Kind
	price decimal.Decimal

	mu        sync.Mutex
	stock     int
	listeners []AlertFunc
}

// New creates an item of the given kind with its initial stock.
func New(id, name string, kind Kind, price decimal.Decimal, stock int) *Item {
	return &Item{
		id:    id,
		name:  name,
		kind:  kind,
		price: price,
		stock: stock,
	}
}

// NewPhysical creates a physical item.
func NewPhysical(id, name string, price decimal.Decimal, stock int) *Item {
	return New(id, name, KindPhysical, price, stock)
}

// NewDigital creates a digital item.
func NewDigital(id, name string, price decimal.Decimal, stock int) *Item {
	return New(id, name, KindDigital, price, stock)
}

func (i *Item) ID() string             { return i.id }
func (i *Item) Name() string           { return i.name }
func (i *Item) Kind() Kind             { return i.kind }
func (i *Item) Price() decimal.Decimal { return i.price }

// Stock returns the current stock level.
func (i *Item) Stock() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.stock
}

// OnDepleted subscribes fn to out-of-stock alerts. Listeners are called in
// subscription order.
func (i *Item) OnDepleted(fn AlertFunc) {
	if fn == nil {
		return
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.listeners = append(i.listeners, fn)
}

// DecreaseStock removes quantity units from stock. It fails with
// *InsufficientStockError when fewer units are available, leaving stock
// unchanged. When stock reaches exactly zero every listener is notified
// before DecreaseStock returns.
func (i *Item) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return &InvalidQuantityError{ProductID: i.id, Quantity: quantity}
	}

	i.mu.Lock()
	if quantity > i.stock {
		available := i.stock
		i.mu.Unlock()
		return &InsufficientStockError{
			ProductID: i.id,
			Name:      i.name,
			Requested: quantity,
			Available: available,
		}
	}
	i.stock -= quantity
	depleted := i.stock == 0
	listeners := append([]AlertFunc(nil), i.listeners...)
	i.mu.Unlock()

	if depleted {
		alert := Alert{ProductID: i.id, Name: i.name}
		for _, fn := range listeners {
			fn(alert)
		}
	}
	return nil
}

// Info returns a one-line description of the item.
func (i *Item) Info() string {
	return fmt.Sprintf("%s: %s, Price: %s, In Stock: %d",
		i.kind.Label(), i.name, i.price.StringFixed(2), i.Stock())
}

// ShowInfo writes Info to w.
func (i *Item) ShowInfo(w io.Writer) error {
	_, err := fmt.Fprintln(w, i.Info())
	return err
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
}

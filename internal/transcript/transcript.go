// Package transcript renders the storefront activity as human-readable
// console lines and mirrors every line to the structured log.
package transcript

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/logrusorgru/aurora"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/shopper"
)

var _ order.Recorder = (*Console)(nil)

// Option configures a Console.
type Option func(*Console)

// WithColors toggles ANSI colors. Colors are off by default.
func WithColors(enabled bool) Option {
	return func(c *Console) {
		c.au = aurora.NewAurora(enabled)
	}
}

// WithLogger sets the logger that receives a copy of every line.
func WithLogger(lg *zap.Logger) Option {
	return func(c *Console) {
		if lg != nil {
			c.lg = lg
		}
	}
}

// Console writes transcript lines to an io.Writer. It is safe for
// concurrent use. The first write error is kept and reported by Err;
// later lines are dropped.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	err error

	au      aurora.Aurora
	printer *message.Printer
	lg      *zap.Logger
}

// New returns a Console writing to w.
func New(w io.Writer, opts ...Option) *Console {
	c := &Console{
		w:       w,
		au:      aurora.NewAurora(false),
		printer: message.NewPrinter(language.AmericanEnglish),
		lg:      zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Err returns the first error encountered while writing.
func (c *Console) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Record renders a purchase event.
func (c *Console) Record(_ context.Context, e order.Event) {
	var line string
	switch e.Type {
	case order.EventOrderPlaced:
		line = c.printer.Sprintf("Order placed for %d unit(s) of %s.", e.Quantity, e.ProductName)
	case order.EventInsufficientStock:
		line = c.au.Yellow(c.printer.Sprintf("Insufficient stock for %s. Stock available: %d",
			e.ProductName, e.Available)).String()
	case order.EventDiscountApplied:
		line = fmt.Sprintf("Discount applied. Total price: $%s", e.Total.StringFixed(2))
	case order.EventStockDeducted:
		line = c.printer.Sprintf("%d unit(s) of %s deducted from stock.", e.Quantity, e.ProductName)
	case order.EventOrderCompleted:
		line = c.au.Green(fmt.Sprintf("Order for %s completed.", e.Buyer)).String()
	case order.EventItemShipped:
		line = "Item shipped to customer."
	case order.EventDownloadLinkSent:
		line = "Download link sent to customer."
	default:
		c.lg.Warn("Unknown purchase event", zap.String("type", string(e.Type)))
		return
	}

	c.write(line)
	c.lg.Debug("Purchase event",
		zap.String("type", string(e.Type)),
		zap.String("purchase_id", e.PurchaseID),
		zap.String("kind", string(e.Kind)),
		zap.String("product_id", e.ProductID),
		zap.Int("quantity", e.Quantity),
		zap.Stringer("total", e.Total),
	)
}

// Alert renders an out-of-stock alert. Its signature matches
// product.AlertFunc.
func (c *Console) Alert(a product.Alert) {
	c.write(c.au.Red("[ALERT] " + a.Message()).Bold().String())
	c.lg.Warn("Product out of stock", zap.String("product_id", a.ProductID))
}

// Rejected renders the outcome of an order that could not be placed.
// again reports whether the purchase had been used before.
func (c *Console) Rejected(name string, again bool) {
	another := ""
	if again {
		another = "another "
	}
	c.write(c.au.Red(fmt.Sprintf("Failed to process %s%s order due to stock limitations.", another, name)).String())
}

// Customer renders the shopper details.
func (c *Console) Customer(s *shopper.Shopper) {
	c.do(s.DisplayInfo)
	c.lg.Debug("Customer", zap.String("name", s.FullName()))
}

// Product renders an item's listing line.
func (c *Console) Product(it *product.Item) {
	c.do(it.ShowInfo)
	c.lg.Debug("Product",
		zap.String("id", it.ID()),
		zap.String("kind", string(it.Kind())),
		zap.Int("stock", it.Stock()),
	)
}

// Break writes an empty separator line.
func (c *Console) Break() {
	c.write("")
}

func (c *Console) write(line string) {
	c.do(func(w io.Writer) error {
		_, err := fmt.Fprintln(w, line)
		return err
	})
}

func (c *Console) do(fn func(w io.Writer) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return
	}
	c.err = fn(c.w)
}

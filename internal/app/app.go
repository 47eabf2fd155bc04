package app

import (
	"context"
	"io"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/shopper"
	"github.com/xenking/storefront/internal/storage/memory"
	"github.com/xenking/storefront/internal/transcript"
)

// Run loads the seed, builds the catalog and replays every order step,
// printing the transcript on stdout. It is the single wiring point for the
// application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("seed", cfg.SeedFile))

	seed, err := cfg.Seed()
	if err != nil {
		return err
	}

	sf, err := New(seed, os.Stdout,
		WithLogger(lg),
		WithColors(!cfg.NoColor),
		WithOrderOptions(
			order.WithMeterProvider(m.MeterProvider()),
			order.WithTracerProvider(m.TracerProvider()),
		),
	)
	if err != nil {
		return err
	}
	return sf.Replay(ctx)
}

// Option configures a Storefront.
type Option func(*options)

type options struct {
	lg        *zap.Logger
	colors    bool
	orderOpts []order.Option
}

// WithLogger sets the application logger.
func WithLogger(lg *zap.Logger) Option {
	return func(o *options) {
		if lg != nil {
			o.lg = lg
		}
	}
}

// WithColors toggles transcript colors.
func WithColors(enabled bool) Option {
	return func(o *options) {
		o.colors = enabled
	}
}

// WithOrderOptions passes options through to the order service.
func WithOrderOptions(opts ...order.Option) Option {
	return func(o *options) {
		o.orderOpts = append(o.orderOpts, opts...)
	}
}

// Storefront holds one seeded catalog and replays its order steps.
type Storefront struct {
	lg        *zap.Logger
	shopper   *shopper.Shopper
	products  *memory.ProductRepository
	discounts *memory.DiscountRepository
	orders    *order.Service
	console   *transcript.Console
	steps     []catalog.Step
}

// New builds a Storefront from seed, writing its transcript to w.
func New(seed *catalog.Seed, w io.Writer, opts ...Option) (*Storefront, error) {
	o := options{lg: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	console := transcript.New(w,
		transcript.WithColors(o.colors),
		transcript.WithLogger(o.lg.Named("transcript")),
	)

	products, err := memory.NewProductRepository(seed.Products...)
	if err != nil {
		return nil, errors.Wrap(err, "create product repository")
	}
	for _, it := range seed.Products {
		it.OnDepleted(console.Alert)
	}

	discounts, err := memory.NewDiscountRepository(seed.Discounts...)
	if err != nil {
		return nil, errors.Wrap(err, "create discount repository")
	}

	orders, err := order.NewService(append([]order.Option{order.WithRecorder(console)}, o.orderOpts...)...)
	if err != nil {
		return nil, errors.Wrap(err, "create order service")
	}

	return &Storefront{
		lg:        o.lg,
		shopper:   seed.Shopper,
		products:  products,
		discounts: discounts,
		orders:    orders,
		console:   console,
		steps:     seed.Steps,
	}, nil
}

// Replay shows the customer and the catalog, then runs every step in order.
// A step that fails with an error stops the replay; an order rejected for
// lack of stock does not.
func (s *Storefront) Replay(ctx context.Context) error {
	if err := s.showCatalog(ctx); err != nil {
		return err
	}

	purchases := make(map[string]*order.Purchase)
	var placed, rejected int
	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			s.console.Break()
		}

		ok, err := s.run(ctx, purchases, step)
		if err != nil {
			return errors.Wrapf(err, "step %d (%s)", i+1, step.Purchase)
		}
		if ok {
			placed++
		} else {
			rejected++
		}
	}

	s.lg.Info("Replay complete",
		zap.Int("steps", len(s.steps)),
		zap.Int("completed", placed),
		zap.Int("rejected", rejected),
	)
	return s.console.Err()
}

func (s *Storefront) showCatalog(ctx context.Context) error {
	items, err := s.products.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	s.console.Customer(s.shopper)
	for _, it := range items {
		s.console.Product(it)
	}
	if len(s.steps) > 0 {
		s.console.Break()
	}
	return nil
}

// run places a single order and reports whether it completed.
func (s *Storefront) run(ctx context.Context, purchases map[string]*order.Purchase, step catalog.Step) (bool, error) {
	item, err := s.products.GetByID(ctx, step.Product)
	if err != nil {
		return false, err
	}
	var rule *discount.Rule
	if step.Discount != "" {
		if rule, err = s.discounts.FindByCode(ctx, step.Discount); err != nil {
			return false, err
		}
	}

	p, seen := purchases[step.Purchase]
	if !seen {
		p = s.orders.NewPurchase(order.KindFor(item.Kind()))
		purchases[step.Purchase] = p
	}

	ok, err := p.Initiate(ctx, s.shopper, item, step.Quantity)
	if err != nil {
		return false, err
	}
	if !ok {
		s.console.Rejected(step.Purchase, seen)
		return false, nil
	}

	if rule != nil {
		if err := p.ApplyDiscount(ctx, rule.Discount); err != nil {
			return false, err
		}
	}

	if err := p.Finalize(ctx); err != nil {
		return false, err
	}
	return true, nil
}

package order

import (
	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/xenking/storefront/internal/domain/order"

// Option configures a Service.
type Option func(*options)

type options struct {
	recorder       Recorder
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

// WithRecorder sets the Recorder that receives purchase events.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithMeterProvider sets the meter provider used for order counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		if mp != nil {
			o.meterProvider = mp
		}
	}
}

// WithTracerProvider sets the tracer provider used for lifecycle spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		if tp != nil {
			o.tracerProvider = tp
		}
	}
}

type instruments struct {
	placed    metric.Int64Counter
	rejected  metric.Int64Counter
	discounts metric.Int64Counter
	completed metric.Int64Counter
}

// Service creates purchases that share a recorder and telemetry.
type Service struct {
	recorder Recorder
	tracer   trace.Tracer
	metrics  instruments
}

// NewService creates an order Service.
func NewService(opts ...Option) (*Service, error) {
	o := options{
		recorder:       nopRecorder{},
		meterProvider:  metricnoop.NewMeterProvider(),
		tracerProvider: tracenoop.NewTracerProvider(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter(instrumentationName)

	var (
		m   instruments
		err error
	)
	if m.placed, err = meter.Int64Counter("storefront.orders.placed",
		metric.WithDescription("Purchases successfully initiated"),
	); err != nil {
		return nil, errors.Wrap(err, "create placed counter")
	}
	if m.rejected, err = meter.Int64Counter("storefront.orders.rejected",
		metric.WithDescription("Purchases rejected for insufficient stock"),
	); err != nil {
		return nil, errors.Wrap(err, "create rejected counter")
	}
	if m.discounts, err = meter.Int64Counter("storefront.discounts.applied",
		metric.WithDescription("Discounts applied to purchases"),
	); err != nil {
		return nil, errors.Wrap(err, "create discounts counter")
	}
	if m.completed, err = meter.Int64Counter("storefront.orders.completed",
		metric.WithDescription("Purchases finalized"),
	); err != nil {
		return nil, errors.Wrap(err, "create completed counter")
	}

	return &Service{
		recorder: o.recorder,
		tracer:   o.tracerProvider.Tracer(instrumentationName),
		metrics:  m,
	}, nil
}

// NewPurchase starts a purchase of the given kind.
func (s *Service) NewPurchase(kind Kind) *Purchase {
	return newPurchase(s, kind)
}

// NewPhysical starts a purchase that ships on completion.
func (s *Service) NewPhysical() *Purchase {
	return s.NewPurchase(KindPhysical)
}

// NewDigital starts a purchase that sends a download link on completion.
func (s *Service) NewDigital() *Purchase {
	return s.NewPurchase(KindDigital)
}

func kindAttr(k Kind) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("order.kind", string(k)))
}

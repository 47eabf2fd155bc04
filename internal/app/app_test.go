package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/storefront/internal/catalog"
	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
)

func replay(t *testing.T, seed *catalog.Seed, opts ...Option) ([]string, error) {
	t.Helper()
	var buf bytes.Buffer
	sf, err := New(seed, &buf, append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)...)
	require.NoError(t, err)
	err = sf.Replay(context.Background())
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n"), err
}

func parseSeed(t *testing.T, doc string) *catalog.Seed {
	t.Helper()
	seed, err := catalog.Parse([]byte(doc))
	require.NoError(t, err)
	return seed
}

func TestReplay_Demo(t *testing.T) {
	seed, err := catalog.Default()
	require.NoError(t, err)

	out, err := replay(t, seed)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Customer: Jane Doe",
		"Digital Product: Antivirus Software, Price: 50.00, In Stock: 5",
		"Physical Product: Desktop Computer, Price: 1200.00, In Stock: 10",
		"",
		"Order placed for 3 unit(s) of Desktop Computer.",
		"Discount applied. Total price: $3060.00",
		"3 unit(s) of Desktop Computer deducted from stock.",
		"Order for Jane Doe completed.",
		"Item shipped to customer.",
		"",
		"Order placed for 4 unit(s) of Antivirus Software.",
		"Discount applied. Total price: $190.00",
		"4 unit(s) of Antivirus Software deducted from stock.",
		"Order for Jane Doe completed.",
		"Download link sent to customer.",
		"",
		"Insufficient stock for Desktop Computer. Stock available: 7",
		"Failed to process another desktop order due to stock limitations.",
	}, out)

	stock := map[string]int{}
	for _, it := range seed.Products {
		stock[it.ID()] = it.Stock()
	}
	assert.Equal(t, map[string]int{"desktop": 7, "antivirus": 1}, stock)
}

func TestReplay_AlertPrecedesDeduction(t *testing.T) {
	seed := parseSeed(t, `{
		"shopper": {"first_name": "Jane", "last_name": "Doe"},
		"products": [{"id": "ebook", "name": "Ebook", "kind": "digital", "price": 5, "stock": 2}],
		"steps": [{"product": "ebook", "quantity": 2}]
	}`)

	out, err := replay(t, seed)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Order placed for 2 unit(s) of Ebook.",
		"[ALERT] Ebook is out of stock!",
		"2 unit(s) of Ebook deducted from stock.",
		"Order for Jane Doe completed.",
		"Download link sent to customer.",
	}, out[len(out)-5:])
}

func TestReplay_Errors(t *testing.T) {
	const header = `"shopper": {"first_name": "Jane"},
		"products": [{"id": "lamp", "name": "Lamp", "kind": "physical", "price": 10, "stock": 3}],
		"discounts": [{"code": "TEN", "type": "amount", "value": 10}]`

	tests := []struct {
		name  string
		steps string
		check func(t *testing.T, err error)
	}{
		{
			name:  "unknown product",
			steps: `[{"product": "desk", "quantity": 1}]`,
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, product.ErrNotFound) },
		},
		{
			name:  "unknown discount",
			steps: `[{"product": "lamp", "quantity": 1, "discount": "NOPE"}]`,
			check: func(t *testing.T, err error) { require.ErrorIs(t, err, discount.ErrUnknownCode) },
		},
		{
			name:  "zero quantity",
			steps: `[{"product": "lamp", "quantity": 0}]`,
			check: func(t *testing.T, err error) {
				var qErr *product.InvalidQuantityError
				require.True(t, errors.As(err, &qErr))
				assert.Equal(t, "lamp", qErr.ProductID)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := parseSeed(t, `{`+header+`, "steps": `+tt.steps+`}`)
			_, err := replay(t, seed)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "step 1")
			tt.check(t, err)
		})
	}
}

func TestReplay_StopsAtFirstError(t *testing.T) {
	seed := parseSeed(t, `{
		"shopper": {"first_name": "Jane"},
		"products": [{"id": "lamp", "name": "Lamp", "kind": "physical", "price": 10, "stock": 3}],
		"steps": [
			{"product": "ghost", "quantity": 1},
			{"product": "lamp", "quantity": 1}
		]
	}`)

	_, err := replay(t, seed)
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Equal(t, 3, seed.Products[0].Stock())
}

func TestReplay_Cancelled(t *testing.T) {
	seed, err := catalog.Default()
	require.NoError(t, err)

	sf, err := New(seed, &bytes.Buffer{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sf.Replay(ctx), context.Canceled)
}

func TestNew_DuplicateProducts(t *testing.T) {
	seed := parseSeed(t, `{
		"shopper": {"first_name": "Jane"},
		"products": [
			{"id": "lamp", "kind": "physical", "price": 10, "stock": 3},
			{"id": "lamp", "kind": "digital", "price": 1, "stock": 1}
		]
	}`)

	_, err := New(seed, &bytes.Buffer{})
	require.Error(t, err)
}

func TestReplay_Metrics(t *testing.T) {
	seed, err := catalog.Default()
	require.NoError(t, err)

	reader := sdkmetric.NewManualReader()
	_, err = replay(t, seed, WithOrderOptions(
		order.WithMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))),
	))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), totals["storefront.orders.placed"])
	assert.Equal(t, int64(2), totals["storefront.orders.completed"])
	assert.Equal(t, int64(1), totals["storefront.orders.rejected"])
	assert.Equal(t, int64(2), totals["storefront.discounts.applied"])
}

func TestReplay_UnknownDiscountPlacesNothing(t *testing.T) {
	seed := parseSeed(t, `{
		"shopper": {"first_name": "Jane", "last_name": "Doe"},
		"products": [{"id": "lamp", "name": "Lamp", "kind": "physical", "price": 10, "stock": 3}],
		"steps": [{"product": "lamp", "quantity": 1, "discount": "NOPE"}]
	}`)

	out, err := replay(t, seed)
	require.ErrorIs(t, err, discount.ErrUnknownCode)

	assert.Equal(t, []string{
		"Customer: Jane Doe",
		"Physical Product: Lamp, Price: 10.00, In Stock: 3",
		"",
	}, out)
	assert.Equal(t, 3, seed.Products[0].Stock())
}

func TestReplay_SeparatorsBetweenSections(t *testing.T) {
	t.Run("no steps", func(t *testing.T) {
		seed := parseSeed(t, `{
			"shopper": {"first_name": "Jane", "last_name": "Doe"},
			"products": [{"id": "lamp", "name": "Lamp", "kind": "physical", "price": 10, "stock": 3}]
		}`)

		out, err := replay(t, seed)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"Customer: Jane Doe",
			"Physical Product: Lamp, Price: 10.00, In Stock: 3",
		}, out)
	})

	t.Run("two steps", func(t *testing.T) {
		seed := parseSeed(t, `{
			"shopper": {"first_name": "Jane", "last_name": "Doe"},
			"products": [{"id": "lamp", "name": "Lamp", "kind": "physical", "price": 10, "stock": 1}],
			"steps": [
				{"product": "lamp", "quantity": 1},
				{"product": "lamp", "quantity": 1}
			]
		}`)

		out, err := replay(t, seed)
		require.NoError(t, err)

		var blanks []int
		for i, line := range out {
			if line == "" {
				blanks = append(blanks, i)
			}
		}
		assert.Equal(t, []int{2, 8}, blanks)
		assert.Equal(t, "Failed to process another lamp order due to stock limitations.", out[len(out)-1])
	})
}

// Package catalog loads the storefront seed: the shopper, the products on
// sale, the named discounts and the order steps to replay.
package catalog

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/shopper"
)

const readBufSize = 4096

// Seed is a decoded seed document.
type Seed struct {
	Shopper   *shopper.Shopper
	Products  []*product.Item
	Discounts []discount.Rule
	Steps     []Step
}

// Step is one order to place. Steps sharing a Purchase name reuse the same
// purchase. Discount is an optional rule code.
type Step struct {
	Purchase string
	Product  string
	Quantity int
	Discount string
}

// Load reads a seed file. Files ending in ".gz" are decompressed.
func Load(path string) (_ *Seed, rerr error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = errors.Wrapf(err, "close %s", path)
		}
	}()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	s, err := Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return s, nil
}

// Decode reads a seed document from r.
func Decode(r io.Reader) (*Seed, error) {
	return decodeSeed(jx.Decode(r, readBufSize))
}

// Parse decodes a seed document held in memory.
func Parse(data []byte) (*Seed, error) {
	return decodeSeed(jx.DecodeBytes(data))
}

func decodeSeed(d *jx.Decoder) (*Seed, error) {
	var s Seed
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "shopper":
			sh, err := decodeShopper(d)
			if err != nil {
				return errors.Wrap(err, "shopper")
			}
			s.Shopper = sh
		case "products":
			return d.Arr(func(d *jx.Decoder) error {
				it, err := decodeProduct(d)
				if err != nil {
					return errors.Wrapf(err, "products[%d]", len(s.Products))
				}
				s.Products = append(s.Products, it)
				return nil
			})
		case "discounts":
			return d.Arr(func(d *jx.Decoder) error {
				rule, err := decodeRule(d)
				if err != nil {
					return errors.Wrapf(err, "discounts[%d]", len(s.Discounts))
				}
				s.Discounts = append(s.Discounts, rule)
				return nil
			})
		case "steps":
			return d.Arr(func(d *jx.Decoder) error {
				step, err := decodeStep(d)
				if err != nil {
					return errors.Wrapf(err, "steps[%d]", len(s.Steps))
				}
				s.Steps = append(s.Steps, step)
				return nil
			})
		default:
			return d.Skip()
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if s.Shopper == nil {
		return nil, errors.New("shopper is required")
	}
	return &s, nil
}

func decodeShopper(d *jx.Decoder) (*shopper.Shopper, error) {
	var first, last string
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "first_name":
			first, err = d.Str()
		case "last_name":
			last, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return nil, err
	}
	if first == "" && last == "" {
		return nil, errors.New("name is required")
	}
	return shopper.New(first, last), nil
}

func decodeProduct(d *jx.Decoder) (*product.Item, error) {
	var (
		id, name, kind string
		price          decimal.Decimal
		stock          int
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			id, err = d.Str()
		case "name":
			name, err = d.Str()
		case "kind":
			kind, err = d.Str()
		case "price":
			price, err = decodeDecimal(d)
		case "stock":
			stock, err = d.Int()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	if id == "" {
		return nil, errors.New("id is required")
	}
	k, err := product.ParseKind(kind)
	if err != nil {
		return nil, errors.Wrapf(err, "product %q", id)
	}
	if price.IsNegative() {
		return nil, errors.Errorf("product %q: negative price %s", id, price)
	}
	if stock < 0 {
		return nil, errors.Errorf("product %q: negative stock %d", id, stock)
	}
	if name == "" {
		name = id
	}
	return product.New(id, name, k, price, stock), nil
}

func decodeRule(d *jx.Decoder) (discount.Rule, error) {
	var (
		rule discount.Rule
		typ  string
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			rule.Code, err = d.Str()
		case "type":
			typ, err = d.Str()
		case "value":
			rule.Discount.Value, err = decodeDecimal(d)
		case "description":
			rule.Description, err = d.Str()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	}); err != nil {
		return discount.Rule{}, err
	}

	if rule.Code == "" {
		return discount.Rule{}, errors.New("code is required")
	}
	t, err := discount.ParseType(typ)
	if err != nil {
		return discount.Rule{}, errors.Wrapf(err, "discount %q", rule.Code)
	}
	rule.Discount.Type = t
	if rule.Description == "" {
		rule.Description = rule.Discount.String()
	}
	return rule, nil
}

func decodeStep(d *jx.Decoder) (Step, error) {
	var s Step
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "purchase":
			s.Purchase, err = d.Str()
		case "product":
			s.Product, err = d.Str()
		case "quantity":
			s.Quantity, err = d.Int()
		case "discount":
			s.Discount, err = d.Str()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	}); err != nil {
		return Step{}, err
	}

	if s.Product == "" {
		return Step{}, errors.New("product is required")
	}
	if s.Purchase == "" {
		s.Purchase = s.Product
	}
	return s, nil
}

// decodeDecimal accepts both JSON numbers and numeric strings.
func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(strings.Trim(n.String(), `"`))
}

package discount

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypeAmount subtracts a fixed monetary amount from the price.
	TypeAmount Type = "amount"
	// TypePercentage subtracts a percentage (0-100 scale) of the price.
	TypePercentage Type = "percentage"
)

// ErrUnknownCode is returned when no discount rule matches a code.
var ErrUnknownCode = errors.New("unknown discount code")

var hundred = decimal.NewFromInt(100)

// ParseType converts a seed value into a Type. "fixed" is accepted as an
// alias for TypeAmount.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case string(TypeAmount), "fixed":
		return TypeAmount, nil
	case string(TypePercentage):
		return TypePercentage, nil
	default:
		return "", errors.Errorf("unsupported discount type: %q", s)
	}
}

// Discount is a price transformation: a fixed amount or a percentage off.
type Discount struct {
	Type  Type
	Value decimal.Decimal
}

// Amount returns a discount that subtracts v from the price.
func Amount(v decimal.Decimal) Discount {
	return Discount{Type: TypeAmount, Value: v}
}

// Percentage returns a discount that subtracts rate percent of the price.
func Percentage(rate decimal.Decimal) Discount {
	return Discount{Type: TypePercentage, Value: rate}
}

// Apply returns the discounted price. The result is not clamped and can be
// negative when an amount discount exceeds the price.
func (d Discount) Apply(price decimal.Decimal) (decimal.Decimal, error) {
	switch d.Type {
	case TypeAmount:
		return price.Sub(d.Value), nil
	case TypePercentage:
		return price.Sub(price.Mul(d.Value).Div(hundred)), nil
	default:
		return decimal.Decimal{}, errors.Errorf("unsupported discount type: %q", d.Type)
	}
}

func (d Discount) String() string {
	switch d.Type {
	case TypeAmount:
		return d.Value.StringFixed(2) + " off"
	case TypePercentage:
		return d.Value.String() + "% off"
	default:
		return "no discount"
	}
}

// Rule binds a discount to a code that orders can refer to.
type Rule struct {
	Code        string
	Discount    Discount
	Description string
}

// Repository provides lookup of discount rules by their code.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Rule, error)
}

package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/domain/discount"
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository on top of a map keyed
// by upper-cased code.
type DiscountRepository struct {
	mu    sync.RWMutex
	rules map[string]discount.Rule
}

// NewDiscountRepository returns a DiscountRepository holding rules.
func NewDiscountRepository(rules ...discount.Rule) (*DiscountRepository, error) {
	r := &DiscountRepository{rules: make(map[string]discount.Rule, len(rules))}
	for _, rule := range rules {
		if err := r.Add(rule); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add stores a rule. Codes are unique regardless of case.
func (r *DiscountRepository) Add(rule discount.Rule) error {
	key := normalize(rule.Code)
	if key == "" {
		return errors.New("empty discount code")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[key]; ok {
		return errors.Errorf("duplicate discount code %q", rule.Code)
	}
	r.rules[key] = rule
	return nil
}

// FindByCode looks up a rule by its code (case-insensitive).
// Returns discount.ErrUnknownCode when no rule matches.
func (r *DiscountRepository) FindByCode(_ context.Context, code string) (*discount.Rule, error) {
	r.mu.RLock()
	rule, ok := r.rules[normalize(code)]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(discount.ErrUnknownCode, "find discount %q", code)
	}
	return &rule, nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

package product

import "fmt"

// InsufficientStockError indicates a stock decrease larger than the
// available quantity.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for %s: requested %d, current stock %d",
		e.Name, e.Requested, e.Available)
}

// InvalidQuantityError indicates a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s, got %d", e.ProductID, e.Quantity)
}

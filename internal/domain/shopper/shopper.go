// Package shopper holds the customer record placed on purchases.
package shopper

import (
	"fmt"
	"io"
	"strings"
)

// Shopper is an immutable customer record.
type Shopper struct {
	firstName string
	lastName  string
}

// New returns a Shopper with the given names.
func New(firstName, lastName string) *Shopper {
	return &Shopper{firstName: firstName, lastName: lastName}
}

func (s *Shopper) FirstName() string { return s.firstName }
func (s *Shopper) LastName() string  { return s.lastName }

// FullName joins first and last name, skipping an empty one.
func (s *Shopper) FullName() string {
	return strings.TrimSpace(s.firstName + " " + s.lastName)
}

// Info returns the customer display line.
func (s *Shopper) Info() string {
	return fmt.Sprintf("Customer: %s", s.FullName())
}

// DisplayInfo writes Info to w.
func (s *Shopper) DisplayInfo(w io.Writer) error {
	_, err := fmt.Fprintln(w, s.Info())
	return err
}

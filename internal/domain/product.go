package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductConfig describes how one product is monitored
type ProductConfig struct {
	Name           string          `json:"name"`
	Competitors    []string        `json:"competitors"`
	TargetPrice    decimal.Decimal `json:"targetPrice"`
	AlertThreshold decimal.Decimal `json:"alertThreshold"` // percent deviation, reserved for alerting
}

// Catalog is the immutable set of monitored products, keyed by name.
// It is built once at startup and shared read-only.
type Catalog struct {
	products map[string]ProductConfig
	order    []string
}

// NewCatalog builds a catalog, keeping the given order for listings
func NewCatalog(products []ProductConfig) (*Catalog, error) {
	c := &Catalog{
		products: make(map[string]ProductConfig, len(products)),
		order:    make([]string, 0, len(products)),
	}

	for _, p := range products {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: product name is required", ErrInvalidCatalog)
		}
		if _, dup := c.products[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate product %q", ErrInvalidCatalog, p.Name)
		}
		if !p.TargetPrice.IsPositive() {
			return nil, fmt.Errorf("%w: target price of %q must be positive", ErrInvalidCatalog, p.Name)
		}
		if p.AlertThreshold.IsNegative() {
			return nil, fmt.Errorf("%w: alert threshold of %q must not be negative", ErrInvalidCatalog, p.Name)
		}

		p.Competitors = append([]string(nil), p.Competitors...)
		c.products[p.Name] = p
		c.order = append(c.order, p.Name)
	}

	return c, nil
}

// Get returns the configuration of a product
func (c *Catalog) Get(name string) (ProductConfig, bool) {
	p, ok := c.products[name]
	if !ok {
		return ProductConfig{}, false
	}
	p.Competitors = append([]string(nil), p.Competitors...)
	return p, true
}

// Names returns product names in catalog order
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

// Products returns copies of every product configuration in catalog order
func (c *Catalog) Products() []ProductConfig {
	out := make([]ProductConfig, 0, len(c.order))
	for _, name := range c.order {
		p, _ := c.Get(name)
		out = append(out, p)
	}
	return out
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.order)
}

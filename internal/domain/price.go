package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceAPI tags observations extracted from a completion-service answer
const SourceAPI = "API"

// PriceObservation is one price data point for one competitor and one product
type PriceObservation struct {
	Date       time.Time       `json:"date"` // capture day, midnight local time
	Competitor string          `json:"competitor"`
	Product    string          `json:"product"`
	Price      decimal.Decimal `json:"price"` // euros, never negative
	Available  bool            `json:"available"`
	Stock      string          `json:"stock"` // stock text as reported, "Inconnu" when absent
	Source     string          `json:"source"`
}

// AggregateMetrics summarises a set of observations.
// MinPrice and MeanPrice are nil when no observation is available.
type AggregateMetrics struct {
	MinPrice          *decimal.Decimal `json:"minPrice"`
	MeanPrice         *decimal.Decimal `json:"meanPrice"`
	AvailabilityRatio float64          `json:"availabilityRatio"` // 0..1
	Total             int              `json:"total"`
	Available         int              `json:"available"`
}

// HasPrices reports whether min and mean are defined
func (m AggregateMetrics) HasPrices() bool {
	return m.MinPrice != nil && m.MeanPrice != nil
}

// QueryResult is the output of one refresh cycle for one product
type QueryResult struct {
	ID           string             `json:"id"`
	Product      string             `json:"product"`
	Competitors  []string           `json:"competitors"`
	TargetPrice  decimal.Decimal    `json:"targetPrice"`
	Observations []PriceObservation `json:"observations"`
	Metrics      AggregateMetrics   `json:"metrics"`
	RawAnswer    string             `json:"rawAnswer"`
	CapturedAt   time.Time          `json:"capturedAt"`
}

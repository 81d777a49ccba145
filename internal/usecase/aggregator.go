package usecase

import (
	"github.com/pricewatch/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Aggregate computes min and mean price over available observations and the
// share of available observations. Min and mean stay nil when nothing is available.
func Aggregate(observations []domain.PriceObservation) domain.AggregateMetrics {
	metrics := domain.AggregateMetrics{Total: len(observations)}
	if metrics.Total == 0 {
		return metrics
	}

	var minPrice decimal.Decimal
	sum := decimal.Zero

	for _, obs := range observations {
		if !obs.Available {
			continue
		}
		if metrics.Available == 0 || obs.Price.LessThan(minPrice) {
			minPrice = obs.Price
		}
		sum = sum.Add(obs.Price)
		metrics.Available++
	}

	metrics.AvailabilityRatio = float64(metrics.Available) / float64(metrics.Total)

	if metrics.Available > 0 {
		mean := sum.Div(decimal.NewFromInt(int64(metrics.Available)))
		metrics.MinPrice = &minPrice
		metrics.MeanPrice = &mean
	}

	return metrics
}

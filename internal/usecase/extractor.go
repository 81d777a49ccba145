package usecase

import (
	"strings"
	"time"

	"github.com/pricewatch/backend/internal/domain"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Extract parses every line of an answer body, stamping observations with
// product and today's date
func Extract(rawText, product string) []domain.PriceObservation {
	return ExtractAt(rawText, product, time.Now())
}

// ExtractAt is Extract with an explicit capture time.
// Lines that do not describe a price are skipped; the result keeps line order
// and is never nil.
func ExtractAt(rawText, product string, capturedOn time.Time) []domain.PriceObservation {
	observations := make([]domain.PriceObservation, 0)
	if rawText == "" {
		return observations
	}

	for _, line := range strings.Split(lineBreaks.Replace(rawText), "\n") {
		obs, ok := ParseLine(line, capturedOn)
		if !ok {
			continue
		}
		obs.Product = product
		observations = append(observations, obs)
	}

	return observations
}

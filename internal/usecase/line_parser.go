package usecase

import (
	"strings"
	"time"

	"github.com/pricewatch/backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Field markers of an answer line:
//
//	Site: <name> | Prix: <number>[.,]<number>[€] | Stock: <text>
const (
	siteMarker     = "Site:"
	priceMarker    = "Prix:"
	stockMarker    = "Stock:"
	fieldSeparator = "|"
)

// unknownStock is the stock text used when a line carries no stock field
const unknownStock = "Inconnu"

// availabilityTokens mark a stock text as available when contained in it (case-insensitive).
// "stock" also matches "rupture de stock"; that is the current behavior.
var availabilityTokens = []string{"disponible", "stock"}

// ParseLine converts one answer line into a price observation.
// It returns false when the line does not describe a price.
func ParseLine(line string, capturedOn time.Time) (domain.PriceObservation, bool) {
	if !hasMarkers(line) {
		return domain.PriceObservation{}, false
	}

	site, _ := fieldAfter(line, siteMarker)

	priceField, _ := fieldAfter(line, priceMarker)
	price, ok := parseDecimal(priceField)
	if !ok {
		return domain.PriceObservation{}, false
	}

	stock, ok := fieldAfter(line, stockMarker)
	if !ok || stock == "" {
		stock = unknownStock
	}

	return domain.PriceObservation{
		Date:       captureDay(capturedOn),
		Competitor: site,
		Price:      price,
		Available:  isAvailable(stock),
		Stock:      stock,
		Source:     domain.SourceAPI,
	}, true
}

// hasMarkers is the cheap pre-filter: a candidate line names both a site and a price
func hasMarkers(line string) bool {
	return strings.Contains(line, siteMarker) && strings.Contains(line, priceMarker)
}

// fieldAfter returns the trimmed text between the first occurrence of marker
// and the next field separator (or end of line)
func fieldAfter(line, marker string) (string, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return "", false
	}

	rest := line[idx+len(marker):]
	if end := strings.Index(rest, fieldSeparator); end >= 0 {
		rest = rest[:end]
	}

	return strings.TrimSpace(rest), true
}

// parseDecimal reads the first number of s, which must have an integer part,
// a '.' or ',' separator and a fractional part. The separator is normalized to '.'.
func parseDecimal(s string) (decimal.Decimal, bool) {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return decimal.Decimal{}, false
	}

	intEnd := scanDigits(s, start)
	if intEnd >= len(s) || (s[intEnd] != '.' && s[intEnd] != ',') {
		return decimal.Decimal{}, false
	}

	fracEnd := scanDigits(s, intEnd+1)
	if fracEnd == intEnd+1 {
		return decimal.Decimal{}, false
	}

	value, err := decimal.NewFromString(s[start:intEnd] + "." + s[intEnd+1:fracEnd])
	if err != nil {
		return decimal.Decimal{}, false
	}
	return value, true
}

// scanDigits returns the index of the first non-digit byte at or after i
func scanDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isAvailable classifies a stock text
func isAvailable(stock string) bool {
	lower := strings.ToLower(stock)
	for _, token := range availabilityTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

// captureDay drops the time-of-day component
func captureDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

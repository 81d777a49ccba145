package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pricewatch/backend/internal/domain"
	"github.com/shopspring/decimal"
)

const noData = "no data"

// renderResult prints the observation table followed by the aggregate metrics
func renderResult(out io.Writer, result *domain.QueryResult, raw bool) error {
	fmt.Fprintf(out, "📊 %s\n", result.Product)

	if len(result.Observations) == 0 {
		fmt.Fprintln(out, "❌ No data retrieved - the answer contained no price line")
	} else {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "Concurrent\tPrix (€)\tStock\t")
		for _, obs := range result.Observations {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", obs.Competitor, obs.Price.StringFixed(2), stockMark(obs.Available), obs.Stock)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	m := result.Metrics
	fmt.Fprintf(out, "💸 Prix minimum: %s\n", euros(m.MinPrice))
	fmt.Fprintf(out, "📊 Prix moyen:   %s\n", euros(m.MeanPrice))
	fmt.Fprintf(out, "📦 Disponibilité: %.0f%% (%d/%d)\n", m.AvailabilityRatio*100, m.Available, m.Total)

	if raw {
		fmt.Fprintf(out, "\n📄 Réponse brute:\n%s\n", result.RawAnswer)
	}
	fmt.Fprintln(out)
	return nil
}

func stockMark(available bool) string {
	if available {
		return "✅"
	}
	return "❌"
}

func euros(d *decimal.Decimal) string {
	if d == nil {
		return noData
	}
	return d.StringFixed(2) + "€"
}

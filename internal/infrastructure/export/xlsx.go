// Package export renders price check results as spreadsheets.
package export

import (
	"fmt"
	"io"

	"github.com/pricewatch/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the workbook
const (
	PricesSheet  = "Prix"
	SummarySheet = "Synthèse"
)

// ContentType is the MIME type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	pricesHeader  = []interface{}{"Produit", "Concurrent", "Prix (€)", "Stock", "Disponible", "Date"}
	summaryHeader = []interface{}{"Produit", "Prix cible (€)", "Prix minimum (€)", "Prix moyen (€)", "Disponibilité (%)", "Relevés", "Capturé le"}
)

// noData marks undefined aggregate values
const noData = "n/d"

// WriteWorkbook writes one workbook holding every observation of results on
// the prices sheet and one summary row per result
func WriteWorkbook(w io.Writer, results ...*domain.QueryResult) error {
	f, err := buildWorkbook(results)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the workbook to path
func SaveWorkbook(path string, results ...*domain.QueryResult) error {
	f, err := buildWorkbook(results)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func buildWorkbook(results []*domain.QueryResult) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", PricesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	if err := writePrices(f, results); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, results); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writePrices(f *excelize.File, results []*domain.QueryResult) error {
	if err := setRow(f, PricesSheet, 1, pricesHeader); err != nil {
		return err
	}

	row := 2
	for _, result := range results {
		if result == nil {
			continue
		}
		for _, obs := range result.Observations {
			values := []interface{}{
				obs.Product,
				obs.Competitor,
				obs.Price.InexactFloat64(),
				obs.Stock,
				availabilityMark(obs.Available),
				obs.Date.Format("2006-01-02"),
			}
			if err := setRow(f, PricesSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeSummary(f *excelize.File, results []*domain.QueryResult) error {
	if err := setRow(f, SummarySheet, 1, summaryHeader); err != nil {
		return err
	}

	row := 2
	for _, result := range results {
		if result == nil {
			continue
		}
		m := result.Metrics

		var minPrice, meanPrice interface{} = noData, noData
		if m.HasPrices() {
			minPrice = m.MinPrice.Round(2).InexactFloat64()
			meanPrice = m.MeanPrice.Round(2).InexactFloat64()
		}

		values := []interface{}{
			result.Product,
			result.TargetPrice.InexactFloat64(),
			minPrice,
			meanPrice,
			m.AvailabilityRatio * 100,
			m.Total,
			result.CapturedAt.Format("2006-01-02 15:04:05"),
		}
		if err := setRow(f, SummarySheet, row, values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func availabilityMark(available bool) string {
	if available {
		return "Oui"
	}
	return "Non"
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pricewatch/backend/internal/domain"
	"github.com/pricewatch/backend/internal/infrastructure/export"
	"github.com/pricewatch/backend/internal/usecase"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [product]",
	Short: "Run a price check for one product or the whole catalog",
	Example: `  pricewatch check "Xiaomi Smart Projector L1 PRO Full HD Noir"
  pricewatch check --all --xlsx prix.xlsx`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		raw, _ := cmd.Flags().GetBool("raw")

		if all == (len(args) == 1) {
			return errors.New("provide a product name or --all")
		}

		monitor, closeCache, err := newMonitor(cfg)
		if err != nil {
			return err
		}
		defer closeCache()

		var results []*domain.QueryResult
		if all {
			results, err = monitor.CheckAll(cmd.Context())
		} else {
			var result *domain.QueryResult
			result, err = monitor.CheckPrices(cmd.Context(), args[0])
			results = append(results, result)
		}
		if err != nil {
			if errors.Is(err, domain.ErrNotConfigured) {
				return fmt.Errorf("%w: set PERPLEXITY_API_KEY or perplexity.api_key", err)
			}
			return err
		}

		return report(cmd.OutOrStdout(), results, xlsxPath, raw)
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Extract prices from a saved answer without calling the API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		raw, _ := cmd.Flags().GetBool("raw")

		catalog, err := cfg.BuildCatalog()
		if err != nil {
			return err
		}
		flagProduct, _ := cmd.Flags().GetString("product")
		productName, err := resolveProduct(catalog, flagProduct)
		if err != nil {
			return err
		}

		answer, err := readAnswer(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}

		result := &domain.QueryResult{
			Product:    productName,
			RawAnswer:  answer,
			CapturedAt: time.Now(),
		}
		if product, ok := catalog.Get(productName); ok {
			result.Competitors = product.Competitors
			result.TargetPrice = product.TargetPrice
		}
		result.Observations = usecase.ExtractAt(answer, productName, result.CapturedAt)
		result.Metrics = usecase.Aggregate(result.Observations)

		return report(cmd.OutOrStdout(), []*domain.QueryResult{result}, xlsxPath, raw)
	},
}

func init() {
	checkCmd.Flags().Bool("all", false, "check every catalog product")
	checkCmd.Flags().String("xlsx", "", "also write the results to this xlsx file")
	checkCmd.Flags().Bool("raw", false, "print the raw completion answer")

	parseCmd.Flags().String("product", "", "product name stamped on the observations (defaults to the only catalog product)")
	parseCmd.Flags().String("xlsx", "", "also write the result to this xlsx file")
	parseCmd.Flags().Bool("raw", false, "print the input answer")
}

// resolveProduct picks the product stamped on parsed observations.
// An empty name falls back to the catalog's only product.
func resolveProduct(catalog *domain.Catalog, name string) (string, error) {
	if name = strings.TrimSpace(name); name != "" {
		return name, nil
	}
	if names := catalog.Names(); len(names) == 1 {
		return names[0], nil
	}
	return "", fmt.Errorf("--product is required when the catalog has %d products", catalog.Len())
}

// report prints every result and optionally saves them as a workbook
func report(out io.Writer, results []*domain.QueryResult, xlsxPath string, raw bool) error {
	for _, result := range results {
		if err := renderResult(out, result, raw); err != nil {
			return err
		}
	}

	if xlsxPath != "" {
		if err := export.SaveWorkbook(xlsxPath, results...); err != nil {
			return err
		}
		fmt.Fprintf(out, "💾 Saved %s\n", xlsxPath)
	}
	return nil
}

// readAnswer reads a saved answer from a file, or stdin for "-"
func readAnswer(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return string(data), nil
}

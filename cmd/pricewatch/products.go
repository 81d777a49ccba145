package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the monitored catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := cfg.BuildCatalog()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tTARGET (€)\tALERT (%)\tCOMPETITORS")
		for _, p := range catalog.Products() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.TargetPrice.StringFixed(2), p.AlertThreshold.String(), strings.Join(p.Competitors, ", "))
		}
		return w.Flush()
	},
}

// Command pricewatch monitors competitor prices through a completion API.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pricewatch/backend/config"
	"github.com/spf13/cobra"
)

// Build-time variables (set via -ldflags).
var (
	version = "1.0.0"
	commit  = "unknown"
)

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pricewatch",
	Short: "Competitor price monitoring",
	Long: `pricewatch asks a completion API for the current prices of catalog
products, extracts one observation per competitor line and reports
minimum price, mean price and availability.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Version must work without a valid config
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pricewatch %s (commit %s)\n", version, commit)
	},
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)

	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(parseCmd)
}

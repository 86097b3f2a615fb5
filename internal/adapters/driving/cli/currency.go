package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	currencyAmount float64
	currencyJSON   bool
)

var currencyCmd = &cobra.Command{
	Use:   "currency [base] [target]",
	Short: "Show an exchange rate",
	Long: `Shows how much one unit of base currency buys in target currency.

Rates come from Frankfurter, then ExchangeRate-API. When both fail, a
small built-in table covers common pairs and the rate is marked fallback.`,
	Args: cobra.ExactArgs(2),
	RunE: runCurrency,
}

func init() {
	currencyCmd.Flags().Float64VarP(&currencyAmount, "amount", "a", 1, "amount of base currency to convert")
	currencyCmd.Flags().BoolVar(&currencyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(currencyCmd)
}

func runCurrency(cmd *cobra.Command, args []string) error {
	if currencyService == nil {
		return errors.New("currency service not configured")
	}

	rate, err := currencyService.Rate(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("rate lookup failed: %w", err)
	}

	if currencyJSON {
		return printJSON(cmd, rate)
	}

	cmd.Printf("%g %s = %.4f %s\n", currencyAmount, rate.Base, currencyAmount*rate.Rate, rate.Target)
	cmd.Printf("  Rate:   %g\n", rate.Rate)
	cmd.Printf("  Source: %s (%s)\n", rate.Source, rate.Freshness)
	if rate.IsFallback() {
		cmd.Println("  Note:   upstreams unavailable, using the built-in rate table")
	}
	return nil
}

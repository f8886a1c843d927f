package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"swapPool/internal/pricing"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	amountIn, _ := cmd.Flags().GetUint64("amount-in")
	reserveIn, _ := cmd.Flags().GetUint64("reserve-in")
	reserveOut, _ := cmd.Flags().GetUint64("reserve-out")

	if amountIn == 0 {
		return fmt.Errorf("amount-in must be greater than zero")
	}
	if reserveIn == 0 || reserveOut == 0 {
		return fmt.Errorf("reserves must be greater than zero")
	}

	out, err := pricing.Quote(amountIn, reserveIn, reserveOut)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "amount_out=%d\n", out)
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/banachtech/binotree/data"
)

func newEstimateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "estimate [closes.csv]",
		Short: "Estimate annualised drift and volatility from closing prices",
		Long: `Estimate annualised drift and volatility from a series of closing
prices, read from the named CSV file or from standard input. The output
can be passed straight to the price and simulate commands.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			closes, err := data.ReadCloses(in)
			if err != nil {
				return err
			}
			s, err := data.Estimate(closes, cfg.Lattice.Scale)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "--drift %.6f --vol %.6f --spot %g\n", s.Drift, s.Vol, s.Fixing)
			return nil
		},
	}
}

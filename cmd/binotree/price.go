package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/banachtech/binotree/mc"
	"github.com/banachtech/binotree/paths"
	"github.com/banachtech/binotree/pricer"
)

func newPriceCmd() *cobra.Command {
	var (
		f        scenarioFlags
		moves    []int
		endpoint string
		seed     uint64
	)
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price one scenario and decompose its envelope along a path",
		Long: `Price one scenario and decompose its Snell envelope along a path.

The path is given by --moves (+1 up, -1 down), by --endpoint (a terminal
node id such as 126_-20), or drawn uniformly at random from --seed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := f.scenario(cfg.Lattice.Scale)
			if err != nil {
				return err
			}
			v, err := pricer.New(nil).Build(s)
			if err != nil {
				return err
			}

			var r *pricer.Report
			switch {
			case len(moves) > 0:
				p, err := paths.FromMoves(moves)
				if err != nil {
					return err
				}
				r, err = v.Along(p)
				if err != nil {
					return err
				}
			case endpoint != "":
				row, col, err := paths.ParseNodeID(endpoint)
				if err != nil {
					return err
				}
				r, err = v.AlongEndpoint(row, col)
				if err != nil {
					return err
				}
			default:
				p, err := mc.RandomPath(s.Lattice.Periods, seed)
				if err != nil {
					return err
				}
				r, err = v.Along(p)
				if err != nil {
					return err
				}
			}
			return printReport(cmd, v, r)
		},
	}
	f.register(cmd)
	cmd.Flags().IntSliceVar(&moves, "moves", nil, "Path as a list of +1/-1 moves")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Terminal node id of the path")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed of the random path")
	return cmd
}

func printReport(cmd *cobra.Command, v *pricer.Valuation, r *pricer.Report) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "contract: %s\n", v.Scenario.Contract)
	fmt.Fprintf(out, "value:    %.6f\n", v.Value())
	fmt.Fprintf(out, "tau max:  %d\n", r.Stopping.TauMax)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "t\tnode\tprice\tpayoff\tenvelope\tmartingale\texcess\t")
	d := r.Decomposition
	for t := range d.Envelope {
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.6f\t\n",
			t, paths.NodeID(r.Path.Rows[t], r.Path.Cols[t]),
			r.Prices[t], r.Payoff[t], d.Envelope[t], d.Martingale[t], d.Excess[t])
	}
	return w.Flush()
}

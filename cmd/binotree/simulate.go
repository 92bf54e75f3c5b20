package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/banachtech/binotree/lattice"
	"github.com/banachtech/binotree/mc"
	"github.com/banachtech/binotree/pricer"
)

func newSimulateCmd() *cobra.Command {
	var (
		f        scenarioFlags
		samples  int
		seed     uint64
		progress bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Cross-check the lattice price of a European payoff by Monte Carlo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("samples") {
				samples = cfg.MC.Samples
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.MC.Seed
			}
			f.style = "european"
			s, err := f.scenario(cfg.Lattice.Scale)
			if err != nil {
				return err
			}
			s.Barrier = nil

			v, err := pricer.New(nil).Build(s)
			if err != nil {
				return err
			}
			mcfg := mc.Config{Samples: samples, Seed: seed}
			if progress {
				bar := progressBar(samples, cmd)
				defer bar.Close()
				mcfg.OnSample = func() { _ = bar.Add(1) }
			}
			r, err := mc.Estimate(cmd.Context(), v.Model.(*lattice.Lattice), s.Contract, mcfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "contract: %s\n", s.Contract)
			fmt.Fprintf(out, "lattice:  %.6f\n", v.Value())
			fmt.Fprintf(out, "mc:       %.6f ± %.6f (%d samples)\n", r.Mean, r.StdErr, r.Samples)
			fmt.Fprintf(out, "z-score:  %.2f\n", (r.Mean-v.Value())/r.StdErr)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&samples, "samples", 10000, "Number of Monte Carlo samples")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Seed of the first sample")
	cmd.Flags().BoolVar(&progress, "progress", true, "Show a progress bar")
	return cmd
}

func progressBar(length int, cmd *cobra.Command) *progressbar.ProgressBar {
	return progressbar.NewOptions(
		length,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription("sampling"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/vesselpower/app"
	"github.com/kilianp07/vesselpower/core/vessel"
	"github.com/kilianp07/vesselpower/infra/logger"
	"github.com/kilianp07/vesselpower/simulator"
)

var (
	simLoadout string
	simTicks   int
	simOut     string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a loadout offline and write a per-tick CSV",
	RunE:  simulate,
}

func init() {
	simulateCmd.Flags().StringVarP(&simLoadout, "loadout", "l", "", "loadout file (yaml or json)")
	simulateCmd.Flags().IntVarP(&simTicks, "ticks", "n", 0, "number of ticks (overrides simulation.ticks)")
	simulateCmd.Flags().StringVarP(&simOut, "out", "o", "", "output directory (overrides simulation.output_dir)")
	rootCmd.AddCommand(simulateCmd)
}

func simulate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sim := cfg.Simulation
	if simLoadout != "" {
		sim.Loadout = simLoadout
	}
	if simTicks > 0 {
		sim.Ticks = simTicks
	}
	if simOut != "" {
		sim.OutputDir = simOut
	}
	if sim.Loadout == "" {
		return fmt.Errorf("no loadout: set --loadout or simulation.loadout")
	}

	l, err := simulator.LoadLoadout(sim.Loadout)
	if err != nil {
		return fmt.Errorf("load loadout: %w", err)
	}
	if l.Environment.DayLength <= 0 {
		l.Environment.DayLength = sim.DayLength
	}

	logg := logger.New("simulate")
	h := simulator.NewHost(l, app.BaseSpeeds(cfg))
	notices := h.Notices()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := range notices {
			logg.Infof("notice %s: %s", n.Kind, n.Message)
		}
	}()

	v, err := app.BuildVessel(cfg, h, vessel.Options{Log: logg})
	if err != nil {
		h.Close()
		<-done
		return err
	}
	records, runErr := simulator.New(v, h, l, logg).Run(ctx, simulator.Options{
		Ticks:        sim.Ticks,
		DrainPerTick: sim.DrainPerTick,
	})
	h.Close()
	<-done
	if runErr != nil {
		logg.Warnf("simulation stopped after %d ticks: %v", len(records), runErr)
	}

	path, err := simulator.WriteCSVFile(sim.OutputDir, records)
	if err != nil {
		return err
	}
	s := simulator.Summarize(records)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ticks:              %d\n", s.Ticks)
	fmt.Fprintf(out, "energy mean/std:    %.2f / %.2f\n", s.MeanEnergy, s.StdEnergy)
	fmt.Fprintf(out, "energy min/final:   %.2f / %.2f\n", s.MinEnergy, s.FinalEnergy)
	fmt.Fprintf(out, "produced/stored:    %.2f / %.2f\n", s.TotalProduced, s.TotalStored)
	fmt.Fprintf(out, "non-renewable ticks: %d\n", s.NonRenewableTicks)
	fmt.Fprintf(out, "csv:                %s\n", path)
	return nil
}

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/san-kum/netevo/internal/analysis"
	"github.com/san-kum/netevo/internal/evolve"
	"github.com/san-kum/netevo/internal/optim"
	"github.com/san-kum/netevo/internal/storage"
)

func runBifurcation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if bifRange == "" {
		return fmt.Errorf("no parameter range given (use --range index=start:stop:step)")
	}
	idx, values, err := optim.ParseRange(bifRange)
	if err != nil {
		return err
	}
	sys, err := cfg.BuildSystem()
	if err != nil {
		return err
	}
	simulator, err := cfg.BuildSimulator()
	if err != nil {
		return err
	}

	dynamic := cfg.Graph.NodeDynamic
	set := func(p float64) { optim.Apply(sys, dynamic, map[int]float64{idx: p}) }
	if optim.Apply(sys, dynamic, map[int]float64{idx: values[0]}) == 0 {
		return fmt.Errorf("no %s nodes to update", dynamic)
	}
	x0 := evolve.RandomInitialStates{Count: 1, Scale: cfg.Evolution.InitialStates.Scale}.States(sys)[0]

	fmt.Printf("sweeping p%d of %s over %d values...\n", idx, dynamic, len(values))
	data, err := analysis.Bifurcation(sys, simulator, x0, plotState, values, set, transient, record)
	if err != nil {
		return err
	}
	points := analysis.BifurcationScatter(data)
	fmt.Printf("x%d vs p%d (%s points)\n", plotState, idx, humanize.Comma(int64(len(points))))
	fmt.Print(analysis.Scatter(points, plotWidth, plotHeight))
	return nil
}

func plotPhase(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	var points []analysis.Point
	caption := fmt.Sprintf("x%d vs x%d", phaseY, phaseX)
	if poincare >= 0 {
		points, err = analysis.PoincareSection(traj, poincare, level, phaseX, phaseY)
		caption = fmt.Sprintf("%s where x%d crosses %g", caption, poincare, level)
	} else {
		points, err = analysis.PhasePortrait(traj, phaseX, phaseY)
	}
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("%s (%s points)\n", caption, humanize.Comma(int64(len(points))))
	if len(points) == 0 {
		fmt.Println("no crossings detected")
		return nil
	}
	fmt.Print(analysis.Scatter(points, plotWidth, plotHeight))
	return nil
}

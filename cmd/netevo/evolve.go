package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/evolve"
	"github.com/san-kum/netevo/internal/gml"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/storage"
	"github.com/san-kum/netevo/internal/tui"
)

func runEvolution(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sys, err := cfg.BuildSystem()
	if err != nil {
		return err
	}
	perf, err := cfg.BuildPerformance()
	if err != nil {
		return err
	}
	mut, err := cfg.BuildMutator()
	if err != nil {
		return err
	}
	simulator, err := cfg.BuildSimulator()
	if err != nil {
		return err
	}
	annealer := evolve.NewAnnealer(cfg.Params(), perf, mut)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	history := storage.NewHistory(historyPath())
	if err := history.Init(ctx); err != nil {
		return err
	}
	defer history.Close()

	var log changelog.ChangeLog
	if changesFile != "" {
		f, err := os.Create(changesFile)
		if err != nil {
			return err
		}
		defer f.Close()
		log = changelog.NewStream(f)
	}

	runID := storage.NewRunID("evolve")
	recorder := history.Recorder(ctx, runID)
	run := func(ctx context.Context, obs evolve.Observer) (*evolve.Result, error) {
		return annealer.Evolve(ctx, sys, simulator, cfg.BuildInitialStates(), fanOut(recorder, obs), log)
	}

	fmt.Printf("evolving %d nodes, %d arcs (%s)...\n", sys.CountNodes(), sys.CountArcs(), perf.Type())
	start := time.Now()
	var res *evolve.Result
	if live {
		res, err = tui.Run(ctx, "netevo "+cfg.Evolution.Performance, run)
	} else {
		res, err = run(ctx, evolve.ObserverFunc(func(s *network.System, score float64, iteration int) {
			logrus.Infof("iteration %d: score %.6g (%d nodes, %d arcs)", iteration, score, s.CountNodes(), s.CountArcs())
		}))
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if res == nil {
		return err
	}
	if err != nil {
		fmt.Println("interrupted, keeping the best graph so far")
	}
	elapsed := time.Since(start)

	if err := gml.SaveFile(outFile, res.System); err != nil {
		return err
	}
	meta := storage.RunMetadata{
		ID:      runID,
		Kind:    "evolve",
		Seed:    cfg.Seed,
		Method:  cfg.Simulation.Method,
		Stepper: cfg.Simulation.Stepper,
		TMax:    cfg.Evolution.SimTMax,
		Nodes:   res.System.CountNodes(),
		Arcs:    res.System.CountArcs(),
		Metrics: map[string]float64{
			"score":         res.Score,
			"initial_score": res.InitialScore,
			"iterations":    float64(res.Iterations),
			"accepted":      float64(res.Accepted),
			"temperature":   res.Temperature,
		},
	}
	if _, err := st.Save(meta, nil); err != nil {
		return err
	}
	if err := st.SaveGraph(runID, res.System); err != nil {
		return err
	}

	fmt.Printf("completed in %s\n", elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("score: %.6g -> %.6g\n", res.InitialScore, res.Score)
	fmt.Printf("iterations: %s (%s accepted)\n", humanize.Comma(int64(res.Iterations)), humanize.Comma(int64(res.Accepted)))
	fmt.Printf("graph: %d nodes, %d arcs -> %s\n", res.System.CountNodes(), res.System.CountArcs(), outFile)
	return nil
}

// fanOut reports every incumbent to each observer in turn.
func fanOut(observers ...evolve.Observer) evolve.Observer {
	return evolve.ObserverFunc(func(sys *network.System, score float64, iteration int) {
		for _, o := range observers {
			o.Observe(sys, score, iteration)
		}
	})
}

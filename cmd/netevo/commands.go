package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/netevo/internal/analysis"
	"github.com/san-kum/netevo/internal/changelog"
	"github.com/san-kum/netevo/internal/evolve"
	"github.com/san-kum/netevo/internal/export"
	"github.com/san-kum/netevo/internal/gml"
	"github.com/san-kum/netevo/internal/metrics"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/optim"
	"github.com/san-kum/netevo/internal/physics"
	"github.com/san-kum/netevo/internal/sim"
	"github.com/san-kum/netevo/internal/storage"
)

func generateGraph(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sys, err := cfg.BuildSystem()
	if err != nil {
		return err
	}
	if err := gml.SaveFile(args[0], sys); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d nodes, %d arcs\n", args[0], sys.CountNodes(), sys.CountArcs())
	return nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
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

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	var log changelog.ChangeLog
	if changesFile != "" {
		f, err := os.Create(changesFile)
		if err != nil {
			return err
		}
		defer f.Close()
		log = changelog.NewStream(f)
	}

	scale := cfg.Evolution.InitialStates.Scale
	initial := evolve.RandomInitialStates{Count: 1, Scale: scale}.States(sys)[0]
	x0 := initial.Clone()
	traj := &sim.Trajectory{}
	ms := metrics.Defaults(sys)

	fmt.Printf("simulating %d nodes, %d arcs (%s)...\n", sys.CountNodes(), sys.CountArcs(), cfg.Simulation.Method)
	start := time.Now()
	if err := simulator.Simulate(sys, cfg.Simulation.TMax, initial, metrics.Observer(traj, ms...), log); err != nil {
		return err
	}
	elapsed := time.Since(start)

	values := metrics.Values(ms)
	if freq, err := analysis.DominantFrequency(traj, plotState); err == nil {
		values["dominant_frequency"] = freq
	} else {
		logrus.Debugf("no dominant frequency for x%d: %v", plotState, err)
	}
	if lyapunov {
		lambda, err := analysis.LyapunovExponent(sys, simulator, x0, cfg.Simulation.TMax, 1e-8)
		if err != nil {
			return err
		}
		if !math.IsInf(lambda, 0) {
			values["lyapunov"] = lambda
		}
	}

	meta := storage.RunMetadata{
		Kind:    "simulate",
		Seed:    cfg.Seed,
		Method:  cfg.Simulation.Method,
		Stepper: cfg.Simulation.Stepper,
		TMax:    cfg.Simulation.TMax,
		Nodes:   sys.CountNodes(),
		Arcs:    sys.CountArcs(),
		Metrics: values,
	}
	runID, err := st.Save(meta, traj)
	if err != nil {
		return err
	}
	if err := st.SaveGraph(runID, sys); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %s\n", humanize.Comma(int64(traj.Len())))
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, values[name])
	}

	if plot {
		return plotTrajectory(traj, plotState)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	simulator, err := cfg.BuildSimulator()
	if err != nil {
		return err
	}
	ranges := make(map[int][]float64, len(sweepRanges))
	for _, r := range sweepRanges {
		idx, vals, err := optim.ParseRange(r)
		if err != nil {
			return err
		}
		ranges[idx] = vals
	}
	grid := optim.NewGridSearch(ranges)
	if grid.Size() == 0 {
		return fmt.Errorf("no parameter ranges given (use --range index=v1,v2,...)")
	}

	run := func(ctx context.Context, params map[int]float64) (map[string]float64, error) {
		sys, err := cfg.BuildSystem()
		if err != nil {
			return nil, err
		}
		if optim.Apply(sys, cfg.Graph.NodeDynamic, params) == 0 {
			return nil, fmt.Errorf("no %s nodes to update", cfg.Graph.NodeDynamic)
		}
		scale := cfg.Evolution.InitialStates.Scale
		initial := evolve.RandomInitialStates{Count: 1, Scale: scale}.States(sys)[0]
		ms := metrics.Defaults(sys)
		if err := simulator.Simulate(sys, cfg.Simulation.TMax, initial, metrics.Observer(nil, ms...), nil); err != nil {
			return nil, err
		}
		return metrics.Values(ms), nil
	}

	fmt.Printf("sweeping %d points of %s by %s...\n", grid.Size(), cfg.Graph.NodeDynamic, sweepMetric)
	best, all, err := grid.Search(cmd.Context(), run, sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PARAMS\t%s\n", strings.ToUpper(sweepMetric))
	for _, p := range all {
		fmt.Fprintf(w, "%s\t%.6g\n", formatParams(p.Params), p.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nbest: %s (%s = %.6g)\n", formatParams(best.Params), sweepMetric, best.Value)
	return nil
}

func formatParams(params map[int]float64) string {
	keys := make([]int, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("p%d=%g", k, params[k])
	}
	return strings.Join(parts, " ")
}

func plotTrajectory(traj *sim.Trajectory, idx int) error {
	if traj.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}
	if idx < 0 || idx >= len(traj.States[0]) {
		return fmt.Errorf("state %d out of range (have %d)", idx, len(traj.States[0]))
	}
	data := make([]float64, traj.Len())
	for i, x := range traj.States {
		data[i] = x[idx]
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("x%d vs time", idx)),
	)
	fmt.Println(graph)
	return nil
}

func printSpectrum(cmd *cobra.Command, args []string) error {
	kind, err := network.ParseMatrixKind(matrixKind)
	if err != nil {
		return err
	}
	sys := network.New()
	physics.Register(sys)
	if err := gml.LoadFile(args[0], sys); err != nil {
		return err
	}
	values, err := sys.Eigenvalues(kind)
	if err != nil {
		return err
	}
	sort.Slice(values, func(i, j int) bool { return real(values[i]) > real(values[j]) })

	fmt.Printf("%s spectrum of %s (%d nodes, %d components)\n",
		kind, args[0], sys.CountNodes(), sys.WeaklyConnectedComponents())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tREAL\tIMAG")
	for i, v := range values {
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\n", i, real(v), imag(v))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if kind == network.Laplacian {
		score := evolve.Eigenratio{}.Score(sys, nil)
		if score < evolve.PoorScore {
			fmt.Printf("eigenratio: %.6f\n", score)
		} else {
			fmt.Println("eigenratio: undefined")
		}
	}
	return nil
}

func drawGraph(cmd *cobra.Command, args []string) error {
	sys := network.New()
	physics.Register(sys)
	if err := gml.LoadFile(args[0], sys); err != nil {
		return err
	}
	svg := export.GraphToSVG(sys, svgWidth, svgHeight)
	if err := os.WriteFile(args[1], []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d nodes, %d arcs\n", args[1], sys.CountNodes(), sys.CountArcs())
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTIME\tMETHOD\tNODES\tARCS\tSAMPLES\tSCORE")

	for _, run := range runs {
		score := "-"
		if q, ok := run.Metrics["score"]; ok {
			score = fmt.Sprintf("%.6g", q)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.Kind,
			humanize.Time(run.Timestamp),
			run.Method,
			run.Nodes,
			run.Arcs,
			humanize.Comma(int64(run.Samples)),
			score,
		)
	}

	return w.Flush()
}

func plotHistory(cmd *cobra.Command, args []string) error {
	runID := args[0]

	h := storage.NewHistory(historyPath())
	if err := h.Init(cmd.Context()); err != nil {
		return err
	}
	defer h.Close()

	points, err := h.Scores(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return fmt.Errorf("no history for %s", runID)
	}

	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = p.Score
	}
	last := points[len(points)-1]

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("improvements: %d\n", len(points))
	fmt.Printf("final: %.6g at iteration %s (%d nodes, %d arcs)\n\n",
		last.Score, humanize.Comma(int64(last.Iteration)), last.Nodes, last.Arcs)
	fmt.Println(asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("incumbent score"),
	))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
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

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("method: %s\n", meta.Method)
	fmt.Printf("samples: %d\n\n", traj.Len())
	if svgFile != "" {
		svg := export.TrajectoryToSVG(traj, plotState, svgWidth, svgHeight, "#00ff00")
		if svg == "" {
			return fmt.Errorf("nothing to draw for x%d", plotState)
		}
		return os.WriteFile(svgFile, []byte(svg), 0644)
	}
	return plotTrajectory(traj, plotState)
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadStates(runID)
	if err != nil {
		logrus.Debugf("export %s without states: %v", runID, err)
		traj = nil
	}
	return storage.ExportJSON(os.Stdout, *meta, traj)
}

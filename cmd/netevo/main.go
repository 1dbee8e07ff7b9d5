package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/netevo/internal/config"
)

var (
	dataDir     string
	logLevel    string
	metricsAddr string
	configFile  string
	preset      string
	seed        int64

	// graph overrides
	graphKind   string
	nodes       int
	neighbours  int
	edgeProb    float64
	nodeDynamic string
	arcDynamic  string
	undirected  bool
	graphFile   string

	// simulation overrides
	method  string
	stepper string
	tMax    float64
	step    float64

	changesFile string
	plotState   int
	plot        bool
	lyapunov    bool

	// evolution
	outFile    string
	live       bool
	iterations int

	matrixKind string

	svgFile   string
	svgWidth  int
	svgHeight int

	sweepRanges []string
	sweepMetric string

	// bifurcation and phase plots
	bifRange   string
	transient  float64
	record     float64
	phaseX     int
	phaseY     int
	poincare   int
	level      float64
	plotWidth  int
	plotHeight int
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "netevo",
		Short:             "dynamical network simulation and topology evolution",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".netevo", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 1, "random seed")

	generateCmd := &cobra.Command{
		Use:   "generate [out.gml]",
		Short: "generate a ring or random graph",
		Args:  cobra.ExactArgs(1),
		RunE:  generateGraph,
	}
	graphFlags(generateCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "simulate the dynamics of a graph",
		RunE:  runSimulation,
	}
	graphFlags(simulateCmd)
	simulateCmd.Flags().StringVar(&graphFile, "graph", "", "load the graph from a gml file")
	simulateCmd.Flags().StringVar(&method, "method", "const", "simulation method (map, fixed, const, adaptive)")
	simulateCmd.Flags().StringVar(&stepper, "stepper", "", "stepper for the method")
	simulateCmd.Flags().Float64Var(&tMax, "time", config.DefaultTMax, "end time")
	simulateCmd.Flags().Float64Var(&step, "dt", config.DefaultStep, "timestep")
	simulateCmd.Flags().StringVar(&changesFile, "changes", "", "write the change log to this file")
	simulateCmd.Flags().BoolVar(&plot, "plot", false, "plot a state variable")
	simulateCmd.Flags().IntVar(&plotState, "state", 0, "state index to plot and analyse")
	simulateCmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "estimate the largest lyapunov exponent")

	evolveCmd := &cobra.Command{
		Use:   "evolve",
		Short: "search for a better topology",
		RunE:  runEvolution,
	}
	graphFlags(evolveCmd)
	evolveCmd.Flags().StringVar(&graphFile, "graph", "", "start from a gml file")
	evolveCmd.Flags().StringVar(&outFile, "out", "evolved.gml", "where to write the best graph")
	evolveCmd.Flags().StringVar(&changesFile, "changes", "", "write the change log to this file")
	evolveCmd.Flags().BoolVar(&live, "live", false, "show a live view of the search")
	evolveCmd.Flags().IntVar(&iterations, "iterations", 0, "maximum iterations")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search node dynamic parameters",
		RunE:  runSweep,
	}
	graphFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&graphFile, "graph", "", "load the graph from a gml file")
	sweepCmd.Flags().StringVar(&method, "method", "const", "simulation method (map, fixed, const, adaptive)")
	sweepCmd.Flags().StringVar(&stepper, "stepper", "", "stepper for the method")
	sweepCmd.Flags().Float64Var(&tMax, "time", config.DefaultTMax, "end time")
	sweepCmd.Flags().Float64Var(&step, "dt", config.DefaultStep, "timestep")
	sweepCmd.Flags().StringArrayVar(&sweepRanges, "range", nil, "parameter range, index=v1,v2 or index=start:stop:step (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "sync_error", "metric to minimise")

	bifurcationCmd := &cobra.Command{
		Use:   "bifurcation",
		Short: "sweep one node dynamic parameter and plot where a state settles",
		RunE:  runBifurcation,
	}
	graphFlags(bifurcationCmd)
	bifurcationCmd.Flags().StringVar(&graphFile, "graph", "", "load the graph from a gml file")
	bifurcationCmd.Flags().StringVar(&method, "method", "const", "simulation method (map, fixed, const, adaptive)")
	bifurcationCmd.Flags().StringVar(&stepper, "stepper", "", "stepper for the method")
	bifurcationCmd.Flags().Float64Var(&step, "dt", config.DefaultStep, "timestep")
	bifurcationCmd.Flags().StringVar(&bifRange, "range", "", "parameter range, index=v1,v2 or index=start:stop:step")
	bifurcationCmd.Flags().IntVar(&plotState, "state", 0, "state index to record")
	bifurcationCmd.Flags().Float64Var(&transient, "transient", 50, "time discarded before recording")
	bifurcationCmd.Flags().Float64Var(&record, "record", 50, "time recorded per parameter value")
	bifurcationCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	bifurcationCmd.Flags().IntVar(&plotHeight, "height", 24, "plot height")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [graph.gml]",
		Short: "print the eigenvalues of a graph",
		Args:  cobra.ExactArgs(1),
		RunE:  printSpectrum,
	}
	spectrumCmd.Flags().StringVar(&matrixKind, "matrix", "laplacian", "matrix (laplacian, adjacency)")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	historyCmd := &cobra.Command{
		Use:   "history [run_id]",
		Short: "plot the score history of an evolution run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotHistory,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotState, "state", 0, "state index to plot")
	plotCmd.Flags().StringVar(&svgFile, "svg", "", "write the plot to an svg file instead")
	plotCmd.Flags().IntVar(&svgWidth, "width", 800, "svg width")
	plotCmd.Flags().IntVar(&svgHeight, "height", 400, "svg height")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "plot a phase portrait or poincare section of a stored simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  plotPhase,
	}
	phaseCmd.Flags().IntVar(&phaseX, "x", 0, "state index on the horizontal axis")
	phaseCmd.Flags().IntVar(&phaseY, "y", 1, "state index on the vertical axis")
	phaseCmd.Flags().IntVar(&poincare, "poincare", -1, "state index whose upward crossings of --level are recorded (-1 for the full portrait)")
	phaseCmd.Flags().Float64Var(&level, "level", 0, "crossing level for --poincare")
	phaseCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	phaseCmd.Flags().IntVar(&plotHeight, "height", 24, "plot height")

	drawCmd := &cobra.Command{
		Use:   "draw [graph.gml] [out.svg]",
		Short: "draw a graph as svg",
		Args:  cobra.ExactArgs(2),
		RunE:  drawGraph,
	}
	drawCmd.Flags().IntVar(&svgWidth, "width", 600, "svg width")
	drawCmd.Flags().IntVar(&svgHeight, "height", 600, "svg height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(generateCmd, simulateCmd, evolveCmd, sweepCmd, bifurcationCmd, spectrumCmd,
		drawCmd, runsCmd, historyCmd, plotCmd, phaseCmd, exportCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func graphFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&graphKind, "kind", "ring", "graph kind (ring, random)")
	cmd.Flags().IntVar(&nodes, "nodes", config.DefaultNodes, "number of nodes")
	cmd.Flags().IntVar(&neighbours, "neighbours", config.DefaultNeighbours, "ring neighbours on each side")
	cmd.Flags().Float64Var(&edgeProb, "prob", config.DefaultEdgeProb, "edge probability (random)")
	cmd.Flags().StringVar(&nodeDynamic, "node-dynamic", "", "node dynamic")
	cmd.Flags().StringVar(&arcDynamic, "arc-dynamic", "", "arc dynamic")
	cmd.Flags().BoolVar(&undirected, "undirected", false, "add arcs in both directions")
}

func setup(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				logrus.Errorf("metrics server: %v", err)
			}
		}()
		logrus.Infof("serving metrics on %s/metrics", metricsAddr)
	}
	return nil
}

// loadConfig resolves the preset or config file and applies any flags the
// user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("preset not found: %s (available: %v)", preset, config.ListPresets())
		}
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	g := &cfg.Graph
	if flags.Changed("kind") {
		g.Kind = graphKind
	}
	if flags.Changed("nodes") {
		g.Nodes = nodes
	}
	if flags.Changed("neighbours") {
		g.Neighbours = neighbours
	}
	if flags.Changed("prob") {
		g.EdgeProb = edgeProb
	}
	if flags.Changed("node-dynamic") {
		g.NodeDynamic = nodeDynamic
	}
	if flags.Changed("arc-dynamic") {
		g.ArcDynamic = arcDynamic
	}
	if flags.Changed("undirected") {
		g.Undirected = undirected
	}
	if flags.Changed("graph") {
		g.Kind = "file"
		g.Path = graphFile
	}

	s := &cfg.Simulation
	if flags.Changed("method") {
		s.Method = method
		if !flags.Changed("stepper") {
			s.Stepper = ""
		}
	}
	if flags.Changed("stepper") {
		s.Stepper = stepper
	}
	if flags.Changed("time") {
		s.TMax = tMax
	}
	if flags.Changed("dt") {
		s.Step = step
	}
	if flags.Changed("iterations") {
		cfg.Evolution.MaxIterations = iterations
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func historyPath() string {
	return filepath.Join(dataDir, "history.db")
}

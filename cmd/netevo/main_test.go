package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/netevo/internal/config"
	"github.com/san-kum/netevo/internal/dynamo"
	"github.com/san-kum/netevo/internal/evolve"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
	"github.com/san-kum/netevo/internal/storage"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	graphFlags(cmd)
	cmd.Flags().StringVar(&graphFile, "graph", "", "")
	cmd.Flags().StringVar(&method, "method", "const", "")
	cmd.Flags().StringVar(&stepper, "stepper", "", "")
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	preset, configFile = "", ""
	cfg, err := loadConfig(newGraphCmd())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Graph.Nodes != config.DefaultNodes || cfg.Graph.Kind != "ring" {
		t.Errorf("unexpected graph config %+v", cfg.Graph)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	preset, configFile = "", ""
	cmd := newGraphCmd()
	cmd.Flags().Set("nodes", "10")
	cmd.Flags().Set("kind", "random")
	cmd.Flags().Set("method", "fixed")

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Graph.Nodes != 10 || cfg.Graph.Kind != "random" {
		t.Errorf("overrides not applied: %+v", cfg.Graph)
	}
	if cfg.Simulation.Method != "fixed" || cfg.Simulation.Stepper != "" {
		t.Errorf("method override should reset the stepper: %+v", cfg.Simulation)
	}
}

func TestLoadConfigGraphFile(t *testing.T) {
	preset, configFile = "", ""
	cmd := newGraphCmd()
	path := filepath.Join(t.TempDir(), "g.gml")
	cmd.Flags().Set("graph", path)

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Graph.Kind != "file" || cfg.Graph.Path != path {
		t.Errorf("graph flag not applied: %+v", cfg.Graph)
	}
}

func TestLoadConfigPreset(t *testing.T) {
	configFile = ""
	preset = "rossler_sync"
	defer func() { preset = "" }()

	cfg, err := loadConfig(newGraphCmd())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Evolution.Performance != "sync" {
		t.Errorf("expected sync performance, got %s", cfg.Evolution.Performance)
	}

	preset = "nonexistent"
	if _, err := loadConfig(newGraphCmd()); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	preset, configFile = "", ""
	cmd := newGraphCmd()
	cmd.Flags().Set("nodes", "3")
	cmd.Flags().Set("neighbours", "3")

	if _, err := loadConfig(cmd); err == nil {
		t.Error("expected validation error")
	}
}

func TestFanOut(t *testing.T) {
	var calls []int
	record := func(id int) evolve.Observer {
		return evolve.ObserverFunc(func(*network.System, float64, int) { calls = append(calls, id) })
	}

	fanOut(record(1), record(2)).Observe(network.New(), 1, 0)
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("unexpected calls %v", calls)
	}
}

func TestPlotPhase(t *testing.T) {
	dataDir = t.TempDir()
	st := storage.New(dataDir)
	st.Init()
	traj := &sim.Trajectory{}
	for i := 0; i <= 100; i++ {
		tm := float64(i) * 0.1
		traj.Observe(dynamo.State{math.Cos(tm), math.Sin(tm)}, tm)
	}
	runID, err := st.Save(storage.RunMetadata{Kind: "simulate"}, traj)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	phaseX, phaseY, plotWidth, plotHeight = 0, 1, 40, 12
	defer func() { poincare = -1 }()
	for _, section := range []int{-1, 1} {
		poincare = section
		if err := plotPhase(&cobra.Command{}, []string{runID}); err != nil {
			t.Errorf("poincare=%d: %v", section, err)
		}
	}

	poincare, phaseY = -1, 4
	if err := plotPhase(&cobra.Command{}, []string{runID}); err == nil {
		t.Error("expected range error")
	}
}

func TestBifurcationNeedsRange(t *testing.T) {
	preset, configFile, bifRange = "", "", ""
	if err := runBifurcation(newGraphCmd(), nil); err == nil {
		t.Error("expected error without --range")
	}
}

package config

import (
	"sort"

	"github.com/san-kum/netevo/internal/integrators"
	"github.com/san-kum/netevo/internal/physics"
)

// presets build fresh configs so callers may modify what they get.
var presets = map[string]func() *Config{
	"ring_eigenratio": func() *Config {
		return DefaultConfig()
	},
	"random_growth": func() *Config {
		cfg := DefaultConfig()
		cfg.Graph.Kind = "random"
		cfg.Graph.Nodes = 20
		cfg.Graph.EdgeProb = 0.2
		cfg.Evolution.Mutation = MutationConfig{
			Kind: "random", Trials: 1, Sigma: DefaultSigma,
			Probabilities: map[string]float64{"new_edge": 0.3, "del_edge": 0.3, "rewire": 0.5, "new_node": 0.05, "del_node": 0.05},
		}
		return cfg
	},
	"rossler_sync": func() *Config {
		cfg := DefaultConfig()
		cfg.Graph.Nodes = 10
		cfg.Graph.NodeDynamic = physics.RosslerName
		cfg.Simulation.Stepper = integrators.CashKarp54Kind.String()
		cfg.Simulation.Step = 1
		cfg.Simulation.AbsTol, cfg.Simulation.RelTol = 1e-4, 1e-4
		cfg.Evolution.Performance = "sync"
		cfg.Evolution.InitialTrials = 10
		cfg.Evolution.MaxIterations = 500
		return cfg
	},
	"kuramoto_map": func() *Config {
		cfg := DefaultConfig()
		cfg.Graph.Kind = "random"
		cfg.Graph.Nodes = 5
		cfg.Graph.EdgeProb = 0.5
		cfg.Graph.NodeDynamic = physics.KuramotoMapName
		cfg.Simulation.Method = "map"
		cfg.Simulation.TMax = 50
		cfg.Evolution.InitialStates.Scale = 6.283
		return cfg
	},
	"lorenz_adaptive": func() *Config {
		cfg := DefaultConfig()
		cfg.Graph.Kind = "random"
		cfg.Graph.Nodes = 50
		cfg.Graph.NodeDynamic = physics.LorenzName
		cfg.Graph.ArcDynamic = physics.AdaptiveArcName
		cfg.Simulation.TMax = 20
		cfg.Simulation.Step = 1
		cfg.Simulation.AbsTol, cfg.Simulation.RelTol = 1e-5, 1e-5
		return cfg
	},
}

// GetPreset returns a new copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

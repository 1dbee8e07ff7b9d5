// Package config loads run configurations from YAML and turns them into
// systems, simulators and annealer settings.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/netevo/internal/evolve"
	"github.com/san-kum/netevo/internal/integrators"
)

const (
	DefaultNodes      = 25
	DefaultNeighbours = 2
	DefaultEdgeProb   = 0.2
	DefaultTMax       = 100.0
	DefaultStep       = 0.01
	DefaultTol        = 1e-6
	DefaultStateScale = 10.0
	DefaultSigma      = 0.1
)

var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Seed       int64            `yaml:"seed"`
	Graph      GraphConfig      `yaml:"graph"`
	Simulation SimulationConfig `yaml:"simulation"`
	Evolution  EvolutionConfig  `yaml:"evolution"`
}

type GraphConfig struct {
	Kind        string  `yaml:"kind" validate:"oneof=ring random file"`
	Nodes       int     `yaml:"nodes" validate:"gte=0"`
	Neighbours  int     `yaml:"neighbours" validate:"gte=0"`
	EdgeProb    float64 `yaml:"edge_prob" validate:"gte=0,lte=1"`
	SelfLoops   bool    `yaml:"self_loops"`
	Undirected  bool    `yaml:"undirected"`
	NodeDynamic string  `yaml:"node_dynamic" validate:"required"`
	ArcDynamic  string  `yaml:"arc_dynamic" validate:"required"`
	Path        string  `yaml:"path,omitempty" validate:"required_if=Kind file"`
}

type SimulationConfig struct {
	Method  string  `yaml:"method" validate:"oneof=map fixed const adaptive"`
	Stepper string  `yaml:"stepper,omitempty"`
	TMax    float64 `yaml:"t_max" validate:"gt=0"`
	Step    float64 `yaml:"step" validate:"gt=0"`
	AbsTol  float64 `yaml:"abs_tol" validate:"gte=0"`
	RelTol  float64 `yaml:"rel_tol" validate:"gte=0"`
}

type EvolutionConfig struct {
	Performance           string              `yaml:"performance" validate:"oneof=eigenratio sync"`
	InitialTrials         int                 `yaml:"initial_trials" validate:"gte=0"`
	MainTrials            int                 `yaml:"main_trials" validate:"gte=1"`
	AcceptTrials          int                 `yaml:"accept_trials" validate:"gte=1"`
	AcceptRunsNoChange    int                 `yaml:"accept_runs_no_change" validate:"gte=0"`
	MinTemp               float64             `yaml:"min_temp"`
	MaxIterations         int                 `yaml:"max_iterations" validate:"gte=0"`
	EnsureWeaklyConnected bool                `yaml:"ensure_weakly_connected"`
	SimTMax               float64             `yaml:"sim_t_max" validate:"gt=0"`
	InitialStates         InitialStatesConfig `yaml:"initial_states"`
	Mutation              MutationConfig      `yaml:"mutation"`
}

type InitialStatesConfig struct {
	Count int     `yaml:"count" validate:"gte=0"`
	Scale float64 `yaml:"scale" validate:"gte=0"`
}

// MutationConfig selects the mutator. "rewire" moves undirected edges and
// keeps node and edge counts; "random" draws from Probabilities, keyed by
// mutation kind name.
type MutationConfig struct {
	Kind          string             `yaml:"kind" validate:"oneof=rewire random"`
	Trials        int                `yaml:"trials" validate:"gte=1"`
	Sigma         float64            `yaml:"sigma" validate:"gte=0"`
	Probabilities map[string]float64 `yaml:"probabilities,omitempty" validate:"dive,keys,oneof=new_node del_node new_edge del_edge upd_node upd_edge rewire duplicate,endkeys,gte=0,lte=1"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	p := evolve.DefaultParams()
	return &Config{
		Graph: GraphConfig{
			Kind:        "ring",
			Nodes:       DefaultNodes,
			Neighbours:  DefaultNeighbours,
			EdgeProb:    DefaultEdgeProb,
			Undirected:  true,
			NodeDynamic: "NoNodeDynamic",
			ArcDynamic:  "NoArcDynamic",
		},
		Simulation: SimulationConfig{
			Method:  "const",
			Stepper: integrators.CashKarp54Kind.String(),
			TMax:    DefaultTMax,
			Step:    DefaultStep,
			AbsTol:  DefaultTol,
			RelTol:  DefaultTol,
		},
		Evolution: EvolutionConfig{
			Performance:           "eigenratio",
			InitialTrials:         p.InitialTrials,
			MainTrials:            p.MainTrials,
			AcceptTrials:          p.AcceptTrials,
			AcceptRunsNoChange:    p.AcceptRunsNoChange,
			MinTemp:               p.MinTemp,
			MaxIterations:         p.MaxIterations,
			EnsureWeaklyConnected: p.EnsureWeaklyConnected,
			SimTMax:               p.SimTMax,
			InitialStates:         InitialStatesConfig{Count: 1, Scale: DefaultStateScale},
			Mutation:              MutationConfig{Kind: "rewire", Trials: 1, Sigma: DefaultSigma},
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks field ranges and that the stepper name suits the
// simulation method.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var err error
	switch c.Simulation.Method {
	case "fixed":
		_, err = integrators.ParseFixedKind(c.Simulation.Stepper)
	case "const", "adaptive":
		if c.Simulation.AbsTol+c.Simulation.RelTol <= 0 {
			return fmt.Errorf("%w: abs_tol and rel_tol are both zero", ErrInvalid)
		}
		_, err = integrators.ParseAdaptiveKind(c.Simulation.Stepper)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Graph.Kind == "ring" && c.Graph.Nodes > 0 && c.Graph.Neighbours >= c.Graph.Nodes {
		return fmt.Errorf("%w: ring needs neighbours < nodes", ErrInvalid)
	}
	return nil
}

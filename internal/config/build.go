package config

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/netevo/internal/evolve"
	"github.com/san-kum/netevo/internal/gml"
	"github.com/san-kum/netevo/internal/integrators"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/physics"
	"github.com/san-kum/netevo/internal/sim"
)

// BuildSystem creates the configured graph with every physics dynamic
// registered.
func (c *Config) BuildSystem() (*network.System, error) {
	sys := network.New(network.WithSeed(c.Seed))
	physics.Register(sys)
	g := c.Graph
	var err error
	switch g.Kind {
	case "ring":
		err = sys.RingGraph(g.Nodes, g.Neighbours, g.NodeDynamic, g.ArcDynamic, g.Undirected)
	case "random":
		err = sys.RandomGraph(g.EdgeProb, g.Nodes, g.SelfLoops, g.NodeDynamic, g.ArcDynamic, g.Undirected)
	case "file":
		err = gml.LoadFile(g.Path, sys)
	default:
		err = fmt.Errorf("%w: graph kind %q", ErrInvalid, g.Kind)
	}
	if err != nil {
		return nil, err
	}
	return sys, nil
}

func (c *Config) BuildSimulator() (sim.Simulator, error) {
	s := c.Simulation
	switch s.Method {
	case "map":
		return sim.Map{}, nil
	case "fixed":
		k, err := integrators.ParseFixedKind(s.Stepper)
		if err != nil {
			return nil, err
		}
		return sim.OdeFixed{Stepper: k, StepSize: s.Step}, nil
	case "const", "adaptive":
		k, err := integrators.ParseAdaptiveKind(s.Stepper)
		if err != nil {
			return nil, err
		}
		if s.Method == "const" {
			return sim.OdeConst{Stepper: k, AbsTol: s.AbsTol, RelTol: s.RelTol, OutputStep: s.Step}, nil
		}
		return sim.OdeAdaptive{Stepper: k, AbsTol: s.AbsTol, RelTol: s.RelTol, InitialStep: s.Step}, nil
	}
	return nil, fmt.Errorf("%w: simulation method %q", ErrInvalid, s.Method)
}

// Params maps the evolution section onto annealer settings. The acceptance
// generator is seeded from Seed.
func (c *Config) Params() evolve.Params {
	e := c.Evolution
	p := evolve.DefaultParams()
	p.InitialTrials = e.InitialTrials
	p.MainTrials = e.MainTrials
	p.AcceptTrials = e.AcceptTrials
	p.AcceptRunsNoChange = e.AcceptRunsNoChange
	p.MinTemp = e.MinTemp
	p.MaxIterations = e.MaxIterations
	p.EnsureWeaklyConnected = e.EnsureWeaklyConnected
	p.SimTMax = e.SimTMax
	p.Rand = rand.New(rand.NewSource(c.Seed))
	return p
}

func (c *Config) BuildPerformance() (evolve.Performance, error) {
	switch c.Evolution.Performance {
	case "eigenratio":
		return evolve.Eigenratio{}, nil
	case "sync":
		return evolve.NewSynchronization(), nil
	}
	return nil, fmt.Errorf("%w: performance %q", ErrInvalid, c.Evolution.Performance)
}

// BuildMutator wires the configured mutator. Random mutators get the ready
// made op for every kind, using the graph's dynamics for new entities.
func (c *Config) BuildMutator() (evolve.Mutator, error) {
	m := c.Evolution.Mutation
	switch m.Kind {
	case "rewire":
		return evolve.NewUndirectedRewire(c.Seed), nil
	case "random":
	default:
		return nil, fmt.Errorf("%w: mutation kind %q", ErrInvalid, m.Kind)
	}

	undirected := c.Graph.Undirected
	ops := map[evolve.MutationKind]evolve.MutationOp{
		evolve.NewNode:   evolve.AddNodeOp(c.Graph.NodeDynamic),
		evolve.DelNode:   evolve.DeleteNodeOp(),
		evolve.NewEdge:   evolve.AddEdgeOp(c.Graph.ArcDynamic, undirected),
		evolve.DelEdge:   evolve.DeleteEdgeOp(undirected),
		evolve.UpdNode:   evolve.PerturbParamsOp(m.Sigma),
		evolve.UpdEdge:   evolve.PerturbWeightOp(m.Sigma),
		evolve.Rewire:    evolve.RewireEdgeOp(undirected),
		evolve.Duplicate: evolve.DuplicateNodeOp(),
	}
	rm := evolve.NewRandomMutator(c.Seed)
	rm.SetTrials(m.Trials)
	for k, op := range ops {
		rm.Handle(k, op)
		rm.SetProb(k, m.Probabilities[k.String()])
	}
	return rm, nil
}

// BuildInitialStates returns nil when no states are configured.
func (c *Config) BuildInitialStates() evolve.InitialStates {
	s := c.Evolution.InitialStates
	if s.Count == 0 {
		return nil
	}
	return evolve.RandomInitialStates{Count: s.Count, Scale: s.Scale}
}

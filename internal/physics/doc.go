// Package physics provides node and arc dynamics for networked systems.
//
// Node dynamics couple to their neighbours through incoming arcs. The gain
// of an arc is its own first state when its dynamic carries state, and its
// weight otherwise:
//
//   - [KuramotoMap]: discrete phase map, for the Map simulator
//   - [KuramotoOscillator]: continuous phase oscillator
//   - [Rossler]: chaotic oscillator coupled on x and z
//   - [Lorenz]: butterfly attractor coupled on every state
//   - [VanDerPol]: relaxation oscillator coupled on x
//   - [Zero]: three constant states
//   - [AdaptiveArc]: coupling strength growing with the endpoint mismatch
//
// Parameters live in NodeData.Params and ArcData.Params so each entity can
// be tuned independently:
//
//	sys := network.New()
//	physics.Register(sys)
//	v, _ := sys.AddNode(physics.RosslerName)
//	sys.NodeData(v).Params[0] = 0.2 // a
package physics

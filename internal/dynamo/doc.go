// Package dynamo provides the numeric primitives shared by every simulation
// strategy in netevo.
//
//   - [State]: flat vector holding the dynamical variables of a whole network
//   - [DerivFunc]: derivative (or next-state) callback driven by the integrators
//   - domain errors such as [ErrDimensionMismatch] and [ErrStepTooSmall]
//
// A network maps every node and arc onto a slot of a single State; see
// network.System for the layout.
package dynamo

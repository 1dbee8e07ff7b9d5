// Package analysis characterises simulated network trajectories.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectrum of one state
//     variable over a uniformly sampled run
//   - [LyapunovExponent]: largest exponent estimated from the growth of a
//     small perturbation
//   - [Bifurcation]: where one state settles as a node parameter is swept
//   - [PhasePortrait] and [PoincareSection]: two-state projections of a run,
//     drawn on a terminal with [Scatter]
//
// A positive exponent indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(sys, simulator, x0, tMax, 1e-8)
//	if err == nil && lambda > 0 {
//	    // chaotic
//	}
package analysis

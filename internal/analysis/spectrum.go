package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/netevo/internal/sim"
)

var (
	ErrTooShort  = errors.New("analysis: trajectory too short")
	ErrIrregular = errors.New("analysis: samples are not evenly spaced")
)

// Series extracts state idx from every sample.
func Series(traj *sim.Trajectory, idx int) ([]float64, error) {
	out := make([]float64, traj.Len())
	for i, x := range traj.States {
		if idx < 0 || idx >= len(x) {
			return nil, fmt.Errorf("analysis: state %d out of range (have %d)", idx, len(x))
		}
		out[i] = x[idx]
	}
	return out, nil
}

// SampleStep returns the spacing of traj's sample times, which must be
// uniform to within 1e-6 relative.
func SampleStep(traj *sim.Trajectory) (float64, error) {
	n := traj.Len()
	if n < 4 {
		return 0, ErrTooShort
	}
	dt := (traj.Times[n-1] - traj.Times[0]) / float64(n-1)
	if dt <= 0 {
		return 0, ErrIrregular
	}
	for i := 1; i < n; i++ {
		if math.Abs(traj.Times[i]-traj.Times[i-1]-dt) > 1e-6*dt {
			return 0, ErrIrregular
		}
	}
	return dt, nil
}

// PowerSpectrum returns |X_k|^2 / n for k = 0..n/2 of the mean-removed data.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)
	centred := make([]float64, n)
	for i, v := range data {
		centred[i] = v - mean
	}

	spectrum := fft.FFTReal(centred)
	ps := make([]float64, n/2+1)
	for i := range ps {
		a := cmplx.Abs(spectrum[i])
		ps[i] = a * a / float64(n)
	}
	return ps
}

// DominantFrequency is the frequency of the strongest non-constant
// component of state idx, in cycles per unit time.
func DominantFrequency(traj *sim.Trajectory, idx int) (float64, error) {
	dt, err := SampleStep(traj)
	if err != nil {
		return 0, err
	}
	data, err := Series(traj, idx)
	if err != nil {
		return 0, err
	}
	ps := PowerSpectrum(data)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	return float64(peak) / (float64(len(data)) * dt), nil
}

package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/netevo/internal/sim"
)

type ExportData struct {
	RunMetadata
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes meta and the trajectory as one indented document.
func ExportJSON(w io.Writer, meta RunMetadata, traj *sim.Trajectory) error {
	data := ExportData{RunMetadata: meta, Times: []float64{}, States: [][]float64{}}
	if traj != nil {
		data.Times = traj.Times
		data.States = make([][]float64, len(traj.States))
		for i, x := range traj.States {
			data.States[i] = x
		}
		data.Samples = traj.Len()
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

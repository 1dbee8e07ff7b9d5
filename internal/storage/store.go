// Package storage keeps simulation runs on disk and evolution histories in
// SQLite.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/netevo/internal/gml"
	"github.com/san-kum/netevo/internal/network"
	"github.com/san-kum/netevo/internal/sim"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
	graphFile    = "graph.gml"
)

// Store writes one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Method    string             `json:"method"`
	Stepper   string             `json:"stepper,omitempty"`
	TMax      float64            `json:"t_max"`
	Nodes     int                `json:"nodes"`
	Arcs      int                `json:"arcs"`
	Samples   int                `json:"samples"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// NewRunID returns "<kind>_<uuid>".
func NewRunID(kind string) string {
	return fmt.Sprintf("%s_%s", kind, uuid.NewString())
}

// Save writes meta and the trajectory under meta.ID, allocating a new run
// ID when it is empty. The ID is returned. traj may be nil.
func (s *Store) Save(meta RunMetadata, traj *sim.Trajectory) (string, error) {
	if meta.ID == "" {
		meta.ID = NewRunID(meta.Kind)
	}
	meta.Timestamp = time.Now()
	if traj != nil {
		meta.Samples = traj.Len()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeStates(filepath.Join(runDir, statesFile), traj); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeStates(path string, traj *sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if traj != nil && traj.Len() > 0 {
		header := []string{"time"}
		for i := range traj.States[0] {
			header = append(header, fmt.Sprintf("x%d", i))
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for i, x := range traj.States {
			row := make([]string, 0, len(x)+1)
			row = append(row, strconv.FormatFloat(traj.Times[i], 'g', -1, 64))
			for _, v := range x {
				row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// SaveGraph stores sys as GML next to the run's states.
func (s *Store) SaveGraph(runID string, sys *network.System) error {
	return gml.SaveFile(filepath.Join(s.baseDir, runID, graphFile), sys)
}

// LoadGraph reads a graph saved with SaveGraph into sys.
func (s *Store) LoadGraph(runID string, sys *network.System) error {
	return gml.LoadFile(filepath.Join(s.baseDir, runID, graphFile), sys)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads a run's trajectory back.
func (s *Store) LoadStates(runID string) (*sim.Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	traj := &sim.Trajectory{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", statesFile, i+1, err)
		}
		x := make([]float64, len(record)-1)
		for j := range x {
			if x[j], err = strconv.ParseFloat(record[j+1], 64); err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", statesFile, i+1, err)
			}
		}
		traj.Observe(x, t)
	}
	return traj, nil
}

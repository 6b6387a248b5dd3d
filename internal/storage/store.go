package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/maxwell/internal/config"
)

const (
	metadataFile = "metadata.json"
	streamFile   = "stream.bin"
	energyFile   = "energy.csv"
	manifestFile = "manifest.yaml"
)

var ErrRunNotFound = errors.New("storage: run not found")

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
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Timestamp       time.Time          `json:"timestamp"`
	Side            int                `json:"side"`
	Density         float32            `json:"density"`
	Dt              float32            `json:"dt"`
	Steps           int                `json:"steps"`
	Boundary        string             `json:"boundary"`
	TimeDecimation  int                `json:"time_decimation"`
	SpaceDecimation int                `json:"space_decimation"`
	Frames          int                `json:"frames"`
	Records         int64              `json:"records"`
	Elapsed         time.Duration      `json:"elapsed_ns"`
	Completed       bool               `json:"completed"`
	// FirstNonFinite is the first step holding a NaN or Inf cell, or -1.
	FirstNonFinite  int                `json:"first_non_finite_step"`
	Metrics         map[string]float64 `json:"metrics"`
}

// Run is a run directory being written. The stream file is open until
// Finish or Abort.
type Run struct {
	ID  string
	Dir string

	stream *os.File
}

// Create makes a fresh run directory named after name and opens its
// stream file for writing.
func (s *Store) Create(name string) (*Run, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runID := base
	for i := 1; ; i++ {
		err := os.Mkdir(filepath.Join(s.baseDir, runID), 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return nil, err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}

	runDir := filepath.Join(s.baseDir, runID)
	f, err := os.Create(filepath.Join(runDir, streamFile))
	if err != nil {
		return nil, err
	}
	return &Run{ID: runID, Dir: runDir, stream: f}, nil
}

// Write appends stream bytes.
func (r *Run) Write(p []byte) (int, error) {
	return r.stream.Write(p)
}

// SaveManifest keeps the manifest the run was built from.
func (r *Run) SaveManifest(m *config.Manifest) error {
	return config.Save(filepath.Join(r.Dir, manifestFile), m)
}

// Finish closes the stream and writes the metadata and the per-step
// energy series. energy[k] is the energy after step k, dt apart.
func (r *Run) Finish(meta RunMetadata, energy []float64) error {
	if err := r.stream.Close(); err != nil {
		return err
	}

	meta.ID = r.ID
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}

	metaFile, err := os.Create(filepath.Join(r.Dir, metadataFile))
	if err != nil {
		return err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	if len(energy) == 0 {
		return nil
	}

	csvFile, err := os.Create(filepath.Join(r.Dir, energyFile))
	if err != nil {
		return err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"step", "time", "energy"}); err != nil {
		return err
	}
	for k, e := range energy {
		row := []string{
			strconv.Itoa(k),
			strconv.FormatFloat(float64(k)*float64(meta.Dt), 'g', 8, 64),
			strconv.FormatFloat(e, 'g', 10, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Abort closes the stream and removes the run directory.
func (r *Run) Abort() error {
	r.stream.Close()
	return os.RemoveAll(r.Dir)
}

// List returns every run with readable metadata, oldest first.
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

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// StreamPath returns the stream file of a stored run.
func (s *Store) StreamPath(runID string) (string, error) {
	path := filepath.Join(s.baseDir, runID, streamFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return "", err
	}
	return path, nil
}

// LoadEnergy reads back the per-step energy series written by Finish.
func (s *Store) LoadEnergy(runID string) ([]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, energyFile)
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	energy := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		t, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		e, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		energy = append(energy, e)
	}

	return energy, times, nil
}

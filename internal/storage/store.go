package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/facette/natsort"

	"github.com/san-kum/mpm1d/internal/config"
	"github.com/san-kum/mpm1d/internal/experiment"
	"github.com/san-kum/mpm1d/internal/mpm"
)

const (
	metadataFile  = "metadata.json"
	particlesFile = "particles.csv"
	comFile       = "com.csv"
)

var particlesHeader = []string{"step", "time", "particle", "x", "velocity", "mass", "stress", "volume"}
var comHeader = []string{"time", "com_velocity", "com_position", "analytical"}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Timestamp     time.Time          `json:"timestamp"`
	Config        *config.Config     `json:"config"`
	Dt            float64            `json:"dt"`
	Steps         int                `json:"steps"`
	Particles     int                `json:"particles"`
	Nodes         []float64          `json:"nodes"`
	FixedNodes    []int              `json:"fixed_nodes"`
	HasAnalytical bool               `json:"has_analytical"`
	MaxError      float64            `json:"max_error"`
	Metrics       map[string]float64 `json:"metrics"`
}

// COMSeries is the center-of-mass history read back from com.csv.
// Analytical is nil for runs without a closed form.
type COMSeries struct {
	Times      []float64
	Velocity   []float64
	Position   []float64
	Analytical []float64
}

// Frame is one stored step of particles.csv.
type Frame struct {
	Step      int
	Time      float64
	Particles []ParticleRecord
}

type ParticleRecord struct {
	X, Velocity, Mass, Stress, Volume float64
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 9, 64)
}

// Save writes a run directory named <name>_<unix>. A numeric suffix is added
// when that directory already exists.
func (s *Store) Save(res *experiment.Result) (string, error) {
	ts := s.now()
	runID := fmt.Sprintf("%s_%d", res.Config.Name, ts.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for i := 2; ; i++ {
		if _, err := os.Stat(runDir); errors.Is(err, os.ErrNotExist) {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", res.Config.Name, ts.Unix(), i)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	particles := 0
	if len(res.Snapshots) > 0 {
		particles = res.Snapshots[0].Len()
	}
	meta := RunMetadata{
		ID:            runID,
		Name:          res.Config.Name,
		Timestamp:     ts,
		Config:        res.Config,
		Dt:            res.Dt,
		Steps:         len(res.Snapshots),
		Particles:     particles,
		Nodes:         res.Nodes,
		FixedNodes:    res.FixedNodes,
		HasAnalytical: res.HasAnalytical(),
		MaxError:      res.MaxError,
		Metrics:       res.Metrics,
	}

	if err := writeRun(runDir, meta, res); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, res *experiment.Result) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(runDir, particlesFile), func(w *csv.Writer) error {
		return writeParticles(w, res.Snapshots)
	}); err != nil {
		return err
	}
	return writeCSV(filepath.Join(runDir, comFile), func(w *csv.Writer) error {
		return writeCOM(w, res)
	})
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, fill func(w *csv.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeParticles(w *csv.Writer, history []mpm.Snapshot) error {
	if err := w.Write(particlesHeader); err != nil {
		return err
	}
	for _, snap := range history {
		step := strconv.Itoa(snap.Step())
		t := formatFloat(snap.Time())
		var err error
		snap.Each(func(i int, p mpm.Particle) {
			if err != nil {
				return
			}
			err = w.Write([]string{
				step, t, strconv.Itoa(i),
				formatFloat(p.X),
				formatFloat(p.Velocity),
				formatFloat(p.Mass),
				formatFloat(p.Stress),
				formatFloat(p.CurrentVolume),
			})
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCOM(w *csv.Writer, res *experiment.Result) error {
	if err := w.Write(comHeader); err != nil {
		return err
	}
	for i := range res.Times {
		analytical := ""
		if res.HasAnalytical() {
			analytical = formatFloat(res.Analytical[i])
		}
		row := []string{
			formatFloat(res.Times[i]),
			formatFloat(res.COMVelocity[i]),
			formatFloat(res.COMPosition[i]),
			analytical,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns every readable run in natural order of run id.
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
		return natsort.Compare(runs[i].ID, runs[j].ID)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", runID, name, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func parseRow(row []string, runID, name string, line int) ([]float64, error) {
	out := make([]float64, len(row))
	for j, field := range row {
		if field == "" {
			out[j] = 0
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%s/%s line %d: %w", runID, name, line+2, err)
		}
		out[j] = v
	}
	return out, nil
}

func (s *Store) LoadCenterOfMass(runID string) (*COMSeries, error) {
	records, err := s.readCSV(runID, comFile)
	if err != nil {
		return nil, err
	}

	series := &COMSeries{
		Times:    make([]float64, 0, len(records)),
		Velocity: make([]float64, 0, len(records)),
		Position: make([]float64, 0, len(records)),
	}
	hasAnalytical := len(records) > 0 && records[0][3] != ""
	for i, record := range records {
		row, err := parseRow(record, runID, comFile, i)
		if err != nil {
			return nil, err
		}
		series.Times = append(series.Times, row[0])
		series.Velocity = append(series.Velocity, row[1])
		series.Position = append(series.Position, row[2])
		if hasAnalytical {
			series.Analytical = append(series.Analytical, row[3])
		}
	}
	return series, nil
}

// LoadParticles groups particles.csv rows back into per-step frames.
func (s *Store) LoadParticles(runID string) ([]Frame, error) {
	records, err := s.readCSV(runID, particlesFile)
	if err != nil {
		return nil, err
	}

	var frames []Frame
	for i, record := range records {
		row, err := parseRow(record, runID, particlesFile, i)
		if err != nil {
			return nil, err
		}
		step := int(row[0])
		if len(frames) == 0 || frames[len(frames)-1].Step != step {
			frames = append(frames, Frame{Step: step, Time: row[1]})
		}
		f := &frames[len(frames)-1]
		f.Particles = append(f.Particles, ParticleRecord{
			X:        row[3],
			Velocity: row[4],
			Mass:     row[5],
			Stress:   row[6],
			Volume:   row[7],
		})
	}
	return frames, nil
}

// CopyFile streams one stored file of a run to w.
func (s *Store) CopyFile(runID, name string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// ExportCSV writes the center-of-mass table of a run.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	return s.CopyFile(runID, comFile, w)
}

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

	"github.com/san-kum/satsim/internal/episode"
	"github.com/san-kum/satsim/internal/satellite"
)

const (
	metadataFile = "metadata.json"
	stepsFile    = "steps.csv"
)

var ErrMalformed = errors.New("storage: malformed run data")

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
	ID        string                    `json:"id"`
	Preset    string                    `json:"preset,omitempty"`
	Policy    string                    `json:"policy"`
	Timestamp time.Time                 `json:"timestamp"`
	Seed      int64                     `json:"seed"`
	MaxSteps  int                       `json:"max_steps"`
	Steps     int                       `json:"steps"`
	Reason    episode.TerminationReason `json:"reason"`
	Params    satellite.Params          `json:"params"`
	Metrics   map[string]float64        `json:"metrics"`
}

// Save writes metadata.json and steps.csv under a new run directory and
// returns the run ID.
func (s *Store) Save(meta RunMetadata, result *episode.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Policy, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Reason = result.Reason
	meta.Metrics = result.Metrics

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, stepsFile), func(w io.Writer) error {
		return WriteCSV(w, result.Steps)
	}); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func header() []string {
	h := []string{"step", "action"}
	for i := 0; i < satellite.GyroHistoryLen; i++ {
		h = append(h, fmt.Sprintf("gyro%d", i))
	}
	return append(h, "attitude", "ticks", "orientation")
}

// WriteCSV writes steps in the steps.csv layout.
func WriteCSV(w io.Writer, steps []episode.Step) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return err
	}

	for _, st := range steps {
		row := []string{strconv.Itoa(st.Index), st.Action.String()}
		for _, g := range st.Observation.Gyros {
			row = append(row, formatFloat(g))
		}
		row = append(row,
			formatFloat(st.Observation.LastAttitudeReading),
			strconv.Itoa(st.Observation.TicksSinceReading),
			formatFloat(st.Orientation),
		)
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// Full precision so a reloaded run reproduces the saved values exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

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
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, metadataFile, err)
	}
	return &meta, nil
}

func (s *Store) LoadSteps(runID string) ([]episode.Step, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, stepsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV parses the steps.csv layout written by WriteCSV.
func ReadCSV(r io.Reader) ([]episode.Step, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(records) < 2 {
		return []episode.Step{}, nil
	}

	steps := make([]episode.Step, 0, len(records)-1)
	for line, rec := range records[1:] {
		st, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, line+2, err)
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func parseRow(rec []string) (episode.Step, error) {
	var st episode.Step
	if len(rec) != len(header()) {
		return st, fmt.Errorf("expected %d fields, got %d", len(header()), len(rec))
	}

	idx, err := strconv.Atoi(rec[0])
	if err != nil {
		return st, err
	}
	a, err := satellite.ParseAction(rec[1])
	if err != nil {
		return st, err
	}
	st.Index, st.Action = idx, a

	col := 2
	for i := range st.Observation.Gyros {
		if st.Observation.Gyros[i], err = strconv.ParseFloat(rec[col], 64); err != nil {
			return st, err
		}
		col++
	}
	if st.Observation.LastAttitudeReading, err = strconv.ParseFloat(rec[col], 64); err != nil {
		return st, err
	}
	if st.Observation.TicksSinceReading, err = strconv.Atoi(rec[col+1]); err != nil {
		return st, err
	}
	if st.Orientation, err = strconv.ParseFloat(rec[col+2], 64); err != nil {
		return st, err
	}
	return st, nil
}

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/metrics"
	"gopkg.in/yaml.v3"
)

type RunMetadata struct {
	ID         string         `json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	Potential  string         `json:"potential"`
	SimType    string         `json:"sim_type"`
	Integrator string         `json:"integrator"`
	Particles  int            `json:"particles"`
	Dt         float64        `json:"dt"`
	Steps      int            `json:"steps"`
	PrintFreq  int            `json:"print_freq"`
	Records    int            `json:"records"`
	FinalTotal float64        `json:"final_total"`
	FinalDrift float64        `json:"final_drift"`
	MaxDrift   float64        `json:"max_drift"`
	LogPath    string         `json:"log_path"`
	Config     *config.Config `json:"config"`
}

// Summary carries the outcome of a finished run.
type Summary struct {
	Integrator string
	Particles  int
	Records    int
	FinalTotal float64
	FinalDrift float64
	MaxDrift   float64
}

const runColumns = `id, created_at, potential, sim_type, integrator, particles, dt, steps,
	print_freq, records, final_total, final_drift, max_drift, log_path, config`

// Save catalogues a finished run and returns its new ID.
func (s *Store) Save(ctx context.Context, cfg *config.Config, sum Summary) (string, error) {
	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	logPath, err := logPathOf(cfg.Output)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		time.Now().UTC().UnixNano(),
		cfg.Potential,
		cfg.SimType,
		sum.Integrator,
		sum.Particles,
		cfg.Dt,
		cfg.Steps,
		cfg.PrintFreq,
		sum.Records,
		sum.FinalTotal,
		sum.FinalDrift,
		sum.MaxDrift,
		logPath,
		string(cfgYAML),
	)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	s.logger.Info("run catalogued", "id", id, "records", sum.Records)
	return id, nil
}

// List returns every catalogued run, newest first.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Load finds a run by full ID or by a unique ID prefix.
func (s *Store) Load(ctx context.Context, runID string) (*RunMetadata, error) {
	if runID == "" {
		return nil, fmt.Errorf("%w: empty id", ErrRunNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? LIMIT 2`,
		runID, len(runID), runID)
	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}
	defer rows.Close()

	var found []*RunMetadata
	for rows.Next() {
		meta, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("ambiguous run id prefix: %s", runID)
	}
}

// LoadRecords reads the energy log written by a run.
func (s *Store) LoadRecords(ctx context.Context, runID string) ([]metrics.EnergyRecord, error) {
	meta, err := s.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	return meta.ReadRecords()
}

// ReadRecords parses the run's energy log.
func (m *RunMetadata) ReadRecords() ([]metrics.EnergyRecord, error) {
	if m.LogPath == "" {
		return nil, fmt.Errorf("%w: run %s wrote its records to stdout", ErrNoLog, m.ID)
	}
	return ReadLog(m.LogPath)
}

// logPathOf resolves the output path a run is catalogued with; stdout runs
// get none.
func logPathOf(output string) (string, error) {
	if output == config.StdoutOutput {
		return "", nil
	}
	return filepath.Abs(output)
}

type ExportData struct {
	Run     *RunMetadata           `json:"run"`
	Records []metrics.EnergyRecord `json:"records"`
}

// ExportJSON writes the run metadata and its records as indented JSON.
func (s *Store) ExportJSON(ctx context.Context, runID string, w io.Writer) error {
	meta, err := s.Load(ctx, runID)
	if err != nil {
		return err
	}
	records, err := meta.ReadRecords()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: meta, Records: records})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunMetadata, error) {
	var (
		meta    RunMetadata
		created int64
		cfgYAML string
	)
	err := row.Scan(
		&meta.ID,
		&created,
		&meta.Potential,
		&meta.SimType,
		&meta.Integrator,
		&meta.Particles,
		&meta.Dt,
		&meta.Steps,
		&meta.PrintFreq,
		&meta.Records,
		&meta.FinalTotal,
		&meta.FinalDrift,
		&meta.MaxDrift,
		&meta.LogPath,
		&cfgYAML,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	meta.CreatedAt = time.Unix(0, created).UTC()
	meta.Config = config.DefaultConfig()
	if err := yaml.Unmarshal([]byte(cfgYAML), meta.Config); err != nil {
		return nil, fmt.Errorf("decode run config: %w", err)
	}
	return &meta, nil
}

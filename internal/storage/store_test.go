package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/dynamo"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

var testRecords = []metrics.EnergyRecord{
	{Step: 0, Potential: 0.5, Kinetic: 0, Total: 0.5, Position: 1, Velocity: 0},
	{Step: 100, Potential: 0.25, Kinetic: 0.25, Total: 0.5, Position: 0.7071, Velocity: -0.7071},
}

func writeTestLog(t *testing.T, path string) {
	t.Helper()
	sink, err := CreateSink(path)
	require.NoError(t, err)
	for _, r := range testRecords {
		require.NoError(t, metrics.WriteRecord(sink, r))
	}
	require.NoError(t, sink.Close())
}

func TestStoreSaveLoad(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.Output = filepath.Join(t.TempDir(), "run.log")
	sum := Summary{Integrator: "verlet", Particles: 1, Records: 1001, FinalTotal: 1.645, FinalDrift: 1e-6, MaxDrift: 2e-6}

	id, err := st.Save(ctx, cfg, sum)
	require.NoError(t, err)
	require.Len(t, id, 36)

	meta, err := st.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)
	assert.Equal(t, config.PotentialHarmonic, meta.Potential)
	assert.Equal(t, config.SimNVE, meta.SimType)
	assert.Equal(t, "verlet", meta.Integrator)
	assert.Equal(t, 1001, meta.Records)
	assert.Equal(t, cfg.Dt, meta.Dt)
	assert.Equal(t, cfg.Output, meta.LogPath)
	assert.Equal(t, 2e-6, meta.MaxDrift)
	assert.Equal(t, cfg, meta.Config)
	assert.False(t, meta.CreatedAt.IsZero())

	byPrefix, err := st.Load(ctx, id[:8])
	require.NoError(t, err)
	assert.Equal(t, id, byPrefix.ID)
}

func TestStoreLoadMissing(t *testing.T) {
	st := createTestStore(t)

	_, err := st.Load(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = st.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreList(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	runs, err := st.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, runs)

	ids := map[string]bool{}
	for _, name := range []string{"euler", "verlet", "langevin"} {
		id, err := st.Save(ctx, config.DefaultConfig(), Summary{Integrator: name})
		require.NoError(t, err)
		ids[id] = true
	}

	runs, err = st.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for _, r := range runs {
		assert.True(t, ids[r.ID])
	}
	assert.False(t, runs[0].CreatedAt.Before(runs[2].CreatedAt))
}

func TestStoreReopen(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := Open(dir, logger)
	require.NoError(t, err)
	id, err := st.Save(context.Background(), config.DefaultConfig(), Summary{Integrator: "verlet"})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = Open(dir, logger)
	require.NoError(t, err)
	defer st.Close()

	meta, err := st.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "verlet", meta.Integrator)
}

func TestSinkReadLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.log")
	writeTestLog(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "0, 0.5, 0.0, 0.5, 1.0, 0.0\n"))

	records, err := ReadLog(path)
	require.NoError(t, err)
	assert.Equal(t, testRecords, records)
}

func TestParseLog(t *testing.T) {
	records, err := ParseLog(strings.NewReader("0, 1.0, 0.0, 1.0, 1.0, 0.0\n\n10, nan, inf, -inf, 0.5, 0.0\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 10, records[1].Step)
	assert.True(t, records[1].Kinetic > 1e308)

	_, err = ParseLog(strings.NewReader("0, 1.0, 0.0\n"))
	assert.ErrorContains(t, err, "line 1")
}

func TestReadLogMissing(t *testing.T) {
	_, err := ReadLog(filepath.Join(t.TempDir(), "missing.log"))
	assert.ErrorIs(t, err, dynamo.ErrIO)
}

func TestCreateSinkBadPath(t *testing.T) {
	_, err := CreateSink(filepath.Join(t.TempDir(), "no", "such", "dir", "out.log"))
	assert.ErrorIs(t, err, dynamo.ErrIO)
}

func TestNewSinkDoesNotCloseWriter(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(&buf, "buffer")
	require.NoError(t, sink.WriteLine("a\n"))
	assert.Zero(t, buf.Len(), "writes are buffered")
	require.NoError(t, sink.Close())
	assert.Equal(t, "a\n", buf.String())
}

func TestExportJSON(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.Output = filepath.Join(t.TempDir(), "run.log")
	writeTestLog(t, cfg.Output)

	id, err := st.Save(ctx, cfg, Summary{Integrator: "verlet", Records: len(testRecords)})
	require.NoError(t, err)

	records, err := st.LoadRecords(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, testRecords, records)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(ctx, id, &buf))

	var out struct {
		Run     RunMetadata            `json:"run"`
		Records []metrics.EnergyRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, id, out.Run.ID)
	assert.Equal(t, testRecords, out.Records)
	assert.Contains(t, buf.String(), `"potential": 0.5`)
}

func TestSaveResolvesLogPath(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	t.Chdir(dir)
	cfg := config.DefaultConfig()
	cfg.Output = "relative.log"
	writeTestLog(t, filepath.Join(dir, cfg.Output))

	id, err := st.Save(ctx, cfg, Summary{Integrator: "verlet"})
	require.NoError(t, err)

	meta, err := st.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(meta.LogPath))
	assert.Equal(t, "relative.log", filepath.Base(meta.LogPath))
	assert.Equal(t, "relative.log", meta.Config.Output)

	t.Chdir(t.TempDir())
	records, err := st.LoadRecords(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, testRecords, records)
}

func TestStdoutRunHasNoLog(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.Output = config.StdoutOutput
	id, err := st.Save(ctx, cfg, Summary{Integrator: "verlet"})
	require.NoError(t, err)

	meta, err := st.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, meta.LogPath)

	_, err = st.LoadRecords(ctx, id)
	assert.ErrorIs(t, err, ErrNoLog)
	assert.ErrorIs(t, st.ExportJSON(ctx, id, io.Discard), ErrNoLog)
}

package tracker

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecotrace/internal/config"
	"ecotrace/internal/domain"
	"ecotrace/internal/encode"
	"ecotrace/internal/logger"
	"ecotrace/internal/pricing"
)

// fakeSource replays a fixed list of energy deltas, then zeros.
type fakeSource struct {
	name   string
	deltas []float64
	err    error
}

func (f *fakeSource) Name() string        { return f.name }
func (f *fakeSource) Description() string { return f.name }

func (f *fakeSource) CalculateConsumption() (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if len(f.deltas) == 0 {
		return 0, nil
	}
	d := f.deltas[0]
	f.deltas = f.deltas[1:]
	return d, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ProjectName:           "test project",
		ExperimentDescription: "test experiment",
		FileName:              filepath.Join(t.TempDir(), "emission.csv"),
		MeasurePeriod:         time.Hour, // ticks are driven manually in tests
		PUE:                   1,
		EmissionFactor:        436.529,
		LockTimeout:           5 * time.Second,
	}
}

func newTestTracker(t *testing.T, cfg *config.Config, cpuSrc, gpuSrc, ramSrc domain.PowerSource) *Tracker {
	t.Helper()

	tr, err := New(cfg, logger.Discard())
	require.NoError(t, err)

	tr.newSources = func(logger.Logger) (domain.PowerSource, domain.PowerSource, domain.PowerSource) {
		return cpuSrc, gpuSrc, ramSrc
	}

	return tr
}

func readTable(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func col(name string) int {
	for i, c := range domain.LedgerColumns {
		if c == name {
			return i
		}
	}
	return -1
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.MeasurePeriod = 0

	_, err := New(cfg, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestRunningSession_AccumulatesAndWritesOneRow(t *testing.T) {
	cfg := testConfig(t)
	cfg.ElectricityPricing = pricing.Flat(0)

	cpuSrc := &fakeSource{name: "cpu", deltas: []float64{0.002}}
	ramSrc := &fakeSource{name: "ram", deltas: []float64{0.0005}}
	tr := newTestTracker(t, cfg, cpuSrc, nil, ramSrc)

	require.NoError(t, tr.Start())
	assert.Equal(t, domain.ModeRunning, tr.Mode())

	tr.tick()
	assert.InDelta(t, 0.0025, tr.Consumption(), 1e-12)
	assert.Zero(t, tr.Price())

	require.NoError(t, tr.Stop())

	rows := readTable(t, cfg.FileName)
	require.Len(t, rows, 2, "stop must leave exactly one row")

	row := rows[1]
	assert.Equal(t, tr.ID(), row[col("id")])
	power, err := strconv.ParseFloat(row[col("power_consumption(kWh)")], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.0025, power, 1e-12)
	assert.Equal(t, domain.NotApplicable, row[col("epoch")])
	assert.Equal(t, domain.NotApplicable, row[col("GPU_name")])
	assert.Equal(t, "0", row[col("cost")])

	co2, err := strconv.ParseFloat(row[col("CO2_emissions(kg)")], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.0025*436.529/1000, co2, 1e-12)
}

func TestRunningSession_TicksUpdateInPlace(t *testing.T) {
	cfg := testConfig(t)
	cpuSrc := &fakeSource{name: "cpu", deltas: []float64{0.001, 0.001, 0.001}}
	tr := newTestTracker(t, cfg, cpuSrc, nil, &fakeSource{name: "ram"})

	require.NoError(t, tr.Start())
	tr.tick()
	tr.tick()
	require.NoError(t, tr.Stop())

	rows := readTable(t, cfg.FileName)
	require.Len(t, rows, 2, "repeated ticks for one session share one row")

	power, err := strconv.ParseFloat(rows[1][col("power_consumption(kWh)")], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.003, power, 1e-12)
}

func TestPUE_MultipliesEverySample(t *testing.T) {
	cfg := testConfig(t)
	cfg.PUE = 1.5

	tr := newTestTracker(t, cfg, &fakeSource{name: "cpu", deltas: []float64{0.002}}, nil, &fakeSource{name: "ram"})
	require.NoError(t, tr.Start())
	tr.tick()

	assert.InDelta(t, 0.003, tr.Consumption(), 1e-12)
}

func TestPricing_CostFollowsEnergy(t *testing.T) {
	cfg := testConfig(t)
	cfg.ElectricityPricing = pricing.Flat(0.25)

	tr := newTestTracker(t, cfg, &fakeSource{name: "cpu", deltas: []float64{0.004}}, nil, &fakeSource{name: "ram"})
	require.NoError(t, tr.Start())
	tr.tick()

	assert.InDelta(t, 0.004*0.25, tr.Price(), 1e-12)
}

func TestFailingSource_DegradesToZero(t *testing.T) {
	cfg := testConfig(t)
	tr := newTestTracker(t, cfg,
		&fakeSource{name: "cpu", err: os.ErrPermission},
		&fakeSource{name: "gpu", deltas: []float64{0.001}},
		&fakeSource{name: "ram", deltas: []float64{0.0005}},
	)

	require.NoError(t, tr.Start())
	tr.tick()

	assert.InDelta(t, 0.0015, tr.Consumption(), 1e-12)
}

func TestSequence_Errors(t *testing.T) {
	tr := newTestTracker(t, testConfig(t), &fakeSource{name: "cpu"}, nil, &fakeSource{name: "ram"})

	assert.ErrorIs(t, tr.NewEpoch(nil), domain.ErrSequence)
	assert.ErrorIs(t, tr.StopTraining(), domain.ErrSequence)
	assert.ErrorIs(t, tr.Stop(), domain.ErrNotStarted)

	require.NoError(t, tr.StartTraining(1))
	assert.ErrorIs(t, tr.Start(), domain.ErrSequence)
	assert.ErrorIs(t, tr.StartTraining(1), domain.ErrSequence)
}

func TestTraining_EpochRowsAreContiguousAndOrdered(t *testing.T) {
	cfg := testConfig(t)
	cpuSrc := &fakeSource{name: "cpu", deltas: []float64{0.01, 0.02, 0.03}}
	tr := newTestTracker(t, cfg, cpuSrc, nil, &fakeSource{name: "ram"})

	require.NoError(t, tr.StartTraining(1))
	require.NoError(t, tr.NewEpoch(nil))
	require.NoError(t, tr.NewEpoch(map[string]string{"lr": "0.01", "loss": "0.5"}))
	require.NoError(t, tr.NewEpoch(nil))
	require.NoError(t, tr.StopTraining())

	select {
	case <-tr.loopDone:
	case <-time.After(5 * time.Second):
		t.Fatal("final training tick never ran")
	}

	rows := readTable(t, cfg.FileName)
	require.Len(t, rows, 5, "three epochs plus the final shutdown row")

	id := rows[1][col("id")]
	for i := 1; i <= 4; i++ {
		assert.Equal(t, id, rows[i][col("id")], "session rows must stay contiguous")
	}
	assert.Equal(t, "epoch: 1", rows[1][col("epoch")])
	assert.Equal(t, "epoch: 2, loss: 0.5, lr: 0.01", rows[2][col("epoch")])
	assert.Equal(t, "epoch: 3", rows[3][col("epoch")])
	assert.Equal(t, "epoch: 4", rows[4][col("epoch")])

	power, err := strconv.ParseFloat(rows[1][col("power_consumption(kWh)")], 64)
	require.NoError(t, err)
	assert.InDelta(t, 0.01, power, 1e-12, "totals reset at each epoch boundary")
}

func TestTraining_StopDelegatesToStopTraining(t *testing.T) {
	cfg := testConfig(t)
	tr := newTestTracker(t, cfg, &fakeSource{name: "cpu"}, nil, &fakeSource{name: "ram"})

	require.NoError(t, tr.StartTraining(7))
	require.NoError(t, tr.Stop())

	select {
	case <-tr.loopDone:
	case <-time.After(5 * time.Second):
		t.Fatal("final training tick never ran")
	}

	rows := readTable(t, cfg.FileName)
	require.Len(t, rows, 2)
	assert.Equal(t, "epoch: 7", rows[1][col("epoch")])
	assert.Equal(t, domain.ModeShuttingDown, tr.Mode())
}

func TestRestart_IssuesFreshSessionID(t *testing.T) {
	cfg := testConfig(t)
	tr := newTestTracker(t, cfg, &fakeSource{name: "cpu"}, nil, &fakeSource{name: "ram"})

	require.NoError(t, tr.Start())
	first := tr.ID()
	require.NotEmpty(t, first)

	require.NoError(t, tr.Start())
	assert.NotEqual(t, first, tr.ID())
}

func TestEncodedMirror_AppendsObfuscatedRows(t *testing.T) {
	cfg := testConfig(t)
	cfg.EncodeFile = filepath.Join(filepath.Dir(cfg.FileName), "encoded_emission.csv")

	tr := newTestTracker(t, cfg, &fakeSource{name: "cpu", deltas: []float64{0.002}}, nil, &fakeSource{name: "ram"})
	require.NoError(t, tr.Start())
	tr.tick()
	require.NoError(t, tr.Stop())

	plain := readTable(t, cfg.FileName)
	encoded := readTable(t, cfg.EncodeFile)

	require.Len(t, plain, 2)
	require.Len(t, encoded, 3, "every write appends to the mirror")
	assert.Equal(t, domain.LedgerColumns, encoded[0], "mirror header stays readable")

	idCell := encoded[1][col("id")]
	assert.NotEqual(t, tr.ID(), idCell)
	assert.Equal(t, tr.ID(), encode.Apply(idCell), "obfuscation must be reversible")
}

func TestStop_TwiceFails(t *testing.T) {
	tr := newTestTracker(t, testConfig(t), &fakeSource{name: "cpu"}, nil, &fakeSource{name: "ram"})

	require.NoError(t, tr.Start())
	require.NoError(t, tr.Stop())
	assert.ErrorIs(t, tr.Stop(), domain.ErrSequence)
}

// Package tracker is the measurement-accounting engine: it samples the
// host's power sources on a fixed interval, accumulates energy and cost
// for one session, and upserts the running total into the shared ledger.
package tracker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecotrace/internal/collector/cpu"
	"ecotrace/internal/collector/gpu"
	"ecotrace/internal/collector/ram"
	"ecotrace/internal/config"
	"ecotrace/internal/domain"
	"ecotrace/internal/emission"
	"ecotrace/internal/ledger"
	"ecotrace/internal/logger"
)

// Tracker is one measurement session. Create it per calculation; it is
// safe for concurrent use, but ticks for a session are serialized.
type Tracker struct {
	cfg *config.Config
	log logger.Logger

	writer  *ledger.Writer
	encoded *ledger.Writer
	factor  emission.Factor
	osName  string

	newSources func(log logger.Logger) (cpuSrc, gpuSrc, ramSrc domain.PowerSource)

	mu          sync.Mutex
	mode        domain.Mode
	halted      bool
	id          string
	startTime   time.Time
	energyKWh   float64
	cost        float64
	epoch       int
	annotations string

	cpu domain.PowerSource
	gpu domain.PowerSource
	ram domain.PowerSource

	cancel   context.CancelFunc
	wake     chan struct{}
	loopDone chan struct{}
}

// New validates the configuration and constructs an idle session.
func New(cfg *config.Config, log logger.Logger) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}

	opts := ledger.Options{LockTimeout: cfg.LockTimeout}

	t := &Tracker{
		cfg:        cfg,
		log:        log,
		writer:     ledger.NewWriter(cfg.FileName, opts, log),
		factor:     emission.Resolve(cfg.EmissionFactor, cfg.CountryCode, cfg.Region),
		osName:     osName(),
		mode:       domain.ModeFirstTime,
		newSources: defaultSources,
		wake:       make(chan struct{}, 1),
	}

	if cfg.EncodeFile != "" {
		t.encoded = ledger.NewAppender(cfg.EncodeFile, opts, log)
	}

	return t, nil
}

func defaultSources(log logger.Logger) (cpuSrc, gpuSrc, ramSrc domain.PowerSource) {
	g := gpu.NewCollector(log)
	if g.Available() {
		gpuSrc = g
	}
	return cpu.NewCollector(log), gpuSrc, ram.NewCollector(log)
}

// Start begins (or restarts) a continuous free-running session: fresh id,
// fresh totals, re-initialized power sources, ticking scheduler.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mode == domain.ModeTraining {
		return fmt.Errorf("%w: Start during training; use StartTraining, NewEpoch and StopTraining", domain.ErrSequence)
	}

	t.resetSessionLocked()
	t.mode = domain.ModeRunning
	t.startLoopLocked()

	t.log.Info("tracking started", "id", t.id, "period", t.cfg.MeasurePeriod)
	return nil
}

// StartTraining begins an epoch-delimited session. Rows are written only
// at epoch boundaries and on the final shutdown tick.
func (t *Tracker) StartTraining(startEpoch int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mode == domain.ModeTraining {
		return fmt.Errorf("%w: training already started", domain.ErrSequence)
	}

	t.resetSessionLocked()
	t.epoch = startEpoch
	t.mode = domain.ModeTraining
	t.startLoopLocked()

	t.log.Info("training tracking started", "id", t.id, "start_epoch", startEpoch)
	return nil
}

// NewEpoch snapshots the epoch in progress as a new ledger row, then
// resets the totals and advances to the next epoch. The annotations are
// folded into the epoch label.
func (t *Tracker) NewEpoch(annotations map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mode != domain.ModeTraining {
		return fmt.Errorf("%w: NewEpoch is only legal after StartTraining", domain.ErrSequence)
	}

	t.annotations = formatAnnotations(annotations)
	t.sampleLocked()
	err := t.writeLocked(true)
	t.annotations = ""
	if err != nil {
		return err
	}

	t.epoch++
	t.energyKWh, t.cost = 0, 0
	t.startTime = time.Now()

	return nil
}

// StopTraining marks the session shutting down; the next tick writes the
// final epoch row and deregisters the timer.
func (t *Tracker) StopTraining() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.mode != domain.ModeTraining || t.startTime.IsZero() {
		return fmt.Errorf("%w: StopTraining before StartTraining", domain.ErrSequence)
	}

	t.energyKWh, t.cost = 0, 0
	t.mode = domain.ModeShuttingDown

	// prompt the loop instead of waiting out the measure period
	select {
	case t.wake <- struct{}{}:
	default:
	}

	return nil
}

// Stop terminates the session. In training mode it delegates to
// StopTraining; otherwise it performs one final synchronous sample and
// write, then leaves the session inert.
func (t *Tracker) Stop() error {
	t.mu.Lock()

	if t.mode == domain.ModeTraining {
		t.mu.Unlock()
		return t.StopTraining()
	}
	defer t.mu.Unlock()

	if t.mode == domain.ModeShuttingDown {
		return fmt.Errorf("%w: session already stopped", domain.ErrSequence)
	}
	if t.startTime.IsZero() {
		return fmt.Errorf("%w: call Start or StartTraining first", domain.ErrNotStarted)
	}

	t.stopLoopLocked()
	t.sampleLocked()
	err := t.writeLocked(false)

	t.mode = domain.ModeShuttingDown
	t.finishLocked()

	t.log.Info("tracking stopped", "id", t.id)
	return err
}

// Consumption returns the session's cumulative energy in kWh.
func (t *Tracker) Consumption() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.energyKWh
}

// Price returns the session's cumulative electricity cost.
func (t *Tracker) Price() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cost
}

// ID returns the session id, empty before the first Start.
func (t *Tracker) ID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.id
}

// Mode returns the current lifecycle state.
func (t *Tracker) Mode() domain.Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// EmissionFactor returns the factor resolved at construction.
func (t *Tracker) EmissionFactor() emission.Factor { return t.factor }

// MeasurePeriod returns the sampling interval.
func (t *Tracker) MeasurePeriod() time.Duration { return t.cfg.MeasurePeriod }

func (t *Tracker) resetSessionLocked() {
	t.stopLoopLocked()
	t.halted = false
	t.id = uuid.NewString()
	t.startTime = time.Now()
	t.energyKWh = 0
	t.cost = 0
	t.epoch = 0
	t.annotations = ""
	t.cpu, t.gpu, t.ram = t.newSources(t.log)
}

func (t *Tracker) finishLocked() {
	t.stopLoopLocked()
	t.halted = true
	t.startTime = time.Time{}
	t.energyKWh = 0
	t.cost = 0
}

func (t *Tracker) startLoopLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	done := make(chan struct{})
	t.loopDone = done

	go t.run(ctx, done)
}

func (t *Tracker) stopLoopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

func (t *Tracker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.cfg.MeasurePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.wake:
		case <-ticker.C:
		}

		if t.tick() {
			return
		}
	}
}

// tick is one scheduled invocation of the sampling+accounting+write
// pipeline. Ticks are serialized under the session mutex. It reports
// whether the loop should deregister.
func (t *Tracker) tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.halted {
		return true
	}

	switch t.mode {
	case domain.ModeRunning:
		t.sampleLocked()
		if err := t.writeLocked(false); err != nil {
			t.log.Error("ledger write failed", "error", err)
		}
	case domain.ModeTraining:
		// accumulate only; rows are written at epoch boundaries
		t.sampleLocked()
	case domain.ModeShuttingDown:
		// final write of a training session: the epoch in progress
		// becomes its own row
		t.sampleLocked()
		if err := t.writeLocked(true); err != nil {
			t.log.Error("final ledger write failed", "error", err)
		}
		t.finishLocked()
		return true
	}

	return false
}

func osName() string {
	switch runtime.GOOS {
	case "darwin":
		return "MacOS"
	case "linux":
		return "Linux"
	case "windows":
		return "Windows"
	}
	return runtime.GOOS
}

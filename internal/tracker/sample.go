package tracker

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"ecotrace/internal/domain"
	"ecotrace/internal/encode"
)

// sampleLocked pulls the energy deltas from every power source, applies
// the PUE multiplier and folds the result into the session totals. A
// failing or absent source contributes zero rather than aborting.
func (t *Tracker) sampleLocked() {
	var delta float64

	if d, err := t.cpu.CalculateConsumption(); err != nil {
		t.log.Warn("cpu sample failed, counting zero", "error", err)
	} else {
		delta += d
	}

	if t.gpu != nil {
		if d, err := t.gpu.CalculateConsumption(); err != nil {
			t.log.Warn("gpu sample failed, counting zero", "error", err)
		} else {
			delta += d
		}
	}

	if d, err := t.ram.CalculateConsumption(); err != nil {
		t.log.Warn("ram sample failed, counting zero", "error", err)
	} else {
		delta += d
	}

	delta *= t.cfg.PUE
	t.energyKWh += delta

	if t.cfg.ElectricityPricing != nil {
		t.cost += t.cfg.ElectricityPricing.CostOf(delta, time.Now())
	}
}

// writeLocked upserts the session's current record into the ledger, and
// mirrors it (obfuscated, append-only) into the encoded log when one is
// configured.
func (t *Tracker) writeLocked(insertAsNew bool) error {
	rec := t.recordLocked()

	if err := t.writer.Upsert(rec, insertAsNew); err != nil {
		return err
	}

	if t.encoded != nil {
		if err := t.encoded.AppendRow(encode.Row(rec.Row())); err != nil {
			t.log.Error("encoded log append failed", "error", err)
		}
	}

	return nil
}

func (t *Tracker) recordLocked() domain.Record {
	gpuName := domain.NotApplicable
	if t.gpu != nil {
		gpuName = t.gpu.Description()
	}

	return domain.Record{
		ID:          t.id,
		ProjectName: t.cfg.ProjectName,
		Description: t.cfg.ExperimentDescription,
		EpochLabel:  t.epochLabelLocked(),
		StartTime:   t.startTime,
		DurationSec: time.Since(t.startTime).Seconds(),
		EnergyKWh:   t.energyKWh,
		CO2Kg:       t.factor.CO2Kg(t.energyKWh),
		CPUName:     t.cpu.Description(),
		GPUName:     gpuName,
		OS:          t.osName,
		Region:      t.factor.Label,
		Cost:        t.cost,
	}
}

func (t *Tracker) epochLabelLocked() string {
	if t.epoch == 0 {
		return domain.NotApplicable
	}

	label := fmt.Sprintf("epoch: %d", t.epoch)
	if t.annotations != "" {
		label += ", " + t.annotations
	}
	return label
}

func formatAnnotations(annotations map[string]string) string {
	if len(annotations) == 0 {
		return ""
	}

	keys := make([]string, 0, len(annotations))
	for key := range annotations {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(annotations[key])
	}
	return b.String()
}

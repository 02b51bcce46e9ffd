// Package gpu measures discrete GPU energy draw via the DRM subsystem.
// Hosts without a GPU are a supported configuration: the collector
// reports itself unavailable and contributes zero energy.
package gpu

import (
	"fmt"
	"time"

	"ecotrace/internal/domain"
	"ecotrace/internal/logger"
)

type Collector struct {
	log logger.Logger

	cards      []string
	model      string
	lastSample time.Time
}

func NewCollector(log logger.Logger) *Collector {
	c := &Collector{
		log:        log,
		cards:      detectCards(),
		model:      domain.NotApplicable,
		lastSample: time.Now(),
	}

	if len(c.cards) > 0 {
		c.model = readModel(c.cards[0])
	}

	return c
}

// Available reports whether any GPU was detected at construction.
func (c *Collector) Available() bool { return len(c.cards) > 0 }

func (c *Collector) Name() string { return c.model }

func (c *Collector) Description() string {
	if !c.Available() {
		return domain.NotApplicable
	}
	return fmt.Sprintf("%s %d device(s)", c.model, len(c.cards))
}

// CalculateConsumption returns the energy drawn by all detected cards
// since the previous call, in kWh. Absent or sensorless cards contribute
// zero rather than failing.
func (c *Collector) CalculateConsumption() (float64, error) {
	now := time.Now()
	elapsed := now.Sub(c.lastSample)
	c.lastSample = now

	if !c.Available() || elapsed <= 0 {
		return 0, nil
	}

	var watts float64
	for _, card := range c.cards {
		watts += readPowerWatt(card)
	}

	return watts * elapsed.Hours() / 1000, nil
}

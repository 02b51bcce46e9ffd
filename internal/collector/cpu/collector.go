// Package cpu measures the processor's energy draw through the powercap
// RAPL counter, with a TDP-scaled utilization estimate as fallback.
package cpu

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"ecotrace/internal/logger"
)

func NewCollector(log logger.Logger) *Collector {
	return &Collector{
		log:        log,
		model:      readModelName(),
		cores:      runtime.NumCPU(),
		tdpWatts:   defaultTDP,
		lastSample: time.Now(),
	}
}

func (c *Collector) Name() string { return c.model }

func (c *Collector) TDP() float64 { return c.tdpWatts }

func (c *Collector) Description() string {
	return fmt.Sprintf("%s/%d device(s), TDP:%g", c.model, c.cores, c.tdpWatts)
}

// CalculateConsumption returns the CPU energy drawn since the previous
// call, in kWh. Unreadable counters degrade to an estimate, never an error.
func (c *Collector) CalculateConsumption() (float64, error) {
	now := time.Now()
	elapsed := now.Sub(c.lastSample)
	c.lastSample = now

	if elapsed <= 0 {
		return 0, nil
	}

	if kwh, ok := c.readRAPLDelta(); ok {
		return kwh, nil
	}

	watts := c.tdpWatts * c.readLoadShare()
	return watts * elapsed.Hours() / 1000, nil
}

func readModelName() string {
	b, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return "Unknown CPU"
	}

	for _, line := range strings.SplitAfter(string(b), "\n") {
		if _, name, ok := strings.Cut(line, "model name"); ok {
			if _, v, ok := strings.Cut(name, ":"); ok {
				return strings.TrimSpace(v)
			}
		}
	}

	return "Unknown CPU"
}

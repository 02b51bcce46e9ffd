// Package ram estimates memory energy draw with a constant per-gigabyte
// wattage applied to the installed capacity.
package ram

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ecotrace/internal/logger"
)

// wattsPerGB is the assumed draw of installed DRAM.
const wattsPerGB = 0.375

const meminfoPath = "/proc/meminfo"

type Collector struct {
	log logger.Logger

	totalGB    float64
	lastSample time.Time
}

func NewCollector(log logger.Logger) *Collector {
	return &Collector{
		log:        log,
		totalGB:    readTotalGB(),
		lastSample: time.Now(),
	}
}

func (c *Collector) Name() string { return "RAM" }

func (c *Collector) Description() string {
	return fmt.Sprintf("%.1f GB RAM", c.totalGB)
}

// CalculateConsumption returns the memory energy drawn since the previous
// call, in kWh.
func (c *Collector) CalculateConsumption() (float64, error) {
	now := time.Now()
	elapsed := now.Sub(c.lastSample)
	c.lastSample = now

	if elapsed <= 0 {
		return 0, nil
	}

	watts := c.totalGB * wattsPerGB
	return watts * elapsed.Hours() / 1000, nil
}

func readTotalGB() float64 {
	b, err := os.ReadFile(meminfoPath)
	if err != nil {
		return 0
	}

	for _, line := range strings.SplitAfter(string(b), "\n") {
		if _, v, ok := strings.Cut(line, "MemTotal:"); ok {
			fields := strings.Fields(v)
			if len(fields) == 0 {
				break
			}
			kb, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				break
			}
			return kb / (1024 * 1024)
		}
	}

	return 0
}

package cpu

import (
	"os"
	"strconv"
	"strings"
)

const (
	raplEnergyPath = "/sys/class/powercap/intel-rapl/intel-rapl:0/energy_uj"
	loadavgPath    = "/proc/loadavg"

	microjoulesPerKWh = 3.6e12
)

// readRAPLDelta returns the energy drawn since the previous call as kWh.
// The first successful read only primes the counter and reports zero.
func (c *Collector) readRAPLDelta() (float64, bool) {
	b, err := os.ReadFile(raplEnergyPath)
	if err != nil {
		return 0, false
	}

	energy, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, false
	}

	if c.lastEnergyUJ == 0 {
		c.lastEnergyUJ = energy
		return 0, true
	}

	delta := energy - c.lastEnergyUJ
	if energy < c.lastEnergyUJ {
		// counter wrapped
		delta = (^uint64(0) - c.lastEnergyUJ) + energy
	}
	c.lastEnergyUJ = energy

	return float64(delta) / microjoulesPerKWh, true
}

// readLoadShare approximates utilization as the 1-minute load average
// divided by the core count, clamped to [0, 1].
func (c *Collector) readLoadShare() float64 {
	b, err := os.ReadFile(loadavgPath)
	if err != nil {
		return 0.5
	}

	fields := strings.Fields(string(b))
	if len(fields) == 0 {
		return 0.5
	}

	load, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || c.cores == 0 {
		return 0.5
	}

	share := load / float64(c.cores)
	if share > 1 {
		share = 1
	}
	if share < 0 {
		share = 0
	}

	return share
}

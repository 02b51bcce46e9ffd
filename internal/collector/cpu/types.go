package cpu

import (
	"time"

	"ecotrace/internal/logger"
)

// defaultTDP is assumed when the package TDP cannot be determined from
// the platform, matching a mainstream desktop part.
const defaultTDP = 100.0

type Collector struct {
	log logger.Logger

	model    string
	cores    int
	tdpWatts float64

	lastEnergyUJ uint64
	lastSample   time.Time
}

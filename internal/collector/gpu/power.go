package gpu

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// readPowerWatt reads the card's instantaneous draw from its hwmon node
// (reported in microwatts). Returns 0 when the card exposes no sensor.
func readPowerWatt(card string) float64 {
	pattern := filepath.Join("/sys/class/drm", card, "device/hwmon/hwmon*/power1_average")
	matches, _ := filepath.Glob(pattern)

	if len(matches) == 0 {
		pattern = filepath.Join("/sys/class/drm", card, "device/hwmon/hwmon*/power1_input")
		matches, _ = filepath.Glob(pattern)
	}

	for _, f := range matches {
		b, err := os.ReadFile(f)
		if err != nil {
			continue
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
		if err == nil && v > 0 {
			return v / 1e6
		}
	}

	return 0
}

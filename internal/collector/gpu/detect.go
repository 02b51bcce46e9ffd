package gpu

import (
	"os"
	"path/filepath"
	"strings"
)

func detectCards() []string {
	matches, _ := filepath.Glob("/sys/class/drm/card[0-9]")

	var cards []string
	for _, m := range matches {
		if _, err := os.Stat(filepath.Join(m, "device")); err == nil {
			cards = append(cards, filepath.Base(m))
		}
	}

	return cards
}

func readModel(card string) string {
	for _, name := range []string{"product_name", "label"} {
		b, err := os.ReadFile(filepath.Join("/sys/class/drm", card, "device", name))
		if err == nil {
			if v := strings.TrimSpace(string(b)); v != "" {
				return v
			}
		}
	}

	b, err := os.ReadFile(filepath.Join("/sys/class/drm", card, "device/uevent"))
	if err == nil {
		for _, line := range strings.SplitAfter(string(b), "\n") {
			if _, v, ok := strings.Cut(line, "DRIVER="); ok {
				return strings.TrimSpace(v) + " GPU"
			}
		}
	}

	return "Unknown GPU"
}

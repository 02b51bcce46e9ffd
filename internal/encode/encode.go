// Package encode obfuscates ledger values for the secondary encoded log.
// The scheme is ROT47: every printable ASCII character is rotated half-way
// around the printable range, so applying it twice restores the original.
package encode

// Apply obfuscates a single field value. Characters outside the printable
// ASCII range (and spaces) pass through unchanged.
func Apply(value string) string {
	out := []byte(value)
	for i, c := range out {
		if c >= '!' && c <= '~' {
			out[i] = '!' + (c-'!'+47)%94
		}
	}
	return string(out)
}

// Row obfuscates every cell of a ledger row.
func Row(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = Apply(v)
	}
	return out
}

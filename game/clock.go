package game

import "fmt"

// FormatClock renders a match clock value, in seconds, as MM:SS. The hour
// part only shows up once a match has run that long.
func FormatClock(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

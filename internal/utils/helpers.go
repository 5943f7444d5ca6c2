package utils

import (
	"fmt"
	"time"
)

// Now is swapped in tests for a fixed clock.
var Now = time.Now

func AgeSince(t time.Time) string {
	d := Now().Sub(t)

	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	mins := int(d.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}

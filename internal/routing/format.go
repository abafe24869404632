// server/internal/routing/format.go
package routing

import "fmt"

// FormatDistance renders meters in human units: "850 m", "1.7 km", "12 km".
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(meters))
	}
	km := meters / 1000
	if km < 10 {
		return fmt.Sprintf("%.1f km", km)
	}
	return fmt.Sprintf("%d km", int(km))
}

// FormatDuration renders seconds in human units: "45 sec", "12 min", "1h 30min".
func FormatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%d sec", int(seconds))
	}
	if seconds < 3600 {
		return fmt.Sprintf("%d min", int(seconds/60))
	}
	hours := int(seconds / 3600)
	minutes := int(seconds/60) % 60
	if minutes > 0 {
		return fmt.Sprintf("%dh %dmin", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}

package utils

import (
	"fmt"
)

// FormatSize converts a byte length into a human-readable string with two
// decimal places, such as "512.00 B" or "1.50 KB". The value is divided by
// 1024 until it drops below 1024 or the largest supported unit is reached.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(units)-1 {
		value /= 1024
		unitIndex++
	}
	return fmt.Sprintf("%.2f %s", value, units[unitIndex])
}

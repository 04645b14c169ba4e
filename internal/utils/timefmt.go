package utils

import (
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp returns the provided time in the local time zone using a
// date-and-seconds layout. The zero time yields an empty string.
func FormatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.In(time.Local).Format(timestampLayout)
}

package logsink

import (
	"fmt"
	"time"
)

// DateFolderFormat is the format string for organizing logs by date in blob storage
// Format: YYYY/MM/DD/
const DateFolderFormat = "%d/%02d/%02d"

// FormatDateFolder returns the date-based folder path for a given year, month, day
func FormatDateFolder(year int, month int, day int) string {
	return fmt.Sprintf(DateFolderFormat, year, month, day)
}

// BlobPath names one process's log blob: date folder, then host and start time.
func BlobPath(host string, started time.Time) string {
	started = started.UTC()
	if host == "" {
		host = "recipegen"
	}
	return fmt.Sprintf("%s/%s-%s.jsonl", FormatDateFolder(started.Year(), int(started.Month()), started.Day()), host, started.Format("150405"))
}

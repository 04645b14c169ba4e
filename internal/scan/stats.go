// Package scan implements the recursive directory traversal that renders the
// tree view and aggregates the running scan statistics.
package scan

import (
	"path/filepath"
	"sort"
	"strings"
)

// NoExtensionKey is the sentinel bucket for files that carry no extension.
const NoExtensionKey = "no_ext"

// maxLargestFiles bounds the number of tracked largest files.
const maxLargestFiles = 10

// FileRecord captures the path and size of a single scanned file.
type FileRecord struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Statistics aggregates the running totals of one scan. A single instance is
// mutated in place during traversal and read by the report renderers afterwards.
type Statistics struct {
	TotalDirs    int            `json:"total_dirs"`
	TotalFiles   int            `json:"total_files"`
	TotalSize    int64          `json:"total_size"`
	FileTypes    map[string]int `json:"file_types"`
	LargestFiles []FileRecord   `json:"largest_files"`
	SkippedDirs  int            `json:"skipped_dirs"`
}

// NewStatistics returns an empty Statistics value ready for recording.
func NewStatistics() *Statistics {
	return &Statistics{FileTypes: make(map[string]int)}
}

// RecordFile accounts for one regular file: overall totals, the extension
// bucket, and the bounded largest-files list. The list is re-trimmed on every
// insertion that pushes it past the bound, so it never holds more than
// maxLargestFiles records between calls.
func (statistics *Statistics) RecordFile(filePath string, fileSize int64) {
	statistics.TotalFiles++
	statistics.TotalSize += fileSize
	statistics.FileTypes[NormalizeExtension(filepath.Base(filePath))]++
	statistics.LargestFiles = append(statistics.LargestFiles, FileRecord{Path: filePath, Size: fileSize})
	if len(statistics.LargestFiles) > maxLargestFiles {
		sort.SliceStable(statistics.LargestFiles, func(first, second int) bool {
			return statistics.LargestFiles[first].Size > statistics.LargestFiles[second].Size
		})
		statistics.LargestFiles = statistics.LargestFiles[:maxLargestFiles]
	}
}

// RecordDirectory accounts for a directory the scan descends into.
func (statistics *Statistics) RecordDirectory() {
	statistics.TotalDirs++
}

// RecordSkippedDirectory accounts for an excluded directory the scan does not enter.
func (statistics *Statistics) RecordSkippedDirectory() {
	statistics.SkippedDirs++
}

// NormalizeExtension returns the lowercase extension of a file name including
// the leading dot, or NoExtensionKey when the name carries no extension.
// Dotfile names such as ".gitignore" and names ending in a bare dot count as
// having no extension.
func NormalizeExtension(fileName string) string {
	extension := strings.ToLower(filepath.Ext(fileName))
	if extension == "" || extension == "." || extension == strings.ToLower(fileName) {
		return NoExtensionKey
	}
	return extension
}

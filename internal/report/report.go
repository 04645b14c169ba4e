// Package report renders the scan header, the summary statistics block, and
// the machine readable scan document.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/geobenipy/Folder-Structure/internal/scan"
	"github.com/geobenipy/Folder-Structure/internal/utils"
)

const (
	// FormatRaw identifies the plain text output format.
	FormatRaw = "raw"
	// FormatJSON identifies the machine readable output format.
	FormatJSON = "json"
)

const (
	bannerWidth     = 70
	bannerCharacter = "="
	ruleCharacter   = "-"

	summaryTitle = "SCAN STATISTICS"

	scanningFormat = "Scanning: %s\n"
	startedFormat  = "Started: %s\n"

	totalDirectoriesFormat   = "Total Directories: %d\n"
	totalFilesFormat         = "Total Files: %d\n"
	totalSizeFormat          = "Total Size: %s\n"
	skippedDirectoriesFormat = "Skipped Directories: %d\n"

	fileTypesHeader     = "File Type Distribution:"
	fileTypeEntryFormat = "  %-15s : %5d files\n"
	maxFileTypeEntries  = 15

	largestFilesHeader     = "Largest Files:"
	largestFileEntryFormat = "  %12s  %s\n"
)

// fileTypeEntry pairs an extension bucket with its file count for sorting.
type fileTypeEntry struct {
	extension string
	count     int
}

// Document is the machine readable form of one completed scan.
type Document struct {
	Root         string            `json:"root"`
	TotalDirs    int               `json:"total_dirs"`
	TotalFiles   int               `json:"total_files"`
	TotalSize    int64             `json:"total_size"`
	FileTypes    map[string]int    `json:"file_types"`
	LargestFiles []scan.FileRecord `json:"largest_files"`
	SkippedDirs  int               `json:"skipped_dirs"`
}

// WriteHeader prints the run banner shown before the tree: the root being
// scanned, the start timestamp, a rule, and the root's base name.
func WriteHeader(writer io.Writer, rootPath string, startedAt time.Time) {
	fmt.Fprintln(writer)
	fmt.Fprintf(writer, scanningFormat, rootPath)
	fmt.Fprintf(writer, startedFormat, utils.FormatTimestamp(startedAt))
	fmt.Fprintln(writer, strings.Repeat(ruleCharacter, bannerWidth))
	fmt.Fprintf(writer, "%s/\n", filepath.Base(rootPath))
}

// Write renders the summary statistics block in its fixed text layout. The
// distribution and largest-files sections only appear when they carry data;
// the skipped-directories line only appears when at least one directory was
// skipped.
func Write(writer io.Writer, statistics *scan.Statistics, rootPath string) {
	banner := strings.Repeat(bannerCharacter, bannerWidth)
	fmt.Fprintf(writer, "\n%s\n", banner)
	fmt.Fprintln(writer, summaryTitle)
	fmt.Fprintln(writer, banner)
	fmt.Fprintf(writer, totalDirectoriesFormat, statistics.TotalDirs)
	fmt.Fprintf(writer, totalFilesFormat, statistics.TotalFiles)
	fmt.Fprintf(writer, totalSizeFormat, utils.FormatSize(statistics.TotalSize))
	if statistics.SkippedDirs > 0 {
		fmt.Fprintf(writer, skippedDirectoriesFormat, statistics.SkippedDirs)
	}

	if len(statistics.FileTypes) > 0 {
		fmt.Fprintf(writer, "\n%s\n", fileTypesHeader)
		for _, entry := range sortedFileTypes(statistics.FileTypes) {
			fmt.Fprintf(writer, fileTypeEntryFormat, entry.extension, entry.count)
		}
	}

	if len(statistics.LargestFiles) > 0 {
		fmt.Fprintf(writer, "\n%s\n", largestFilesHeader)
		for _, record := range sortedLargestFiles(statistics.LargestFiles) {
			fmt.Fprintf(writer, largestFileEntryFormat, utils.FormatSize(record.Size), utils.RelativePathOrSelf(record.Path, rootPath))
		}
	}

	fmt.Fprintln(writer, banner)
}

// WriteJSON renders the statistics as an indented JSON document. File paths
// are reported relative to the scan root, largest first.
func WriteJSON(writer io.Writer, statistics *scan.Statistics, rootPath string) error {
	document := Document{
		Root:         rootPath,
		TotalDirs:    statistics.TotalDirs,
		TotalFiles:   statistics.TotalFiles,
		TotalSize:    statistics.TotalSize,
		FileTypes:    statistics.FileTypes,
		LargestFiles: make([]scan.FileRecord, 0, len(statistics.LargestFiles)),
		SkippedDirs:  statistics.SkippedDirs,
	}
	for _, record := range sortedLargestFiles(statistics.LargestFiles) {
		document.LargestFiles = append(document.LargestFiles, scan.FileRecord{
			Path: utils.RelativePathOrSelf(record.Path, rootPath),
			Size: record.Size,
		})
	}

	encoded, marshalError := json.MarshalIndent(document, "", "  ")
	if marshalError != nil {
		return fmt.Errorf("marshaling scan document: %w", marshalError)
	}
	_, writeError := fmt.Fprintln(writer, string(encoded))
	return writeError
}

// sortedFileTypes orders extension buckets by descending count, breaking ties
// by extension name, and caps the result at maxFileTypeEntries.
func sortedFileTypes(fileTypes map[string]int) []fileTypeEntry {
	entries := make([]fileTypeEntry, 0, len(fileTypes))
	for extension, count := range fileTypes {
		entries = append(entries, fileTypeEntry{extension: extension, count: count})
	}
	sort.Slice(entries, func(first, second int) bool {
		if entries[first].count != entries[second].count {
			return entries[first].count > entries[second].count
		}
		return entries[first].extension < entries[second].extension
	})
	if len(entries) > maxFileTypeEntries {
		entries = entries[:maxFileTypeEntries]
	}
	return entries
}

// sortedLargestFiles returns a copy of the records ordered largest first.
// Equal sizes keep their insertion order.
func sortedLargestFiles(records []scan.FileRecord) []scan.FileRecord {
	ordered := make([]scan.FileRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(first, second int) bool {
		return ordered[first].Size > ordered[second].Size
	})
	return ordered
}

package scan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"

	"github.com/geobenipy/Folder-Structure/internal/utils"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	directorySuffix        = "/"
	skippedDirectoryMarker = " [SKIPPED]"
	permissionDeniedMarker = "[Permission Denied]"

	warningListDirectoryFormat = "Warning: unable to read directory %s: %v\n"
)

// Options configures a single scan run.
type Options struct {
	// Target holds the validated root and the exclusion set.
	Target Target
	// MinimumFileSize drops files smaller than this many bytes from the tree
	// and from the statistics. Zero keeps every file.
	MinimumFileSize int64
	// GitIgnore filters out entries matched by the root's .gitignore when
	// non-nil. Matched entries produce no output and no statistics.
	GitIgnore *ignore.GitIgnore
}

// directoryEntry is one visible child of a directory after filtering. File
// sizes are resolved during filtering so each file is queried exactly once.
type directoryEntry struct {
	name        string
	isDirectory bool
	size        int64
}

// Scanner walks a directory tree depth first in a single pass, writing one
// tree line per visited entry and aggregating statistics as it goes. The
// traversal is synchronous and single threaded; a Scanner must not be shared
// between goroutines.
type Scanner struct {
	filesystem  afero.Fs
	writer      io.Writer
	errorWriter io.Writer
	options     Options
	statistics  *Statistics
}

// NewScanner constructs a Scanner over the provided filesystem. Tree lines go
// to writer; diagnostics for unreadable directories go to errorWriter.
func NewScanner(filesystem afero.Fs, writer io.Writer, errorWriter io.Writer, options Options) *Scanner {
	return &Scanner{
		filesystem:  filesystem,
		writer:      writer,
		errorWriter: errorWriter,
		options:     options,
		statistics:  NewStatistics(),
	}
}

// Run performs the full traversal starting at the target root and returns the
// collected statistics. Child entries of the root are printed as a side
// effect; the line naming the root itself belongs to the report header.
func (scanner *Scanner) Run() *Statistics {
	scanner.scanDirectory(scanner.options.Target.AbsolutePath, utils.EmptyString)
	return scanner.statistics
}

// scanDirectory lists one directory, prints its visible children in order, and
// recurses into subdirectories with an extended prefix. Directories sort before
// files; names compare case-insensitively. A listing that fails with a
// permission error prints a marker line in place of the children and the walk
// moves on; no other failure interrupts the traversal either.
func (scanner *Scanner) scanDirectory(directoryPath string, prefix string) {
	fileInformations, readError := afero.ReadDir(scanner.filesystem, directoryPath)
	if readError != nil {
		if os.IsPermission(readError) {
			fmt.Fprintf(scanner.writer, "%s%s\n", prefix, permissionDeniedMarker)
			return
		}
		fmt.Fprintf(scanner.errorWriter, warningListDirectoryFormat, directoryPath, readError)
		return
	}

	visibleEntries := scanner.collectEntries(directoryPath, fileInformations)
	sort.SliceStable(visibleEntries, func(first, second int) bool {
		if visibleEntries[first].isDirectory != visibleEntries[second].isDirectory {
			return visibleEntries[first].isDirectory
		}
		return strings.ToLower(visibleEntries[first].name) < strings.ToLower(visibleEntries[second].name)
	})

	for entryIndex, entry := range visibleEntries {
		isFinal := entryIndex == len(visibleEntries)-1
		connector := treeBranchConnector
		padding := treeBranchPadding
		if isFinal {
			connector = treeLastConnector
			padding = treeLastPadding
		}
		entryPath := filepath.Join(directoryPath, entry.name)

		if entry.isDirectory {
			if scanner.options.Target.IsExcluded(entry.name) {
				scanner.statistics.RecordSkippedDirectory()
				fmt.Fprintf(scanner.writer, "%s%s%s%s%s\n", prefix, connector, entry.name, directorySuffix, skippedDirectoryMarker)
				continue
			}
			scanner.statistics.RecordDirectory()
			fmt.Fprintf(scanner.writer, "%s%s%s%s\n", prefix, connector, entry.name, directorySuffix)
			scanner.scanDirectory(entryPath, prefix+padding)
			continue
		}

		scanner.statistics.RecordFile(entryPath, entry.size)
		fmt.Fprintf(scanner.writer, "%s%s%s (%s)\n", prefix, connector, entry.name, utils.FormatSize(entry.size))
	}
}

// collectEntries filters one directory listing down to the entries the tree
// shows. Entries that are neither regular files nor directories are dropped
// silently, as are entries matched by the optional gitignore filter and files
// below the minimum size.
func (scanner *Scanner) collectEntries(directoryPath string, fileInformations []os.FileInfo) []directoryEntry {
	visibleEntries := make([]directoryEntry, 0, len(fileInformations))
	for _, fileInformation := range fileInformations {
		entryPath := filepath.Join(directoryPath, fileInformation.Name())
		if scanner.isIgnored(entryPath) {
			continue
		}
		if fileInformation.IsDir() {
			visibleEntries = append(visibleEntries, directoryEntry{name: fileInformation.Name(), isDirectory: true})
			continue
		}
		if !fileInformation.Mode().IsRegular() {
			continue
		}
		fileSize := scanner.fileSize(entryPath)
		if fileSize < scanner.options.MinimumFileSize {
			continue
		}
		visibleEntries = append(visibleEntries, directoryEntry{name: fileInformation.Name(), size: fileSize})
	}
	return visibleEntries
}

// isIgnored reports whether the optional gitignore filter matches the entry.
func (scanner *Scanner) isIgnored(entryPath string) bool {
	if scanner.options.GitIgnore == nil {
		return false
	}
	relativePath := utils.RelativePathOrSelf(entryPath, scanner.options.Target.AbsolutePath)
	return scanner.options.GitIgnore.MatchesPath(relativePath)
}

// fileSize queries a file's size through a dedicated Stat call. A file whose
// size cannot be read is still shown and counted, with a size of zero.
func (scanner *Scanner) fileSize(filePath string) int64 {
	fileInformation, statError := scanner.filesystem.Stat(filePath)
	if statError != nil {
		return 0
	}
	return fileInformation.Size()
}

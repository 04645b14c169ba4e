package scan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	errorAbsolutePathFormat = "unable to resolve absolute path for %s: %w"
	errorPathMissingFormat  = "path '%s' does not exist"
	errorStatFormat         = "could not stat path '%s': %w"
	errorNotDirectoryFormat = "path '%s' is not a directory"
)

// Target is a validated scan root together with the set of directory base
// names the traversal must not enter. A Target does not change for the
// duration of a run.
type Target struct {
	// AbsolutePath is the cleaned absolute path of the scan root.
	AbsolutePath string

	excludedDirectories map[string]struct{}
}

// ResolveTarget converts rootPath to absolute form, verifies that it exists
// and is a directory, and captures a copy of the excluded directory names.
// Validation failures are fatal to a run; nothing has been printed yet when
// they surface.
func ResolveTarget(filesystem afero.Fs, rootPath string, excludedDirectories []string) (Target, error) {
	absolutePath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return Target{}, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	cleanPath := filepath.Clean(absolutePath)

	fileInformation, fileStatusError := filesystem.Stat(cleanPath)
	if fileStatusError != nil {
		if os.IsNotExist(fileStatusError) {
			return Target{}, fmt.Errorf(errorPathMissingFormat, rootPath)
		}
		return Target{}, fmt.Errorf(errorStatFormat, rootPath, fileStatusError)
	}
	if !fileInformation.IsDir() {
		return Target{}, fmt.Errorf(errorNotDirectoryFormat, rootPath)
	}

	excludedSet := make(map[string]struct{}, len(excludedDirectories))
	for _, directoryName := range excludedDirectories {
		excludedSet[directoryName] = struct{}{}
	}
	return Target{AbsolutePath: cleanPath, excludedDirectories: excludedSet}, nil
}

// IsExcluded reports whether a directory base name is in the exclusion set.
func (target Target) IsExcluded(directoryName string) bool {
	_, found := target.excludedDirectories[directoryName]
	return found
}

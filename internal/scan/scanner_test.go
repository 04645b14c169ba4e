package scan

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"

	"github.com/geobenipy/Folder-Structure/internal/utils"
)

// failingFs wraps a filesystem and injects errors for specific paths so
// unreadable directories and files can be simulated on a real fixture tree.
type failingFs struct {
	afero.Fs
	openErrors map[string]error
	statErrors map[string]error
}

func (filesystem *failingFs) Open(name string) (afero.File, error) {
	if injectedError, found := filesystem.openErrors[name]; found {
		return nil, &os.PathError{Op: "open", Path: name, Err: injectedError}
	}
	return filesystem.Fs.Open(name)
}

func (filesystem *failingFs) Stat(name string) (os.FileInfo, error) {
	if injectedError, found := filesystem.statErrors[name]; found {
		return nil, &os.PathError{Op: "stat", Path: name, Err: injectedError}
	}
	return filesystem.Fs.Stat(name)
}

// runScanner resolves the target, performs a full scan, and returns the tree
// output, the diagnostic output, and the collected statistics.
func runScanner(testingInstance *testing.T, filesystem afero.Fs, rootPath string, excludedDirectories []string, minimumFileSize int64, gitignoreFilter *ignore.GitIgnore) (string, string, *Statistics) {
	testingInstance.Helper()
	target, targetError := ResolveTarget(filesystem, rootPath, excludedDirectories)
	if targetError != nil {
		testingInstance.Fatalf("unexpected target error: %v", targetError)
	}
	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	scanner := NewScanner(filesystem, outputBuffer, errorBuffer, Options{
		Target:          target,
		MinimumFileSize: minimumFileSize,
		GitIgnore:       gitignoreFilter,
	})
	statistics := scanner.Run()
	return outputBuffer.String(), errorBuffer.String(), statistics
}

func writeFixtureFile(testingInstance *testing.T, filePath string, content string) {
	testingInstance.Helper()
	if mkdirError := os.MkdirAll(filepath.Dir(filePath), 0o755); mkdirError != nil {
		testingInstance.Fatalf("unexpected mkdir error: %v", mkdirError)
	}
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingInstance.Fatalf("unexpected write error: %v", writeError)
	}
}

func TestScannerRendersTreeInOrder(testingInstance *testing.T) {
	fixtureRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, ".git", "HEAD"), "ref")
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "alpha", "nested.txt"), "12345")
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "beta.txt"), "0123456789")
	if mkdirError := os.MkdirAll(filepath.Join(fixtureRoot, "zeta"), 0o755); mkdirError != nil {
		testingInstance.Fatalf("unexpected mkdir error: %v", mkdirError)
	}

	output, errorOutput, statistics := runScanner(testingInstance, afero.NewOsFs(), fixtureRoot, []string{".git"}, 0, nil)

	expectedOutput := `├── .git/ [SKIPPED]
├── alpha/
│   └── nested.txt (5.00 B)
├── zeta/
└── beta.txt (10.00 B)
`
	if output != expectedOutput {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expectedOutput, output)
	}
	if errorOutput != "" {
		testingInstance.Errorf("expected no diagnostics, got:\n%s", errorOutput)
	}
	if statistics.TotalDirs != 2 || statistics.TotalFiles != 2 || statistics.TotalSize != 15 {
		testingInstance.Errorf("expected totals 2/2/15, got %d/%d/%d", statistics.TotalDirs, statistics.TotalFiles, statistics.TotalSize)
	}
	if statistics.SkippedDirs != 1 {
		testingInstance.Errorf("expected 1 skipped directory, got %d", statistics.SkippedDirs)
	}
	if statistics.FileTypes[".txt"] != 2 {
		testingInstance.Errorf("expected 2 .txt files, got %d", statistics.FileTypes[".txt"])
	}
}

func TestScannerOrdersDirectoriesFirstCaseInsensitive(testingInstance *testing.T) {
	fixtureRoot := testingInstance.TempDir()
	for _, directoryName := range []string{"Delta", "echo"} {
		if mkdirError := os.MkdirAll(filepath.Join(fixtureRoot, directoryName), 0o755); mkdirError != nil {
			testingInstance.Fatalf("unexpected mkdir error: %v", mkdirError)
		}
	}
	for _, fileName := range []string{"apple.txt", "Banana.txt", "cherry.TXT"} {
		writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, fileName), "x")
	}

	output, _, statistics := runScanner(testingInstance, afero.NewOsFs(), fixtureRoot, nil, 0, nil)

	expectedOutput := `├── Delta/
├── echo/
├── apple.txt (1.00 B)
├── Banana.txt (1.00 B)
└── cherry.TXT (1.00 B)
`
	if output != expectedOutput {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expectedOutput, output)
	}
	if statistics.FileTypes[".txt"] != 3 {
		testingInstance.Errorf("expected 3 .txt files after lowercasing, got %d", statistics.FileTypes[".txt"])
	}
}

func TestScannerMarksUnreadableDirectories(testingInstance *testing.T) {
	fixtureRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "locked", "hidden.txt"), "hidden")
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "open.txt"), "data")

	filesystem := &failingFs{
		Fs:         afero.NewOsFs(),
		openErrors: map[string]error{filepath.Join(fixtureRoot, "locked"): os.ErrPermission},
	}
	output, errorOutput, statistics := runScanner(testingInstance, filesystem, fixtureRoot, nil, 0, nil)

	expectedOutput := `├── locked/
│   [Permission Denied]
└── open.txt (4.00 B)
`
	if output != expectedOutput {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expectedOutput, output)
	}
	if errorOutput != "" {
		testingInstance.Errorf("expected no diagnostics for a permission failure, got:\n%s", errorOutput)
	}
	if statistics.TotalDirs != 1 || statistics.TotalFiles != 1 || statistics.TotalSize != 4 {
		testingInstance.Errorf("expected totals 1/1/4, got %d/%d/%d", statistics.TotalDirs, statistics.TotalFiles, statistics.TotalSize)
	}
}

func TestScannerWarnsOnUnreadableListings(testingInstance *testing.T) {
	fixtureRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "broken", "inner.txt"), "inner")
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "ok.txt"), "ok")

	filesystem := &failingFs{
		Fs:         afero.NewOsFs(),
		openErrors: map[string]error{filepath.Join(fixtureRoot, "broken"): os.ErrInvalid},
	}
	output, errorOutput, statistics := runScanner(testingInstance, filesystem, fixtureRoot, nil, 0, nil)

	expectedOutput := `├── broken/
└── ok.txt (2.00 B)
`
	if output != expectedOutput {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expectedOutput, output)
	}
	if !strings.Contains(errorOutput, "Warning: unable to read directory") {
		testingInstance.Errorf("expected listing warning, got:\n%s", errorOutput)
	}
	if !strings.Contains(errorOutput, "broken") {
		testingInstance.Errorf("expected warning to name the directory, got:\n%s", errorOutput)
	}
	if statistics.TotalDirs != 1 || statistics.TotalFiles != 1 {
		testingInstance.Errorf("expected totals 1/1, got %d/%d", statistics.TotalDirs, statistics.TotalFiles)
	}
}

func TestScannerCountsFilesWithUnreadableSizes(testingInstance *testing.T) {
	fixtureRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "bad.bin"), "xxxx")
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "good.txt"), "ok")

	filesystem := &failingFs{
		Fs:         afero.NewOsFs(),
		statErrors: map[string]error{filepath.Join(fixtureRoot, "bad.bin"): os.ErrInvalid},
	}
	output, _, statistics := runScanner(testingInstance, filesystem, fixtureRoot, nil, 0, nil)

	expectedOutput := `├── bad.bin (0.00 B)
└── good.txt (2.00 B)
`
	if output != expectedOutput {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expectedOutput, output)
	}
	if statistics.TotalFiles != 2 || statistics.TotalSize != 2 {
		testingInstance.Errorf("expected 2 files totaling 2 bytes, got %d files totaling %d", statistics.TotalFiles, statistics.TotalSize)
	}
	if statistics.FileTypes[".bin"] != 1 || statistics.FileTypes[".txt"] != 1 {
		testingInstance.Errorf("expected one .bin and one .txt, got %v", statistics.FileTypes)
	}
}

func TestScannerAppliesMinimumFileSize(testingInstance *testing.T) {
	fixtureRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "small.txt"), "ab")
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "large.txt"), strings.Repeat("a", 2048))

	output, _, statistics := runScanner(testingInstance, afero.NewOsFs(), fixtureRoot, nil, 1024, nil)

	expectedOutput := `└── large.txt (2.00 KB)
`
	if output != expectedOutput {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expectedOutput, output)
	}
	if statistics.TotalFiles != 1 || statistics.TotalSize != 2048 {
		testingInstance.Errorf("expected 1 file totaling 2048 bytes, got %d files totaling %d", statistics.TotalFiles, statistics.TotalSize)
	}
}

func TestScannerHonorsGitignoreFilter(testingInstance *testing.T) {
	fixtureRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, utils.GitIgnoreFileName), "*.log\n")
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "app.log"), "x")
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "keep.txt"), "keep")

	gitignoreFilter, compileError := ignore.CompileIgnoreFile(filepath.Join(fixtureRoot, utils.GitIgnoreFileName))
	if compileError != nil {
		testingInstance.Fatalf("unexpected compile error: %v", compileError)
	}

	output, _, statistics := runScanner(testingInstance, afero.NewOsFs(), fixtureRoot, nil, 0, gitignoreFilter)

	expectedOutput := `├── .gitignore (6.00 B)
└── keep.txt (4.00 B)
`
	if output != expectedOutput {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expectedOutput, output)
	}
	if statistics.TotalFiles != 2 || statistics.TotalSize != 10 {
		testingInstance.Errorf("expected 2 files totaling 10 bytes, got %d files totaling %d", statistics.TotalFiles, statistics.TotalSize)
	}
	if statistics.FileTypes[NoExtensionKey] != 1 || statistics.FileTypes[".txt"] != 1 {
		testingInstance.Errorf("expected one dotfile and one .txt, got %v", statistics.FileTypes)
	}
}

func TestScannerSkipsSymlinks(testingInstance *testing.T) {
	fixtureRoot := testingInstance.TempDir()
	realPath := filepath.Join(fixtureRoot, "real.txt")
	writeFixtureFile(testingInstance, realPath, "data")
	if symlinkError := os.Symlink(realPath, filepath.Join(fixtureRoot, "link-to-real")); symlinkError != nil {
		testingInstance.Skipf("symlinks unavailable: %v", symlinkError)
	}

	output, _, statistics := runScanner(testingInstance, afero.NewOsFs(), fixtureRoot, nil, 0, nil)

	expectedOutput := `└── real.txt (4.00 B)
`
	if output != expectedOutput {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expectedOutput, output)
	}
	if statistics.TotalFiles != 1 || statistics.TotalSize != 4 {
		testingInstance.Errorf("expected 1 file totaling 4 bytes, got %d files totaling %d", statistics.TotalFiles, statistics.TotalSize)
	}
}

func TestScannerExtendsPrefixWithDepth(testingInstance *testing.T) {
	fixtureRoot := testingInstance.TempDir()
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "a", "b", "c.txt"), "abc")
	writeFixtureFile(testingInstance, filepath.Join(fixtureRoot, "top.txt"), "hi")

	output, _, statistics := runScanner(testingInstance, afero.NewOsFs(), fixtureRoot, nil, 0, nil)

	expectedOutput := `├── a/
│   └── b/
│       └── c.txt (3.00 B)
└── top.txt (2.00 B)
`
	if output != expectedOutput {
		testingInstance.Errorf("expected tree:\n%s\ngot:\n%s", expectedOutput, output)
	}
	if statistics.TotalDirs != 2 || statistics.TotalFiles != 2 || statistics.TotalSize != 5 {
		testingInstance.Errorf("expected totals 2/2/5, got %d/%d/%d", statistics.TotalDirs, statistics.TotalFiles, statistics.TotalSize)
	}
}

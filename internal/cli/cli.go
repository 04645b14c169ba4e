// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/geobenipy/Folder-Structure/internal/config"
	"github.com/geobenipy/Folder-Structure/internal/report"
	"github.com/geobenipy/Folder-Structure/internal/scan"
	"github.com/geobenipy/Folder-Structure/internal/services/clipboard"
	"github.com/geobenipy/Folder-Structure/internal/utils"
)

const (
	exclusionFlagName      = "exclude"
	exclusionFlagShorthand = "e"
	gitignoreFlagName      = "gitignore"
	formatFlagName         = "format"
	minimumSizeFlagName    = "min-size"
	copyFlagName           = "copy"
	globalFlagName         = "global"
	forceFlagName          = "force"
	versionFlagName        = "version"
	versionTemplate        = "folder-structure version: %s\n"
	defaultPath            = "."
	defaultMinimumSize     = "0B"

	rootUse              = "folder-structure"
	rootShortDescription = "folder-structure command line interface"

	scanUse              = "scan [path]"
	scanAlias            = "s"
	scanShortDescription = "scan a directory tree (" + scanAlias + ")"

	configUse                  = "config"
	configShortDescription     = "manage configuration files"
	configInitUse              = "init"
	configInitShortDescription = "write the default configuration file"

	versionFlagDescription     = "display application version"
	exclusionFlagDescription   = "directory name to exclude (repeatable)"
	gitignoreFlagDescription   = "honor the root .gitignore file"
	formatFlagDescription      = "output format"
	minimumSizeFlagDescription = "skip files smaller than this size"
	copyFlagDescription        = "copy the rendered output to the clipboard"
	globalFlagDescription      = "write the global configuration file"
	forceFlagDescription       = "overwrite an existing configuration file"

	invalidFormatMessage        = "Invalid format value '%s'"
	invalidMinimumSizeFormat    = "invalid minimum size '%s': %w"
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	warningGitignoreFormat      = "Warning: unable to read %s: %v\n"
	warningClipboardFormat      = "Warning: unable to copy output to clipboard: %v\n"
	clipboardCopiedMessage      = "Scan output copied to clipboard"
	configurationWrittenFormat  = "Configuration written to %s\n"
)

var rootLongDescription = heredoc.Doc(`
	folder-structure scans a directory tree depth first and prints an indented
	view of its layout, followed by summary statistics: entry totals, the most
	common file types, and the largest files.

	Use scan to run a traversal, config init to create a configuration file,
	and --version to print the application version.
`)

var scanLongDescription = heredoc.Doc(`
	Scan a directory tree and print one line per entry, directories first.
	Excluded directories appear in the tree but are not entered; their
	contents never count toward the statistics.

	Use --format to select raw or json output.
`)

var scanUsageExample = heredoc.Doc(`
	# Scan the current directory
	folder-structure scan

	# Exclude build artifacts and copy the result
	folder-structure scan -e target -e dist --copy .

	# Machine readable statistics only
	folder-structure scan --format json ~/projects
`)

// newClipboardCopier is replaced in tests to observe copied output.
var newClipboardCopier = func() clipboard.Copier { return clipboard.NewService() }

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case report.FormatRaw, report.FormatJSON:
		return true
	default:
		return false
	}
}

// Execute runs the folder-structure application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(
		createScanCommand(),
		createConfigCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// scanOptions stores raw flag values for the scan command.
type scanOptions struct {
	excludedDirectories []string
	useGitignore        bool
	outputFormat        string
	minimumSize         string
	copyToClipboard     bool
}

// scanSettings is the fully resolved configuration of one scan run, combining
// built-in defaults, configuration files, and command line flags.
type scanSettings struct {
	outputFormat        string
	useGitignore        bool
	copyToClipboard     bool
	minimumSizeText     string
	excludedDirectories []string
}

// createScanCommand returns the scan subcommand.
func createScanCommand() *cobra.Command {
	var options scanOptions

	scanCommand := &cobra.Command{
		Use:     scanUse,
		Aliases: []string{scanAlias},
		Short:   scanShortDescription,
		Long:    scanLongDescription,
		Example: scanUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) > 0 {
				rootPath = arguments[0]
			}
			return runScan(command, rootPath, options)
		},
	}

	registerScanFlags(scanCommand, &options)
	return scanCommand
}

// registerScanFlags binds the scan command flags onto the provided options.
func registerScanFlags(command *cobra.Command, options *scanOptions) {
	command.Flags().StringArrayVarP(&options.excludedDirectories, exclusionFlagName, exclusionFlagShorthand, nil, exclusionFlagDescription)
	command.Flags().BoolVar(&options.useGitignore, gitignoreFlagName, false, gitignoreFlagDescription)
	command.Flags().StringVar(&options.outputFormat, formatFlagName, report.FormatRaw, formatFlagDescription)
	command.Flags().StringVar(&options.minimumSize, minimumSizeFlagName, defaultMinimumSize, minimumSizeFlagDescription)
	command.Flags().BoolVar(&options.copyToClipboard, copyFlagName, false, copyFlagDescription)
}

// createConfigCommand returns the config command group.
func createConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	configCommand.AddCommand(createConfigInitCommand())
	return configCommand
}

// createConfigInitCommand returns the config init subcommand.
func createConfigInitCommand() *cobra.Command {
	var writeGlobal bool
	var forceOverwrite bool

	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initializationError := config.InitializeConfiguration(config.InitOptions{
				Target: target,
				Force:  forceOverwrite,
			})
			if initializationError != nil {
				return initializationError
			}
			fmt.Fprintf(command.OutOrStdout(), configurationWrittenFormat, writtenPath)
			return nil
		},
	}

	initCommand.Flags().BoolVar(&writeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&forceOverwrite, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// runScan resolves settings, validates the root, and performs a full scan with
// its report. The traversal and the rendering stay strictly sequential: the
// tree is written while walking, the summary after the walk completes.
func runScan(command *cobra.Command, rootPath string, options scanOptions) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{WorkingDirectory: workingDirectory})
	if configurationError != nil {
		return configurationError
	}
	settings := resolveScanSettings(command, options, applicationConfiguration.Scan)

	outputFormat := strings.ToLower(settings.outputFormat)
	if !isSupportedFormat(outputFormat) {
		return fmt.Errorf(invalidFormatMessage, outputFormat)
	}

	minimumSizeBytes, minimumSizeError := humanize.ParseBytes(settings.minimumSizeText)
	if minimumSizeError != nil {
		return fmt.Errorf(invalidMinimumSizeFormat, settings.minimumSizeText, minimumSizeError)
	}

	scanFilesystem := afero.NewOsFs()
	target, targetError := scan.ResolveTarget(scanFilesystem, rootPath, settings.excludedDirectories)
	if targetError != nil {
		return targetError
	}

	var gitignoreFilter *ignore.GitIgnore
	if settings.useGitignore {
		gitignoreFilter = loadGitignore(target.AbsolutePath, command.ErrOrStderr())
	}

	outputWriter := command.OutOrStdout()
	errorWriter := command.ErrOrStderr()

	var captureBuffer *bytes.Buffer
	destination := outputWriter
	if settings.copyToClipboard {
		captureBuffer = &bytes.Buffer{}
		destination = io.MultiWriter(outputWriter, captureBuffer)
	}

	treeDestination := destination
	if outputFormat == report.FormatJSON {
		treeDestination = io.Discard
	}

	if outputFormat == report.FormatRaw {
		report.WriteHeader(destination, target.AbsolutePath, time.Now())
	}

	scanner := scan.NewScanner(scanFilesystem, treeDestination, errorWriter, scan.Options{
		Target:          target,
		MinimumFileSize: int64(minimumSizeBytes),
		GitIgnore:       gitignoreFilter,
	})
	statistics := scanner.Run()

	if outputFormat == report.FormatJSON {
		if writeError := report.WriteJSON(destination, statistics, target.AbsolutePath); writeError != nil {
			return writeError
		}
	} else {
		report.Write(destination, statistics, target.AbsolutePath)
	}

	if settings.copyToClipboard {
		copyScanOutput(captureBuffer.String(), errorWriter)
	}
	return nil
}

// resolveScanSettings overlays configuration file values onto the built-in
// defaults, then lets explicitly set flags win over both.
func resolveScanSettings(command *cobra.Command, options scanOptions, configuration config.ScanCommandConfiguration) scanSettings {
	settings := scanSettings{
		outputFormat:    report.FormatRaw,
		minimumSizeText: defaultMinimumSize,
	}
	if configuration.Format != "" {
		settings.outputFormat = configuration.Format
	}
	if configuration.UseGitignore != nil {
		settings.useGitignore = *configuration.UseGitignore
	}
	if configuration.Clipboard != nil {
		settings.copyToClipboard = *configuration.Clipboard
	}
	if configuration.MinimumSize != "" {
		settings.minimumSizeText = configuration.MinimumSize
	}
	if command.Flags().Changed(formatFlagName) {
		settings.outputFormat = options.outputFormat
	}
	if command.Flags().Changed(gitignoreFlagName) {
		settings.useGitignore = options.useGitignore
	}
	if command.Flags().Changed(copyFlagName) {
		settings.copyToClipboard = options.copyToClipboard
	}
	if command.Flags().Changed(minimumSizeFlagName) {
		settings.minimumSizeText = options.minimumSize
	}
	settings.excludedDirectories = configuration.EffectiveExclusions(options.excludedDirectories)
	return settings
}

// loadGitignore compiles the root .gitignore when one is present. A file that
// exists but cannot be compiled degrades to a warning and no filtering.
func loadGitignore(rootPath string, errorWriter io.Writer) *ignore.GitIgnore {
	gitignorePath := filepath.Join(rootPath, utils.GitIgnoreFileName)
	if _, statError := os.Stat(gitignorePath); statError != nil {
		return nil
	}
	compiled, compileError := ignore.CompileIgnoreFile(gitignorePath)
	if compileError != nil {
		fmt.Fprintf(errorWriter, warningGitignoreFormat, gitignorePath, compileError)
		return nil
	}
	return compiled
}

// copyScanOutput places the rendered output on the system clipboard. Failures
// degrade to a warning; the confirmation only appears on interactive terminals.
func copyScanOutput(renderedOutput string, errorWriter io.Writer) {
	copier := newClipboardCopier()
	if copyError := copier.Copy(renderedOutput); copyError != nil {
		fmt.Fprintf(errorWriter, warningClipboardFormat, copyError)
		return
	}
	if isatty.IsTerminal(os.Stderr.Fd()) {
		fmt.Fprintln(errorWriter, clipboardCopiedMessage)
	}
}

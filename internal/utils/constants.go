package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// ErrorLogFormat defines the formatting string for error log messages.
const ErrorLogFormat = "Error: %v"

// LoggerInitializationFailedMessageFormat reports a failure to construct the logger.
const LoggerInitializationFailedMessageFormat = "logger initialization failed: %w"

// ApplicationExecutionFailedMessage prefixes fatal application errors.
const ApplicationExecutionFailedMessage = "application execution failed"

// ConfigFileName is the name of the configuration file loaded from the working
// directory and from the global configuration directory.
const ConfigFileName = ".folderstructure.yaml"

// GlobalConfigDirectoryName is the directory under the user home that holds the
// global configuration file.
const GlobalConfigDirectoryName = ".folder-structure"

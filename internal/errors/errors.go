// Package errors provides standardized error handling for trayfolders.
// It defines the error kinds raised while enumerating directories, watching
// roots, loading configuration and launching menu entries, together with
// helpers for consistent creation, wrapping and inspection.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// Common error constants for frequently occurring errors
var (
	ErrFileNotFound  = NewFileError("file not found", "", FileNotFound, nil)
	ErrFileAccess    = NewFileError("file access denied", "", FileAccessDenied, nil)
	ErrInvalidPath   = NewFileError("invalid file path", "", InvalidPath, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	DirectoryUnreadable
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Launch error kinds
	LaunchFailed
	ShortcutInvalid
	// Watch error kinds
	WatchSetupFailed
	WatchStopTimeout
)

// String returns a short name for the kind, used in log fields.
func (k ErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "file_not_found"
	case FileAccessDenied:
		return "file_access_denied"
	case InvalidPath:
		return "invalid_path"
	case DirectoryUnreadable:
		return "directory_unreadable"
	case InvalidConfig:
		return "invalid_config"
	case ConfigNotFound:
		return "config_not_found"
	case LaunchFailed:
		return "launch_failed"
	case ShortcutInvalid:
		return "shortcut_invalid"
	case WatchSetupFailed:
		return "watch_setup_failed"
	case WatchStopTimeout:
		return "watch_stop_timeout"
	default:
		return "unknown"
	}
}

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to filesystem entries
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// LaunchError represents a menu entry that could not be started.
type LaunchError struct {
	ApplicationError
	path   string
	target string
}

// NewLaunchError creates a new launch error for the selected path. The target
// is the resolved program or document, when resolution got that far.
func NewLaunchError(msg string, path string, kind ErrorKind, err error) *LaunchError {
	return &LaunchError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// WithTarget records the resolved launch target
func (e *LaunchError) WithTarget(target string) *LaunchError {
	e.target = target
	return e
}

// Error returns the launch error message
func (e *LaunchError) Error() string {
	subject := e.path
	if e.target != "" && e.target != e.path {
		subject = fmt.Sprintf("%s (target %s)", e.path, e.target)
	}
	if subject == "" {
		return e.ApplicationError.Error()
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.msg, subject, e.err)
	}
	return fmt.Sprintf("%s: %s", e.msg, subject)
}

// Path returns the selected path that failed to launch
func (e *LaunchError) Path() string {
	return e.path
}

// Target returns the resolved target, if any
func (e *LaunchError) Target() string {
	return e.target
}

// WatchError represents a root that could not be observed
type WatchError struct {
	ApplicationError
	root string
}

// NewWatchError creates a new watch error
func NewWatchError(msg string, root string, kind ErrorKind, err error) *WatchError {
	return &WatchError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		root: root,
	}
}

// Error returns the watch error message
func (e *WatchError) Error() string {
	if e.root != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.root, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.root)
	}
	return e.ApplicationError.Error()
}

// Root returns the root directory associated with the error
func (e *WatchError) Root() string {
	return e.root
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the outermost error in err's chain that carries
// one. Wrappers created by Wrap and Wrapf are skipped.
func KindOf(err error) ErrorKind {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if k, ok := e.(interface{ Kind() ErrorKind }); ok && k.Kind() != Unknown {
			return k.Kind()
		}
	}
	return Unknown
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsFileAccessDenied checks if the error is a file access denied error
func IsFileAccessDenied(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileAccessDenied
	}
	return false
}

// IsDirectoryUnreadable checks if the error is an enumeration failure
func IsDirectoryUnreadable(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == DirectoryUnreadable
	}
	return false
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsLaunchError checks if the error is any launch error
func IsLaunchError(err error) bool {
	var launchErr *LaunchError
	return errors.As(err, &launchErr)
}

// IsWatchError checks if the error is any watch error
func IsWatchError(err error) bool {
	var watchErr *WatchError
	return errors.As(err, &watchErr)
}

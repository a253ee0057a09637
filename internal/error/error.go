// internal/error/error.go

package error

import (
	"errors"
	"fmt"
	"strings"
)

type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

type ErrorType int

const (
	KeyExistsError ErrorType = iota
	KeyNotFoundError
	KeygenError
	HostExistsError
	HostNotFoundError
	ConfigNotFoundError
	ConfigParseError
	ConfigWriteError
	AgentNotRunningError
	AgentError
	FileError
	HomeDirError
	ValidationError
)

var typeNames = map[ErrorType]string{
	KeyExistsError:       "key_exists",
	KeyNotFoundError:     "key_not_found",
	KeygenError:          "keygen_failed",
	HostExistsError:      "host_exists",
	HostNotFoundError:    "host_not_found",
	ConfigNotFoundError:  "config_not_found",
	ConfigParseError:     "config_parse",
	ConfigWriteError:     "config_write",
	AgentNotRunningError: "agent_not_running",
	AgentError:           "agent_failed",
	FileError:            "io",
	HomeDirError:         "home_dir",
	ValidationError:      "invalid_input",
}

func (t ErrorType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("error_type(%d)", int(t))
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func New(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Is reports whether err carries an AppError of the given type.
func Is(err error, errType ErrorType) bool {
	ae, ok := As(err)
	return ok && ae.Type == errType
}

func KeyExists(name string) *AppError {
	return New(KeyExistsError, fmt.Sprintf("Key '%s' already exists", name), nil)
}

func KeyNotFound(name string) *AppError {
	return New(KeyNotFoundError, fmt.Sprintf("Key '%s' not found", name), nil)
}

func KeygenFailed(err error) *AppError {
	return New(KeygenError, "ssh-keygen failed", err)
}

func HostExists(name string) *AppError {
	return New(HostExistsError, fmt.Sprintf("Host '%s' already exists", name), nil)
}

func HostNotFound(name string) *AppError {
	return New(HostNotFoundError, fmt.Sprintf("Host '%s' not found", name), nil)
}

func ConfigNotFound(path string) *AppError {
	return New(ConfigNotFoundError, fmt.Sprintf("Config not found: %s", path), nil)
}

func ConfigParse(msg string, err error) *AppError {
	return New(ConfigParseError, fmt.Sprintf("Config parse error: %s", msg), err)
}

func ConfigWrite(msg string, err error) *AppError {
	return New(ConfigWriteError, fmt.Sprintf("Failed to write config: %s", msg), err)
}

func AgentNotRunning(err error) *AppError {
	return New(AgentNotRunningError, "ssh-agent is not running", err)
}

func AgentFailed(msg string) *AppError {
	return New(AgentError, fmt.Sprintf("ssh-agent error: %s", msg), nil)
}

func IO(err error) *AppError {
	return New(FileError, "IO error", err)
}

func HomeDirNotFound(err error) *AppError {
	return New(HomeDirError, "Could not determine home directory", err)
}

func InvalidInput(msg string) *AppError {
	return New(ValidationError, fmt.Sprintf("Invalid input: %s", msg), nil)
}

// Violations collects independent validation failures so they can be
// reported together.
type Violations []*AppError

func (v Violations) Error() string {
	switch len(v) {
	case 0:
		return "no violations"
	case 1:
		return v[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d problems found:", len(v))
	for _, e := range v {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// Err returns nil for an empty set so callers can return it directly.
func (v Violations) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

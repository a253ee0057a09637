package error

import "errors"

// ExitCode is the process exit status a command returns.
type ExitCode int

const (
	ExitOK       ExitCode = 0
	ExitInternal ExitCode = 1
	ExitInput    ExitCode = 2
	ExitConfig   ExitCode = 3
	ExitExternal ExitCode = 4
	ExitIO       ExitCode = 5
)

func ExitCodeFor(t ErrorType) ExitCode {
	switch t {
	case KeyExistsError, KeyNotFoundError, HostExistsError, HostNotFoundError, ValidationError:
		return ExitInput
	case ConfigNotFoundError, ConfigParseError, ConfigWriteError:
		return ExitConfig
	case KeygenError, AgentNotRunningError, AgentError:
		return ExitExternal
	case FileError, HomeDirError:
		return ExitIO
	default:
		return ExitInternal
	}
}

// ExitCodeForErr maps any error to an exit code. A set of violations exits
// with the input code.
func ExitCodeForErr(err error) ExitCode {
	if err == nil {
		return ExitOK
	}
	var v Violations
	if errors.As(err, &v) {
		return ExitInput
	}
	if ae, ok := As(err); ok {
		return ExitCodeFor(ae.Type)
	}
	return ExitInternal
}

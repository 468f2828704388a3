package settings

import (
	"errors"
	"fmt"
)

// ErrorCode classifies user-fixable configuration problems. Each code maps
// to a diagnostic comment posted back on the issue; none of them is a
// processing failure.
type ErrorCode string

const (
	// ErrorCodeMissing means the repo has no sync configuration file.
	ErrorCodeMissing ErrorCode = "config_missing"
	// ErrorCodeInvalid means the configuration file failed to parse.
	ErrorCodeInvalid ErrorCode = "config_invalid"
	// ErrorCodeIncomplete means a required settings key is absent or empty.
	ErrorCodeIncomplete ErrorCode = "config_incomplete"
)

// Error is a user-fixable configuration error. Diagnostic returns the
// comment body the bridge posts on the originating issue.
type Error struct {
	Code ErrorCode

	// MissingField names the offending settings key for incomplete configs.
	MissingField string

	Err error
}

func (err *Error) Error() string {
	if err == nil {
		return ""
	}

	switch err.Code {
	case ErrorCodeMissing:
		return "sync configuration file not found"
	case ErrorCodeInvalid:
		if err.Err != nil {
			return fmt.Sprintf("sync configuration file is invalid: %v", err.Err)
		}
		return "sync configuration file is invalid"
	case ErrorCodeIncomplete:
		return fmt.Sprintf("sync configuration is missing required field %q", err.MissingField)
	default:
		return "sync configuration error"
	}
}

func (err *Error) Unwrap() error {
	if err == nil {
		return nil
	}
	return err.Err
}

// Diagnostic is the corrective comment for the issue author. The wording
// deliberately names the exact file path and key to add.
func (err *Error) Diagnostic() string {
	switch err.Code {
	case ErrorCodeMissing:
		return ConfigPath + " file was not found"
	case ErrorCodeInvalid:
		return ConfigPath + " file is invalid. Check syntax."
	case ErrorCodeIncomplete:
		switch err.MissingField {
		case "jira_project_key":
			return "Jira project key is not specified. Add `jira_project_key` key to the settings file."
		case "status_mapping":
			return "Status mapping is not specified. Add `status_mapping` key to the settings file."
		default:
			return fmt.Sprintf("`%s` is not specified. Add the `%s` key to the settings file.",
				err.MissingField, err.MissingField)
		}
	default:
		return "Sync configuration could not be processed."
	}
}

// IsErrorCode reports whether err is a settings error with the given code.
func IsErrorCode(err error, code ErrorCode) bool {
	var settingsErr *Error
	if !errors.As(err, &settingsErr) {
		return false
	}
	return settingsErr.Code == code
}

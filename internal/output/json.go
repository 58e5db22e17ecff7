package output

import (
	"encoding/json"
	"io"
)

// ErrorCode represents a machine-readable error classification.
type ErrorCode string

// Error code constants, one per failure stage: shared configuration failures
// abort the whole run, while backup and write failures are scoped to one
// repository.
const (
	ErrGeneral         ErrorCode = "GENERAL_ERROR"
	ErrBackupNotFound  ErrorCode = "BACKUP_NOT_FOUND"
	ErrConfig          ErrorCode = "CONFIG_ERROR"
	ErrMalformedBackup ErrorCode = "MALFORMED_BACKUP"
	ErrWrite           ErrorCode = "WRITE_ERROR"
)

// Exit code constants.
const (
	ExitSuccess         = 0
	ExitGeneral         = 1
	ExitBackupNotFound  = 2
	ExitConfig          = 3
	ExitMalformedBackup = 4
	ExitWrite           = 5
)

// ExitCodeForError maps an ErrorCode to its corresponding exit code.
func ExitCodeForError(code ErrorCode) int {
	switch code {
	case ErrBackupNotFound:
		return ExitBackupNotFound
	case ErrConfig:
		return ExitConfig
	case ErrMalformedBackup:
		return ExitMalformedBackup
	case ErrWrite:
		return ExitWrite
	default:
		return ExitGeneral
	}
}

// successEnvelope is the JSON structure for successful responses.
type successEnvelope struct {
	OK      bool   `json:"ok"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// errorEnvelope is the JSON structure for error responses.
type errorEnvelope struct {
	OK    bool      `json:"ok"`
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

// writeJSONSuccess writes a success envelope to w.
func writeJSONSuccess(w io.Writer, data any, message string) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(successEnvelope{
		OK:      true,
		Data:    data,
		Message: message,
	})
}

// writeJSONError writes an error envelope to w.
func writeJSONError(w io.Writer, err error, code ErrorCode) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(errorEnvelope{
		OK:    false,
		Error: err.Error(),
		Code:  code,
	})
}

package backup

import (
	"errors"
	"fmt"
)

// ErrBackupNotFound reports that a backup directory does not exist.
var ErrBackupNotFound = errors.New("backup directory not found")

// MalformedBackupError reports a backup directory whose layout or file
// contents could not be parsed. Path names the offending file or directory.
type MalformedBackupError struct {
	Path string
	Err  error
}

func (e *MalformedBackupError) Error() string {
	return fmt.Sprintf("malformed backup: %s: %v", e.Path, e.Err)
}

func (e *MalformedBackupError) Unwrap() error { return e.Err }

package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
)

// WriteError reports a failure to produce an output file. It is scoped to one
// repository; a batch run continues with the remaining repositories.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing output %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// WriteResult serializes result as indented JSON and writes it to path
// atomically via a temp file renamed into place. Either the complete document
// appears at path or nothing does.
func WriteResult(result *model.ExtractionResult, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// WriteJSON is the same all-or-nothing write for any JSON-serializable value,
// used for stats reports.
func WriteJSON(v any, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return &WriteError{Path: path, Err: err}
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the destination directory and
// renames it over path. The temp file is removed on any failure.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func newTestWriter(jsonMode, quietMode bool) (*Writer, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	w := &Writer{
		JSONMode:  jsonMode,
		QuietMode: quietMode,
		Stdout:    &stdout,
		Stderr:    &stderr,
	}
	return w, &stdout, &stderr
}

func TestSuccessJSONEnvelope(t *testing.T) {
	w, stdout, stderr := newTestWriter(true, false)

	w.Success(map[string]int{"records": 42}, "extracted")

	var env struct {
		OK      bool           `json:"ok"`
		Data    map[string]int `json:"data"`
		Message string         `json:"message"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON envelope: %v\n%s", err, stdout.String())
	}
	if !env.OK {
		t.Error("ok = false, want true")
	}
	if env.Data["records"] != 42 {
		t.Errorf("data = %v", env.Data)
	}
	if env.Message != "extracted" {
		t.Errorf("message = %q", env.Message)
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr not empty: %q", stderr.String())
	}
}

func TestSuccessHuman(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	w, stdout, _ := newTestWriter(false, false)

	w.Success(nil, "extracted 42 records")

	if got := stdout.String(); got != "extracted 42 records\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestSuccessHumanMultiline(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	w, stdout, _ := newTestWriter(false, false)

	table := "REPO  RECORDS\nbitcoin  42"
	w.Success(nil, table)

	if got := stdout.String(); got != table+"\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestErrorJSONEnvelope(t *testing.T) {
	w, stdout, stderr := newTestWriter(true, false)

	code := w.Error(errors.New("no backup directory"), ErrBackupNotFound)

	if code != ExitBackupNotFound {
		t.Errorf("exit code = %d, want %d", code, ExitBackupNotFound)
	}
	var env struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON envelope: %v", err)
	}
	if env.OK {
		t.Error("ok = true, want false")
	}
	if env.Error != "no backup directory" {
		t.Errorf("error = %q", env.Error)
	}
	if env.Code != string(ErrBackupNotFound) {
		t.Errorf("code = %q", env.Code)
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr not empty: %q", stderr.String())
	}
}

func TestErrorHuman(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	w, stdout, stderr := newTestWriter(false, false)

	code := w.Error(errors.New("boom"), ErrGeneral)

	if code != ExitGeneral {
		t.Errorf("exit code = %d, want %d", code, ExitGeneral)
	}
	if got := stderr.String(); got != "Error: boom\n" {
		t.Errorf("stderr = %q", got)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout not empty: %q", stdout.String())
	}
}

func TestInfoSuppression(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	w, _, stderr := newTestWriter(false, false)
	w.Info("reading %d files", 3)
	if got := stderr.String(); got != "reading 3 files\n" {
		t.Errorf("stderr = %q", got)
	}

	for _, mode := range []struct {
		name  string
		json  bool
		quiet bool
	}{
		{"quiet", false, true},
		{"json", true, false},
	} {
		w, _, stderr := newTestWriter(mode.json, mode.quiet)
		w.Info("reading files")
		if stderr.Len() != 0 {
			t.Errorf("%s mode: Info wrote %q", mode.name, stderr.String())
		}
	}
}

func TestWarnNotSilencedByQuiet(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	w, _, stderr := newTestWriter(false, true)
	w.Warn("history unavailable: %s", "disk full")
	if got := stderr.String(); !strings.Contains(got, "Warning: history unavailable: disk full") {
		t.Errorf("stderr = %q", got)
	}

	w, stdout, stderr := newTestWriter(true, false)
	w.Warn("ignored in json mode")
	if stdout.Len() != 0 || stderr.Len() != 0 {
		t.Errorf("json mode: Warn wrote stdout=%q stderr=%q", stdout.String(), stderr.String())
	}
}

func TestExitCodeForError(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrGeneral, ExitGeneral},
		{ErrBackupNotFound, ExitBackupNotFound},
		{ErrConfig, ExitConfig},
		{ErrMalformedBackup, ExitMalformedBackup},
		{ErrWrite, ExitWrite},
		{ErrorCode("SOMETHING_ELSE"), ExitGeneral},
	}
	for _, c := range cases {
		if got := ExitCodeForError(c.code); got != c.want {
			t.Errorf("ExitCodeForError(%s) = %d, want %d", c.code, got, c.want)
		}
	}
}

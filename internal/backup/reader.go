// Package backup reads on-disk GitHub metadata backups into memory. A backup
// directory holds one JSON file per pull request under pulls/ and one per
// issue under issues/, as produced by the external backup tool.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
)

const (
	pullsDirName  = "pulls"
	issuesDirName = "issues"

	// progressInterval controls how often Progress is invoked while reading.
	progressInterval = 1000
)

// Reader loads a repository backup from Dir. Progress, when set, is called
// periodically with the stage name and file counts; it must not block.
type Reader struct {
	Dir      string
	Progress func(stage string, n, total int)
}

// Read returns the backup's records in deterministic order: pulls first, then
// issues, each sorted by record number. The order never depends on filesystem
// iteration order. A missing directory yields ErrBackupNotFound; an
// unparseable file yields a MalformedBackupError naming the file.
func (r *Reader) Read() ([]model.Record, error) {
	if _, err := os.Stat(r.Dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, r.Dir)
		}
		return nil, fmt.Errorf("checking backup directory %s: %w", r.Dir, err)
	}

	pullsDir := filepath.Join(r.Dir, pullsDirName)
	issuesDir := filepath.Join(r.Dir, issuesDirName)

	pullFiles, err := listRecordFiles(pullsDir)
	if err != nil {
		return nil, err
	}
	issueFiles, err := listRecordFiles(issuesDir)
	if err != nil {
		return nil, err
	}

	if pullFiles == nil && issueFiles == nil {
		return nil, &MalformedBackupError{
			Path: r.Dir,
			Err:  fmt.Errorf("neither %s/ nor %s/ exists", pullsDirName, issuesDirName),
		}
	}

	records := make([]model.Record, 0, len(pullFiles)+len(issueFiles))

	for i, path := range pullFiles {
		rec, err := readPullFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		r.progress(pullsDirName, i+1, len(pullFiles))
	}

	for i, path := range issueFiles {
		rec, err := readIssueFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		r.progress(issuesDirName, i+1, len(issueFiles))
	}

	return records, nil
}

func (r *Reader) progress(stage string, n, total int) {
	if r.Progress == nil {
		return
	}
	if n%progressInterval == 0 || n == total {
		r.Progress(stage, n, total)
	}
}

// listRecordFiles returns the .json files under dir sorted by numeric
// basename (record number), falling back to lexicographic order for
// non-numeric names. A missing dir returns nil with no error; the caller
// decides whether that makes the backup malformed.
func listRecordFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}

	sort.Slice(names, func(i, j int) bool {
		ni, iok := numericStem(names[i])
		nj, jok := numericStem(names[j])
		if iok && jok {
			return ni < nj
		}
		if iok != jok {
			return iok
		}
		return names[i] < names[j]
	})

	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(dir, n)
	}
	return paths, nil
}

func numericStem(name string) (int, bool) {
	stem := strings.TrimSuffix(name, ".json")
	n, err := strconv.Atoi(stem)
	return n, err == nil
}

// Wire shapes of the backup files. Field names follow the GitHub API objects
// the backup tool snapshots.

type wireActor struct {
	Login string `json:"login"`
}

type wireEvent struct {
	Event       string     `json:"event"`
	User        *wireActor `json:"user"`
	Actor       *wireActor `json:"actor"`
	CreatedAt   string     `json:"created_at"`
	SubmittedAt string     `json:"submitted_at"`
}

type wireComment struct {
	User      *wireActor `json:"user"`
	CreatedAt string     `json:"created_at"`
	Body      string     `json:"body"`
}

type wireSubject struct {
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	User      *wireActor `json:"user"`
	CreatedAt string     `json:"created_at"`
	ClosedAt  string     `json:"closed_at"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	Commits   int        `json:"commits"`
}

type wirePullFile struct {
	Pull     *wireSubject  `json:"pull"`
	Events   []wireEvent   `json:"events"`
	Comments []wireComment `json:"comments"`
}

type wireIssueFile struct {
	Issue    *wireSubject  `json:"issue"`
	Events   []wireEvent   `json:"events"`
	Comments []wireComment `json:"comments"`
}

func readPullFile(path string) (model.Record, error) {
	var file wirePullFile
	if err := decodeFile(path, &file); err != nil {
		return model.Record{}, err
	}
	if file.Pull == nil {
		return model.Record{}, &MalformedBackupError{Path: path, Err: fmt.Errorf("missing %q object", "pull")}
	}
	return toRecord(model.KindPull, file.Pull, file.Events, file.Comments), nil
}

func readIssueFile(path string) (model.Record, error) {
	var file wireIssueFile
	if err := decodeFile(path, &file); err != nil {
		return model.Record{}, err
	}
	if file.Issue == nil {
		return model.Record{}, &MalformedBackupError{Path: path, Err: fmt.Errorf("missing %q object", "issue")}
	}
	return toRecord(model.KindIssue, file.Issue, file.Events, file.Comments), nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &MalformedBackupError{Path: path, Err: err}
	}
	return nil
}

func toRecord(kind model.Kind, subject *wireSubject, events []wireEvent, comments []wireComment) model.Record {
	rec := model.Record{
		Kind:      kind,
		Number:    subject.Number,
		Title:     subject.Title,
		State:     subject.State,
		CreatedAt: parseTime(subject.CreatedAt),
		ClosedAt:  parseTimePtr(subject.ClosedAt),
	}
	if subject.User != nil {
		rec.Author = subject.User.Login
	}
	if kind == model.KindPull {
		rec.Additions = subject.Additions
		rec.Deletions = subject.Deletions
		rec.Commits = subject.Commits
	}

	rec.Events = make([]model.Event, 0, len(events))
	for _, ev := range events {
		e := model.Event{Kind: ev.Event}
		// Timeline events carry the login under "user" or "actor" depending
		// on the event type; merge events use "actor". Reviews carry
		// submitted_at instead of created_at.
		switch {
		case ev.User != nil:
			e.Actor = ev.User.Login
		case ev.Actor != nil:
			e.Actor = ev.Actor.Login
		}
		if ev.CreatedAt != "" {
			e.OccurredAt = parseTime(ev.CreatedAt)
		} else {
			e.OccurredAt = parseTime(ev.SubmittedAt)
		}
		rec.Events = append(rec.Events, e)
	}

	rec.Comments = make([]model.Comment, 0, len(comments))
	for _, c := range comments {
		cm := model.Comment{CreatedAt: parseTime(c.CreatedAt), Body: c.Body}
		if c.User != nil {
			cm.Author = c.User.Login
		}
		rec.Comments = append(rec.Comments, cm)
	}

	return rec
}

// parseTime parses an ISO 8601 timestamp. Backups occasionally contain
// truncated or absent dates; those parse to the zero time and are skipped by
// consumers that bucket by date, but the record itself is preserved.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func parseTimePtr(s string) *time.Time {
	t := parseTime(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

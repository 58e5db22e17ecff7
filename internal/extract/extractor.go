// Package extract transforms backup records into identity-resolved extraction
// results and writes them as JSON output files.
package extract

import (
	"sort"
	"time"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/backup"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/config"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/identity"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
)

// Extractor resolves actor identities in backup records through a username
// map and assembles per-repository extraction results. The map is shared
// read-only; an Extractor may be reused across repositories.
type Extractor struct {
	Usernames identity.UsernameMap

	// Now supplies the extraction timestamp. Overridable so reruns can be
	// pinned to a fixed clock and produce byte-identical output.
	Now func() time.Time

	// Progress is forwarded to the backup reader.
	Progress func(stage string, n, total int)
}

// New returns an Extractor using the given username map and the wall clock.
func New(usernames identity.UsernameMap) *Extractor {
	return &Extractor{Usernames: usernames, Now: time.Now}
}

// Extract reads the backup at backupDir, resolves identities, and writes the
// result to outputPath atomically. On any failure no output file is left
// behind, partial or otherwise.
func (e *Extractor) Extract(repo, backupDir, outputPath string) (*model.ExtractionResult, error) {
	reader := &backup.Reader{Dir: backupDir, Progress: e.Progress}
	records, err := reader.Read()
	if err != nil {
		return nil, err
	}

	result := e.Resolve(repo, records)
	if err := WriteResult(result, outputPath); err != nil {
		return nil, err
	}
	return result, nil
}

// ExtractBatch extracts every repository sequentially, deriving the
// conventional backup and output paths from backupRoot and outDir. A failing
// repository is captured in its Run and the remaining repositories still
// execute. observe, when set, receives each outcome as it completes.
func (e *Extractor) ExtractBatch(repos []string, backupRoot, outDir string, observe func(model.Run)) []model.Run {
	runs := make([]model.Run, 0, len(repos))

	for _, repo := range repos {
		backupDir := config.BackupDir(backupRoot, repo)
		outPath := config.OutputPath(outDir, repo)

		start := time.Now()
		result, err := e.Extract(repo, backupDir, outPath)

		run := model.Run{
			Repository: repo,
			Duration:   time.Since(start),
			CreatedAt:  time.Now().UTC(),
		}
		if err != nil {
			run.Error = err.Error()
		} else {
			run.OK = true
			run.Records = len(result.Records)
			run.Unmapped = len(result.UnmappedLogins)
			run.OutputPath = outPath
		}

		if observe != nil {
			observe(run)
		}
		runs = append(runs, run)
	}

	return runs
}

// Resolve produces the extraction result for repo from records. Each record
// maps one-to-one, in order, to a resolved record; the input is not mutated.
func (e *Extractor) Resolve(repo string, records []model.Record) *model.ExtractionResult {
	resolved := make([]model.ResolvedRecord, 0, len(records))
	unmapped := make(map[string]struct{})

	for i := range records {
		resolved = append(resolved, e.resolveRecord(&records[i], unmapped))
	}

	logins := make([]string, 0, len(unmapped))
	for login := range unmapped {
		logins = append(logins, login)
	}
	sort.Strings(logins)

	return &model.ExtractionResult{
		Version:        model.ExportVersion,
		Repository:     repo,
		ExtractedAt:    e.Now().UTC(),
		Records:        resolved,
		UnmappedLogins: logins,
	}
}

func (e *Extractor) resolveRecord(rec *model.Record, unmapped map[string]struct{}) model.ResolvedRecord {
	out := model.ResolvedRecord{
		Kind:      rec.Kind,
		Number:    rec.Number,
		Title:     rec.Title,
		State:     rec.State,
		CreatedAt: rec.CreatedAt,
		ClosedAt:  rec.ClosedAt,
		Additions: rec.Additions,
		Deletions: rec.Deletions,
		Commits:   rec.Commits,
		Events:    make([]model.ResolvedEvent, 0, len(rec.Events)),
		Comments:  make([]model.ResolvedComment, 0, len(rec.Comments)),
	}

	// An empty login means the backup recorded no user (deleted account);
	// it never goes through the map and never counts as unmapped.
	if rec.Author != "" {
		out.Author = e.resolve(rec.Author, unmapped)
	}

	for _, ev := range rec.Events {
		rev := model.ResolvedEvent{Kind: ev.Kind, OccurredAt: ev.OccurredAt}
		if ev.Actor != "" {
			id := e.resolve(ev.Actor, unmapped)
			rev.Actor = &id
		}
		out.Events = append(out.Events, rev)
	}

	for _, c := range rec.Comments {
		rc := model.ResolvedComment{CreatedAt: c.CreatedAt, Body: c.Body}
		if c.Author != "" {
			id := e.resolve(c.Author, unmapped)
			rc.Author = &id
		}
		out.Comments = append(out.Comments, rc)
	}

	return out
}

func (e *Extractor) resolve(key string, unmapped map[string]struct{}) model.Identity {
	id := e.Usernames.Resolve(key)
	if id.Unmapped {
		unmapped[id.Login] = struct{}{}
	}
	return id
}

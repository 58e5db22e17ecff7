package render

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
)

const topAuthorRows = 10

// ExtractionReport produces a markdown summary of an extraction result,
// suitable for terminal rendering via Markdown.
func ExtractionReport(result *model.ExtractionResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Extraction report: %s\n\n", result.Repository)
	fmt.Fprintf(&b, "*Extracted: %s*\n\n", result.ExtractedAt.UTC().Format(time.RFC3339))

	byKind := make(map[model.Kind]int)
	authorCounts := make(map[string]int)
	comments := 0
	for i := range result.Records {
		rec := &result.Records[i]
		byKind[rec.Kind]++
		authorCounts[rec.Author.Login]++
		comments += len(rec.Comments)
	}

	b.WriteString("## Records\n\n")
	fmt.Fprintf(&b, "- **Total:** %d\n", len(result.Records))
	fmt.Fprintf(&b, "- **Pull requests:** %d\n", byKind[model.KindPull])
	fmt.Fprintf(&b, "- **Issues:** %d\n", byKind[model.KindIssue])
	fmt.Fprintf(&b, "- **Comments:** %d\n\n", comments)

	b.WriteString("## Top authors\n\n")
	if len(authorCounts) == 0 {
		b.WriteString("(none)\n\n")
	} else {
		type authorCount struct {
			login string
			count int
		}
		authors := make([]authorCount, 0, len(authorCounts))
		for login, count := range authorCounts {
			authors = append(authors, authorCount{login, count})
		}
		sort.Slice(authors, func(i, j int) bool {
			if authors[i].count != authors[j].count {
				return authors[i].count > authors[j].count
			}
			return authors[i].login < authors[j].login
		})

		b.WriteString("| Author | Records |\n|---|---|\n")
		for i, a := range authors {
			if i == topAuthorRows {
				break
			}
			fmt.Fprintf(&b, "| %s | %d |\n", a.login, a.count)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Unmapped identities\n\n")
	if len(result.UnmappedLogins) == 0 {
		b.WriteString("All identities resolved through the username map.\n")
	} else {
		fmt.Fprintf(&b, "%d identity key(s) had no entry in the username map:\n\n", len(result.UnmappedLogins))
		for _, login := range result.UnmappedLogins {
			fmt.Fprintf(&b, "- `%s`\n", login)
		}
	}

	return b.String()
}

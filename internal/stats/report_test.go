package stats

import (
	"testing"
	"time"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mergedPull(number int, author string, created, merged time.Time, actor string, additions, deletions, commits int) model.ResolvedRecord {
	return model.ResolvedRecord{
		Kind:      model.KindPull,
		Number:    number,
		Author:    model.Resolved(author),
		CreatedAt: created,
		Additions: additions,
		Deletions: deletions,
		Commits:   commits,
		Events: []model.ResolvedEvent{
			{Kind: model.EventMerged, Actor: &model.Identity{Login: actor}, OccurredAt: merged},
		},
	}
}

func testReport(t *testing.T) *Report {
	t.Helper()

	records := []model.ResolvedRecord{
		// alice: created Jan 1, merged Jan 10 (9 days), 15 changed lines (S).
		mergedPull(1, "alice", date(2021, 1, 1), date(2021, 1, 10), "maintainer1", 10, 5, 2),
		// bob: created Feb 1, merged Mar 1 (28 days), 600 changed lines (L).
		mergedPull(2, "bob", date(2021, 2, 1), date(2021, 3, 1), "maintainer1", 400, 200, 4),
		// carol opened a PR that was never merged.
		{Kind: model.KindPull, Number: 3, Author: model.Resolved("carol"), CreatedAt: date(2021, 1, 15)},
		// An issue where dave commented three times in April.
		{
			Kind:      model.KindIssue,
			Number:    4,
			Author:    model.Resolved("frank"),
			CreatedAt: date(2021, 4, 1),
			Events: []model.ResolvedEvent{
				{Kind: model.EventCommented, Actor: &model.Identity{Login: "dave"}, OccurredAt: date(2021, 4, 2)},
				{Kind: model.EventCommented, Actor: &model.Identity{Login: "dave"}, OccurredAt: date(2021, 4, 3)},
				{Kind: model.EventCommented, Actor: &model.Identity{Login: "dave"}, OccurredAt: date(2021, 4, 4)},
			},
		},
	}

	return Build("repo", records, 2)
}

func TestBuildTotals(t *testing.T) {
	r := testReport(t)

	if r.MergedPRs != 2 {
		t.Errorf("MergedPRs = %d, want 2", r.MergedPRs)
	}
	if r.UniqueAuthors != 2 {
		t.Errorf("UniqueAuthors = %d, want 2", r.UniqueAuthors)
	}
	if r.CommentThreshold != 2 {
		t.Errorf("CommentThreshold = %d, want 2", r.CommentThreshold)
	}
	if len(r.Timeframes) != len(Timeframes) {
		t.Errorf("len(Timeframes) = %d, want %d", len(r.Timeframes), len(Timeframes))
	}
}

func TestYearlyAuthorCounts(t *testing.T) {
	r := testReport(t)
	year := r.Timeframes[TimeframeYear]

	if got := year.UniqueAuthorCounts["2021"]; got != 2 {
		t.Errorf("UniqueAuthorCounts[2021] = %d, want 2", got)
	}
	if got := year.NoMergeAuthorCounts["2021"]; got != 1 {
		t.Errorf("NoMergeAuthorCounts[2021] = %d, want 1", got)
	}
	if got := year.NoMergeAuthors["2021"]; len(got) != 1 || got[0] != "carol" {
		t.Errorf("NoMergeAuthors[2021] = %v, want [carol]", got)
	}
	if got := year.UniqueAuthors["2021"]; len(got) != 2 || got[0] != "alice" || got[1] != "bob" {
		t.Errorf("UniqueAuthors[2021] = %v, want [alice bob]", got)
	}
}

func TestFirstTimeAuthors(t *testing.T) {
	r := testReport(t)
	month := r.Timeframes[TimeframeMonth]

	// First merges land in the month of the merge, not of PR creation.
	if got := month.FirstTimeAuthors["2021-01"]; len(got) != 1 || got[0] != "alice" {
		t.Errorf("FirstTimeAuthors[2021-01] = %v, want [alice]", got)
	}
	if got := month.FirstTimeAuthors["2021-03"]; len(got) != 1 || got[0] != "bob" {
		t.Errorf("FirstTimeAuthors[2021-03] = %v, want [bob]", got)
	}
}

func TestMonthlyNoMergeReflectsMergePeriod(t *testing.T) {
	r := testReport(t)
	month := r.Timeframes[TimeframeMonth]

	// bob opened in February but merged in March; within February he counts
	// as an author without a merge.
	found := false
	for _, login := range month.NoMergeAuthors["2021-02"] {
		if login == "bob" {
			found = true
		}
	}
	if !found {
		t.Errorf("NoMergeAuthors[2021-02] = %v, want to contain bob", month.NoMergeAuthors["2021-02"])
	}
}

func TestTimeToMerge(t *testing.T) {
	r := testReport(t)
	year := r.Timeframes[TimeframeYear]

	if got := year.AvgTimeToMerge["2021"]; got != 18.5 {
		t.Errorf("AvgTimeToMerge[2021] = %v, want 18.5", got)
	}
	// Upper median of [9, 28].
	if got := year.MedianTimeToMerge["2021"]; got != 28.0 {
		t.Errorf("MedianTimeToMerge[2021] = %v, want 28.0", got)
	}
}

func TestTimeToMergeBySize(t *testing.T) {
	r := testReport(t)
	year := r.Timeframes[TimeframeYear]

	if got := year.TimeToMergeBySize["S"]["2021"]; got != 9.0 {
		t.Errorf("ttm_by_size[S][2021] = %v, want 9.0", got)
	}
	if got := year.TimeToMergeBySize["L"]["2021"]; got != 28.0 {
		t.Errorf("ttm_by_size[L][2021] = %v, want 28.0", got)
	}
	if got := year.TimeToMergeBySize["M"]["2021"]; got != 0 {
		t.Errorf("ttm_by_size[M][2021] = %v, want 0", got)
	}
}

func TestMergeActors(t *testing.T) {
	r := testReport(t)
	year := r.Timeframes[TimeframeYear]

	if got := year.MergeAccessCounts["2021"]; got != 1 {
		t.Errorf("MergeAccessCounts[2021] = %d, want 1", got)
	}
	if got := year.MergeAccessUsers["2021"]; len(got) != 1 || got[0] != "maintainer1" {
		t.Errorf("MergeAccessUsers[2021] = %v, want [maintainer1]", got)
	}
	if got := year.MergesByActor["2021"]["maintainer1"]; got != 2 {
		t.Errorf("MergesByActor[2021][maintainer1] = %d, want 2", got)
	}
}

func TestExcludedAverages(t *testing.T) {
	r := testReport(t)
	year := r.Timeframes[TimeframeYear]

	// Both authors are within the top 5, so the filtered average is empty.
	if got := year.AvgTimeToMergeExclTop5["2021"]; got != 0 {
		t.Errorf("AvgTimeToMergeExclTop5[2021] = %v, want 0", got)
	}
	// Neither author ever merged a PR, so excluding maintainers changes nothing.
	if got := year.AvgTimeToMergeExclMaintainers["2021"]; got != 18.5 {
		t.Errorf("AvgTimeToMergeExclMaintainers[2021] = %v, want 18.5", got)
	}
}

func TestProlificCommenters(t *testing.T) {
	r := testReport(t)
	month := r.Timeframes[TimeframeMonth]

	// dave has 3 comments in April, above the threshold of 2.
	if got := month.ProlificCommenterCounts["2021-04"]; got != 1 {
		t.Errorf("ProlificCommenterCounts[2021-04] = %d, want 1", got)
	}
	if got := month.ProlificCommenterDetails["2021-04"]["dave"]; got != 3 {
		t.Errorf("ProlificCommenterDetails[2021-04][dave] = %d, want 3", got)
	}

	// The comment-bearing period shows up in the period list even though no
	// PR activity happened in it.
	found := false
	for _, p := range month.Periods {
		if p == "2021-04" {
			found = true
		}
	}
	if !found {
		t.Errorf("Periods = %v, want to contain 2021-04", month.Periods)
	}
}

func TestContributorStats(t *testing.T) {
	r := testReport(t)
	year := r.Timeframes[TimeframeYear]

	alice, ok := year.ContributorStats["alice"]
	if !ok {
		t.Fatal("ContributorStats missing alice")
	}
	got := alice["2021"]
	if got.Count != 1 {
		t.Errorf("alice count = %d, want 1", got.Count)
	}
	if got.AvgTimeToMerge != 9.0 {
		t.Errorf("alice avg_ttm = %v, want 9.0", got.AvgTimeToMerge)
	}
	if got.AvgAdditions != 10.0 || got.AvgDeletions != 5.0 || got.AvgCommits != 2.0 {
		t.Errorf("alice averages = %v/%v/%v, want 10/5/2", got.AvgAdditions, got.AvgDeletions, got.AvgCommits)
	}
}

func TestPRsByAuthor(t *testing.T) {
	r := testReport(t)
	year := r.Timeframes[TimeframeYear]

	if got := year.PRsByAuthor["2021"]["alice"]; got != 1 {
		t.Errorf("PRsByAuthor[2021][alice] = %d, want 1", got)
	}
}

func TestPeriodsAreSorted(t *testing.T) {
	r := testReport(t)
	for _, tf := range Timeframes {
		periods := r.Timeframes[tf].Periods
		for i := 1; i < len(periods); i++ {
			if periods[i-1] >= periods[i] {
				t.Errorf("%s periods not strictly sorted: %v", tf, periods)
			}
		}
	}
}

func TestUnmergedEventWithZeroDateIgnored(t *testing.T) {
	records := []model.ResolvedRecord{{
		Kind:      model.KindPull,
		Number:    1,
		Author:    model.Resolved("alice"),
		CreatedAt: date(2021, 1, 1),
		Events: []model.ResolvedEvent{
			// A merge event whose timestamp failed to parse cannot be
			// bucketed and must not count as a merge.
			{Kind: model.EventMerged, Actor: &model.Identity{Login: "m"}},
		},
	}}

	r := Build("repo", records, 0)
	if r.MergedPRs != 0 {
		t.Errorf("MergedPRs = %d, want 0", r.MergedPRs)
	}
	if r.CommentThreshold != DefaultCommentThreshold {
		t.Errorf("CommentThreshold = %d, want default %d", r.CommentThreshold, DefaultCommentThreshold)
	}
}

func TestPeriodKey(t *testing.T) {
	at := time.Date(2021, 7, 15, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		tf   Timeframe
		want string
	}{
		{TimeframeYear, "2021"},
		{TimeframeQuarter, "2021-Q3"},
		{TimeframeMonth, "2021-07"},
	}
	for _, c := range cases {
		if got := PeriodKey(at, c.tf); got != c.want {
			t.Errorf("PeriodKey(%s) = %q, want %q", c.tf, got, c.want)
		}
	}
}

package stats

import (
	"math"
	"sort"
	"time"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
)

// DefaultCommentThreshold is the comment count above which a user counts as a
// prolific commenter within a period.
const DefaultCommentThreshold = 100

// Size bucket boundaries for time-to-merge by PR size, in total changed lines.
const (
	sizeSmallMax  = 50
	sizeMediumMax = 500
)

var sizeBuckets = []string{"S", "M", "L"}

// topAuthorCount is how many of the most prolific authors the filtered
// time-to-merge average excludes.
const topAuthorCount = 5

// ContributorPeriodStats summarizes one author's merged PRs within a period.
type ContributorPeriodStats struct {
	Count          int     `json:"count"`
	AvgTimeToMerge float64 `json:"avg_ttm"`
	AvgAdditions   float64 `json:"avg_additions"`
	AvgDeletions   float64 `json:"avg_deletions"`
	AvgCommits     float64 `json:"avg_commits"`
}

// TimeframeStats holds every per-period aggregate for one granularity. Maps
// are keyed by period key; every period in Periods has an entry (zero-valued
// when no data exists for it).
type TimeframeStats struct {
	Periods                       []string                                     `json:"periods"`
	UniqueAuthorCounts            map[string]int                               `json:"unique_author_counts"`
	NoMergeAuthorCounts           map[string]int                               `json:"no_merge_author_counts"`
	FirstTimeAuthorCounts         map[string]int                               `json:"first_time_author_counts"`
	ProlificCommenterCounts       map[string]int                               `json:"prolific_commenter_counts"`
	MergeAccessCounts             map[string]int                               `json:"merge_access_counts"`
	MergeAccessUsers              map[string][]string                          `json:"merge_access_users"`
	UniqueAuthors                 map[string][]string                          `json:"unique_authors"`
	NoMergeAuthors                map[string][]string                          `json:"no_merge_authors"`
	FirstTimeAuthors              map[string][]string                          `json:"first_time_authors"`
	ProlificCommenterDetails      map[string]map[string]int                    `json:"prolific_commenter_details"`
	MergesByActor                 map[string]map[string]int                    `json:"merges_by_actor"`
	AvgTimeToMerge                map[string]float64                           `json:"avg_time_to_merge"`
	MedianTimeToMerge             map[string]float64                           `json:"median_time_to_merge"`
	PRsByAuthor                   map[string]map[string]int                    `json:"prs_by_author"`
	AvgTimeToMergeExclTop5        map[string]float64                           `json:"avg_time_to_merge_excl_top5"`
	AvgTimeToMergeExclMaintainers map[string]float64                           `json:"avg_time_to_merge_excl_maintainers"`
	TimeToMergeBySize             map[string]map[string]float64                `json:"ttm_by_size"`
	ContributorStats              map[string]map[string]ContributorPeriodStats `json:"contributor_stats"`
}

// Report is the aggregate activity document for one repository.
type Report struct {
	Repository       string                       `json:"repository"`
	CommentThreshold int                          `json:"comment_threshold"`
	MergedPRs        int                          `json:"merged_prs"`
	UniqueAuthors    int                          `json:"unique_authors"`
	Timeframes       map[Timeframe]TimeframeStats `json:"timeframes"`
}

// mergedPR captures one merged pull request's dimensions.
type mergedPR struct {
	mergedAt  time.Time
	createdAt time.Time
	author    string
	additions int
	deletions int
	commits   int
}

func (m *mergedPR) ttmDays() float64 {
	return m.mergedAt.Sub(m.createdAt).Seconds() / 86400
}

func (m *mergedPR) sizeBucket() string {
	total := m.additions + m.deletions
	switch {
	case total <= sizeSmallMax:
		return "S"
	case total <= sizeMediumMax:
		return "M"
	default:
		return "L"
	}
}

type openedPR struct {
	createdAt time.Time
	author    string
}

type mergeAction struct {
	at    time.Time
	actor string
}

// Build aggregates resolved records into a report. Identities are used by
// their resolved login, so renamed accounts collapse into one contributor.
// Threshold <= 0 falls back to DefaultCommentThreshold.
func Build(repo string, records []model.ResolvedRecord, threshold int) *Report {
	if threshold <= 0 {
		threshold = DefaultCommentThreshold
	}

	var merged []mergedPR
	var opened []openedPR
	var mergeActions []mergeAction

	// commentCounts[tf][period][login] = comment + review count.
	commentCounts := make(map[Timeframe]map[string]map[string]int, len(Timeframes))
	for _, tf := range Timeframes {
		commentCounts[tf] = make(map[string]map[string]int)
	}

	for i := range records {
		rec := &records[i]
		collectComments(rec, commentCounts)

		if rec.Kind != model.KindPull {
			continue
		}

		author := rec.Author.Login
		opened = append(opened, openedPR{createdAt: rec.CreatedAt, author: author})

		ev := rec.MergeEvent()
		if ev == nil || ev.OccurredAt.IsZero() {
			continue
		}
		merged = append(merged, mergedPR{
			mergedAt:  ev.OccurredAt,
			createdAt: rec.CreatedAt,
			author:    author,
			additions: rec.Additions,
			deletions: rec.Deletions,
			commits:   rec.Commits,
		})
		if ev.Actor != nil && ev.Actor.Login != "" {
			mergeActions = append(mergeActions, mergeAction{at: ev.OccurredAt, actor: ev.Actor.Login})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].mergedAt.Before(merged[j].mergedAt) })

	// Anyone who has ever performed a merge counts as a maintainer.
	maintainers := make(map[string]struct{}, len(mergeActions))
	for _, m := range mergeActions {
		maintainers[m.actor] = struct{}{}
	}

	// Global first merge date per author, from the time-sorted merge list.
	firstMerge := make(map[string]time.Time)
	for _, m := range merged {
		if _, ok := firstMerge[m.author]; !ok {
			firstMerge[m.author] = m.mergedAt
		}
	}

	report := &Report{
		Repository:       repo,
		CommentThreshold: threshold,
		MergedPRs:        len(merged),
		UniqueAuthors:    len(firstMerge),
		Timeframes:       make(map[Timeframe]TimeframeStats, len(Timeframes)),
	}
	for _, tf := range Timeframes {
		report.Timeframes[tf] = buildTimeframe(tf, merged, opened, mergeActions, firstMerge, maintainers, commentCounts[tf], threshold)
	}
	return report
}

// collectComments tallies "commented" and "reviewed" timeline events plus
// review comments into per-period per-login counts.
func collectComments(rec *model.ResolvedRecord, out map[Timeframe]map[string]map[string]int) {
	bump := func(login string, at time.Time) {
		if login == "" || at.IsZero() {
			return
		}
		for _, tf := range Timeframes {
			period := PeriodKey(at, tf)
			if out[tf][period] == nil {
				out[tf][period] = make(map[string]int)
			}
			out[tf][period][login]++
		}
	}

	for _, ev := range rec.Events {
		if ev.Kind != model.EventCommented && ev.Kind != model.EventReviewed {
			continue
		}
		if ev.Actor == nil {
			continue
		}
		bump(ev.Actor.Login, ev.OccurredAt)
	}
	for _, c := range rec.Comments {
		if c.Author == nil {
			continue
		}
		bump(c.Author.Login, c.CreatedAt)
	}
}

func buildTimeframe(
	tf Timeframe,
	merged []mergedPR,
	opened []openedPR,
	mergeActions []mergeAction,
	firstMerge map[string]time.Time,
	maintainers map[string]struct{},
	commentCounts map[string]map[string]int,
	threshold int,
) TimeframeStats {
	mergedAuthors := make(map[string]map[string]struct{})
	prsByAuthor := make(map[string]map[string]int)
	ttmByPeriod := make(map[string][]float64)
	ttmWithAuthor := make(map[string][]mergedPR)
	ttmBySize := make(map[string]map[string][]float64)
	contributor := make(map[string]map[string]*contributorAccum)

	for _, m := range merged {
		period := PeriodKey(m.mergedAt, tf)
		addToSet(mergedAuthors, period, m.author)
		bumpNested(prsByAuthor, period, m.author)

		ttm := m.ttmDays()
		ttmByPeriod[period] = append(ttmByPeriod[period], ttm)
		ttmWithAuthor[period] = append(ttmWithAuthor[period], m)

		if ttmBySize[period] == nil {
			ttmBySize[period] = make(map[string][]float64)
		}
		ttmBySize[period][m.sizeBucket()] = append(ttmBySize[period][m.sizeBucket()], ttm)

		if contributor[m.author] == nil {
			contributor[m.author] = make(map[string]*contributorAccum)
		}
		acc := contributor[m.author][period]
		if acc == nil {
			acc = &contributorAccum{}
			contributor[m.author][period] = acc
		}
		acc.add(ttm, m.additions, m.deletions, m.commits)
	}

	allAuthors := make(map[string]map[string]struct{})
	for _, p := range opened {
		if p.createdAt.IsZero() {
			continue
		}
		addToSet(allAuthors, PeriodKey(p.createdAt, tf), p.author)
	}

	// Opened a PR in the period but had none merged in it.
	noMerge := make(map[string]map[string]struct{})
	for period, authors := range allAuthors {
		for author := range authors {
			if _, ok := mergedAuthors[period][author]; !ok {
				addToSet(noMerge, period, author)
			}
		}
	}

	firstTime := make(map[string]map[string]struct{})
	for author, at := range firstMerge {
		addToSet(firstTime, PeriodKey(at, tf), author)
	}

	prolific := make(map[string]map[string]int)
	for period, counts := range commentCounts {
		users := make(map[string]int)
		for login, n := range counts {
			if n > threshold {
				users[login] = n
			}
		}
		prolific[period] = users
	}

	// Every period carrying any data. Keys are zero-padded so lexicographic
	// order is chronological.
	seen := make(map[string]struct{})
	for p := range mergedAuthors {
		seen[p] = struct{}{}
	}
	for p := range allAuthors {
		seen[p] = struct{}{}
	}
	for p := range firstTime {
		seen[p] = struct{}{}
	}
	for p := range prolific {
		seen[p] = struct{}{}
	}
	periods := sortedSet(seen)

	mergeAccess := make(map[string]map[string]struct{})
	mergesByActor := make(map[string]map[string]int)
	for _, m := range mergeActions {
		period := PeriodKey(m.at, tf)
		addToSet(mergeAccess, period, m.actor)
		bumpNested(mergesByActor, period, m.actor)
	}

	// Top authors by total merged PR count across all periods.
	totalByAuthor := make(map[string]int)
	for _, period := range periods {
		for author, n := range prsByAuthor[period] {
			totalByAuthor[author] += n
		}
	}
	topAuthors := topN(totalByAuthor, topAuthorCount)

	out := TimeframeStats{
		Periods:                       periods,
		UniqueAuthorCounts:            make(map[string]int, len(periods)),
		NoMergeAuthorCounts:           make(map[string]int, len(periods)),
		FirstTimeAuthorCounts:         make(map[string]int, len(periods)),
		ProlificCommenterCounts:       make(map[string]int, len(periods)),
		MergeAccessCounts:             make(map[string]int, len(periods)),
		MergeAccessUsers:              make(map[string][]string, len(periods)),
		UniqueAuthors:                 make(map[string][]string, len(periods)),
		NoMergeAuthors:                make(map[string][]string, len(periods)),
		FirstTimeAuthors:              make(map[string][]string, len(periods)),
		ProlificCommenterDetails:      make(map[string]map[string]int, len(periods)),
		MergesByActor:                 make(map[string]map[string]int, len(periods)),
		AvgTimeToMerge:                make(map[string]float64, len(periods)),
		MedianTimeToMerge:             make(map[string]float64, len(periods)),
		PRsByAuthor:                   make(map[string]map[string]int, len(periods)),
		AvgTimeToMergeExclTop5:        make(map[string]float64, len(periods)),
		AvgTimeToMergeExclMaintainers: make(map[string]float64, len(periods)),
		TimeToMergeBySize:             make(map[string]map[string]float64, len(sizeBuckets)),
		ContributorStats:              make(map[string]map[string]ContributorPeriodStats, len(contributor)),
	}

	for _, period := range periods {
		out.UniqueAuthorCounts[period] = len(mergedAuthors[period])
		out.NoMergeAuthorCounts[period] = len(noMerge[period])
		out.FirstTimeAuthorCounts[period] = len(firstTime[period])
		out.ProlificCommenterCounts[period] = len(prolific[period])
		out.MergeAccessCounts[period] = len(mergeAccess[period])

		out.MergeAccessUsers[period] = sortedSet(mergeAccess[period])
		out.UniqueAuthors[period] = sortedSet(mergedAuthors[period])
		out.NoMergeAuthors[period] = sortedSet(noMerge[period])
		out.FirstTimeAuthors[period] = sortedSet(firstTime[period])

		out.ProlificCommenterDetails[period] = copyCounts(prolific[period])
		out.MergesByActor[period] = copyCounts(mergesByActor[period])
		out.PRsByAuthor[period] = copyCounts(prsByAuthor[period])

		out.AvgTimeToMerge[period] = round1(mean(ttmByPeriod[period]))
		out.MedianTimeToMerge[period] = round1(median(ttmByPeriod[period]))

		var exclTop, exclMaint []float64
		for _, m := range ttmWithAuthor[period] {
			if _, ok := topAuthors[m.author]; !ok {
				exclTop = append(exclTop, m.ttmDays())
			}
			if _, ok := maintainers[m.author]; !ok {
				exclMaint = append(exclMaint, m.ttmDays())
			}
		}
		out.AvgTimeToMergeExclTop5[period] = round1(mean(exclTop))
		out.AvgTimeToMergeExclMaintainers[period] = round1(mean(exclMaint))
	}

	for _, bucket := range sizeBuckets {
		byPeriod := make(map[string]float64, len(periods))
		for _, period := range periods {
			byPeriod[period] = round1(mean(ttmBySize[period][bucket]))
		}
		out.TimeToMergeBySize[bucket] = byPeriod
	}

	for author, byPeriod := range contributor {
		stats := make(map[string]ContributorPeriodStats, len(byPeriod))
		for period, acc := range byPeriod {
			stats[period] = acc.stats()
		}
		out.ContributorStats[author] = stats
	}

	return out
}

// contributorAccum accumulates one author's merged-PR dimensions in a period.
type contributorAccum struct {
	ttm       []float64
	additions []float64
	deletions []float64
	commits   []float64
}

func (a *contributorAccum) add(ttm float64, additions, deletions, commits int) {
	a.ttm = append(a.ttm, ttm)
	a.additions = append(a.additions, float64(additions))
	a.deletions = append(a.deletions, float64(deletions))
	a.commits = append(a.commits, float64(commits))
}

func (a *contributorAccum) stats() ContributorPeriodStats {
	return ContributorPeriodStats{
		Count:          len(a.ttm),
		AvgTimeToMerge: round1(mean(a.ttm)),
		AvgAdditions:   round1(mean(a.additions)),
		AvgDeletions:   round1(mean(a.deletions)),
		AvgCommits:     round1(mean(a.commits)),
	}
}

func addToSet(m map[string]map[string]struct{}, period, login string) {
	if m[period] == nil {
		m[period] = make(map[string]struct{})
	}
	m[period][login] = struct{}{}
}

func bumpNested(m map[string]map[string]int, period, login string) {
	if m[period] == nil {
		m[period] = make(map[string]int)
	}
	m[period][login]++
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func copyCounts(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// topN returns the n logins with the highest counts, ties broken by login so
// the result is deterministic.
func topN(counts map[string]int, n int) map[string]struct{} {
	type entry struct {
		login string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for login, count := range counts {
		entries = append(entries, entry{login, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].login < entries[j].login
	})

	out := make(map[string]struct{}, n)
	for i := 0; i < len(entries) && i < n; i++ {
		out[entries[i].login] = struct{}{}
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// median returns the upper median of vals without mutating the input.
func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

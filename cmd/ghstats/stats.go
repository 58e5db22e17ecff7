package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/backup"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/config"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/extract"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/output"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/stats"
)

type statsResult struct {
	Repository    string `json:"repository"`
	MergedPRs     int    `json:"merged_prs"`
	UniqueAuthors int    `json:"unique_authors"`
	OutputPath    string `json:"output_path"`
}

var statsCmd = &cobra.Command{
	Use:   "stats <repository>",
	Short: "Compute aggregate contributor activity stats from a backup",
	Long: `Stats reads a repository backup, resolves identities through the
username map, and writes an aggregate activity report bucketed by year,
quarter, and month: merged-PR authors, first-time contributors, prolific
commenters, merge actors, and time-to-merge distributions.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)
		repo := args[0]

		backupDir, _ := cmd.Flags().GetString("backup-dir")
		backupRoot, _ := cmd.Flags().GetString("backup-root")
		mapPath, _ := cmd.Flags().GetString("username-map")
		outPath, _ := cmd.Flags().GetString("output")
		threshold, _ := cmd.Flags().GetInt("comment-threshold")

		if backupDir == "" {
			if backupRoot == "" {
				backupRoot = cfg.File.BackupRoot
			}
			if backupRoot == "" {
				return cmdErr(fmt.Errorf("no backup location specified: use --backup-dir or --backup-root"), output.ErrConfig)
			}
			backupDir = config.BackupDir(backupRoot, repo)
		}

		if outPath == "" {
			outDir := cfg.File.OutDir
			if outDir == "" {
				outDir = "."
			}
			outPath = config.StatsPath(outDir, repo)
		}

		if mapPath == "" {
			mapPath = cfg.File.UsernameMap
		}
		usernames, err := loadUsernames(mapPath)
		if err != nil {
			return err
		}

		reader := &backup.Reader{
			Dir: backupDir,
			Progress: func(stage string, n, total int) {
				w.Info("reading %s %d/%d", stage, n, total)
			},
		}
		records, err := reader.Read()
		if err != nil {
			return cmdErr(fmt.Errorf("repository %s: %w", repo, err), errCodeFor(err))
		}

		resolved := extract.New(usernames).Resolve(repo, records)
		report := stats.Build(repo, resolved.Records, threshold)

		if err := extract.WriteJSON(report, outPath); err != nil {
			return cmdErr(fmt.Errorf("repository %s: %w", repo, err), errCodeFor(err))
		}

		for _, tf := range stats.Timeframes {
			w.Info("%s: %d periods", tf, len(report.Timeframes[tf].Periods))
		}

		var message string
		if !w.JSONMode {
			message = fmt.Sprintf("Wrote stats for %s to %s (%d merged PRs, %d unique authors)",
				repo, outPath, report.MergedPRs, report.UniqueAuthors)
		}
		w.Success(statsResult{
			Repository:    repo,
			MergedPRs:     report.MergedPRs,
			UniqueAuthors: report.UniqueAuthors,
			OutputPath:    outPath,
		}, message)
		return nil
	},
}

func init() {
	statsCmd.Flags().String("backup-dir", "", "Backup directory for the repository")
	statsCmd.Flags().String("backup-root", "", "Root directory containing github-metadata-backup-<repo> directories")
	statsCmd.Flags().StringP("username-map", "m", "", "Path to JSON username map (old login -> canonical login)")
	statsCmd.Flags().StringP("output", "o", "", "Output file path (default: stats-<repo>.json)")
	statsCmd.Flags().Int("comment-threshold", stats.DefaultCommentThreshold, "Comment count above which a user is a prolific commenter")
	rootCmd.AddCommand(statsCmd)
}

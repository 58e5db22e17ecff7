package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/extract"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/output"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/render"
)

var runCmd = &cobra.Command{
	Use:   "run [repositories...]",
	Short: "Extract a list of repositories sequentially, isolating per-repository failures",
	Long: `Run extracts every listed repository from the backup root, deriving
github-metadata-backup-<repo> as the backup path and data-<repo>.json as the
output path. Repositories are processed strictly sequentially; a failing
repository is reported and skipped without aborting the rest of the batch.
The repository list comes from the arguments, or from ghstats.toml when no
arguments are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		backupRoot, _ := cmd.Flags().GetString("backup-root")
		mapPath, _ := cmd.Flags().GetString("username-map")
		outDir, _ := cmd.Flags().GetString("out-dir")

		repos := args
		if len(repos) == 0 {
			repos = cfg.File.Repositories
		}
		if len(repos) == 0 {
			return cmdErr(fmt.Errorf("no repositories specified: pass them as arguments or set repositories in ghstats.toml"), output.ErrConfig)
		}

		if backupRoot == "" {
			backupRoot = cfg.File.BackupRoot
		}
		if backupRoot == "" {
			return cmdErr(fmt.Errorf("no backup root specified: use --backup-root or set backup_root in ghstats.toml"), output.ErrConfig)
		}

		if outDir == "" {
			outDir = cfg.File.OutDir
		}
		if outDir == "" {
			outDir = "."
		}

		if mapPath == "" {
			mapPath = cfg.File.UsernameMap
		}

		// The username map is shared configuration: a bad map aborts the run
		// before any repository is processed.
		usernames, err := loadUsernames(mapPath)
		if err != nil {
			return err
		}

		ext := extract.New(usernames)
		ext.Progress = func(stage string, n, total int) {
			w.Info("  reading %s %d/%d", stage, n, total)
		}

		failed := 0
		runs := ext.ExtractBatch(repos, backupRoot, outDir, func(run model.Run) {
			if run.OK {
				w.Info("extracted %s: %d records to %s", run.Repository, run.Records, run.OutputPath)
			} else {
				failed++
				w.Warn("repository %s: %s", run.Repository, run.Error)
			}
		})

		recordHistory(w, cfg, runs...)

		if failed > 0 {
			if !w.JSONMode {
				fmt.Fprintln(os.Stdout, render.RunSummary(runs))
			}
			return cmdErr(fmt.Errorf("%d of %d repositories failed", failed, len(runs)), output.ErrGeneral)
		}

		var message string
		if !w.JSONMode {
			message = render.RunSummary(runs)
		}
		w.Success(runs, message)
		return nil
	},
}

func init() {
	runCmd.Flags().String("backup-root", "", "Root directory containing github-metadata-backup-<repo> directories")
	runCmd.Flags().StringP("username-map", "m", "", "Path to JSON username map (old login -> canonical login)")
	runCmd.Flags().String("out-dir", "", "Directory for output files (default: current directory)")
	rootCmd.AddCommand(runCmd)
}

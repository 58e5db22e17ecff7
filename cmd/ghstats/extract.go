package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/config"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/extract"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/output"
)

type extractResult struct {
	Repository string `json:"repository"`
	Records    int    `json:"records"`
	Unmapped   int    `json:"unmapped"`
	OutputPath string `json:"output_path"`
}

var extractCmd = &cobra.Command{
	Use:   "extract <repository>",
	Short: "Extract one repository's backup into an identity-resolved JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)
		repo := args[0]

		backupDir, _ := cmd.Flags().GetString("backup-dir")
		backupRoot, _ := cmd.Flags().GetString("backup-root")
		mapPath, _ := cmd.Flags().GetString("username-map")
		outPath, _ := cmd.Flags().GetString("output")
		force, _ := cmd.Flags().GetBool("force")

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
			outPath = config.OutputPath(outDir, repo)
		}

		if mapPath == "" {
			mapPath = cfg.File.UsernameMap
		}
		usernames, err := loadUsernames(mapPath)
		if err != nil {
			return err
		}

		// Overwriting an existing output is confirmed interactively in human
		// mode; JSON mode and --force proceed without prompting.
		if !force && !w.JSONMode {
			if _, err := os.Stat(outPath); err == nil {
				var confirmed bool
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewConfirm().
							Title(fmt.Sprintf("Output file %s already exists. Overwrite?", outPath)).
							Affirmative("Yes, overwrite").
							Negative("Cancel").
							Value(&confirmed),
					),
				)

				if err := form.Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						w.Info("Cancelled.")
						return nil
					}
					return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
				}

				if !confirmed {
					w.Info("Cancelled.")
					return nil
				}
			}
		}

		ext := extract.New(usernames)
		ext.Progress = func(stage string, n, total int) {
			w.Info("reading %s %d/%d", stage, n, total)
		}

		start := time.Now()
		result, err := ext.Extract(repo, backupDir, outPath)
		elapsed := time.Since(start)

		run := model.Run{
			Repository: repo,
			Duration:   elapsed,
			CreatedAt:  time.Now().UTC(),
		}

		if err != nil {
			run.Error = err.Error()
			recordHistory(w, cfg, run)
			return cmdErr(fmt.Errorf("repository %s: %w", repo, err), errCodeFor(err))
		}

		run.OK = true
		run.Records = len(result.Records)
		run.Unmapped = len(result.UnmappedLogins)
		run.OutputPath = outPath
		recordHistory(w, cfg, run)

		var message string
		if !w.JSONMode {
			message = fmt.Sprintf("Extracted %d records (%d unmapped identities) to %s",
				len(result.Records), len(result.UnmappedLogins), outPath)
		}
		w.Success(extractResult{
			Repository: repo,
			Records:    len(result.Records),
			Unmapped:   len(result.UnmappedLogins),
			OutputPath: outPath,
		}, message)
		return nil
	},
}

func init() {
	extractCmd.Flags().String("backup-dir", "", "Backup directory for the repository")
	extractCmd.Flags().String("backup-root", "", "Root directory containing github-metadata-backup-<repo> directories")
	extractCmd.Flags().StringP("username-map", "m", "", "Path to JSON username map (old login -> canonical login)")
	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: data-<repo>.json)")
	extractCmd.Flags().BoolP("force", "f", false, "Overwrite an existing output file without confirmation")
	rootCmd.AddCommand(extractCmd)
}

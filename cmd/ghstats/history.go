package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/db"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/output"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/render"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded extraction runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		repo, _ := cmd.Flags().GetString("repo")
		limit, _ := cmd.Flags().GetInt("limit")

		if _, err := os.Stat(cfg.HistoryDBPath); os.IsNotExist(err) {
			w.Success([]model.Run{}, "No run history yet.")
			return nil
		}

		conn, err := db.Open(cfg.HistoryDBPath)
		if err != nil {
			return cmdErr(fmt.Errorf("opening history database: %w", err), output.ErrGeneral)
		}
		defer conn.Close()

		runs, err := db.ListRuns(conn, repo, limit)
		if err != nil {
			return cmdErr(fmt.Errorf("listing runs: %w", err), output.ErrGeneral)
		}
		if runs == nil {
			runs = []model.Run{}
		}

		var message string
		if !w.JSONMode {
			message = render.History(runs)
		}
		w.Success(runs, message)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("repo", "", "Only show runs for this repository")
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

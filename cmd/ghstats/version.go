package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/spf13/cobra"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/render"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print ghstats version information",
	Run: func(cmd *cobra.Command, args []string) {
		w := getWriter(cmd)

		var msg string
		if !w.JSONMode {
			bold := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
			dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
			msg = fmt.Sprintf("ghstats version %s %s",
				render.StyledText(version, bold),
				render.StyledText(fmt.Sprintf("(commit: %s, built: %s)", commit, buildDate), dim),
			)
		}

		w.Success(struct {
			Version   string `json:"version"`
			Commit    string `json:"commit"`
			BuildDate string `json:"build_date"`
		}{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
		}, msg)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

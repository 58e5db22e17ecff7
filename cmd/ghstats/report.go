package main

import (
	"github.com/spf13/cobra"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/extract"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/output"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/render"
)

type reportResult struct {
	Repository string   `json:"repository"`
	Records    int      `json:"records"`
	Unmapped   []string `json:"unmapped"`
}

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Summarize an extraction output file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)

		result, err := extract.ReadResult(args[0])
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		var message string
		if !w.JSONMode {
			rendered, err := render.Markdown(render.ExtractionReport(result))
			if err != nil {
				w.Warn("rendering markdown: %v", err)
			}
			message = rendered
		}
		w.Success(reportResult{
			Repository: result.Repository,
			Records:    len(result.Records),
			Unmapped:   result.UnmappedLogins,
		}, message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/backup"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/config"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/db"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/extract"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/identity"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/output"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type contextKey string

const cfgKey contextKey = "cfg"

// CmdError wraps an error with a machine-readable error code for structured output.
type CmdError struct {
	Err  error
	Code output.ErrorCode
}

func (e *CmdError) Error() string { return e.Err.Error() }

func cmdErr(err error, code output.ErrorCode) *CmdError {
	return &CmdError{Err: err, Code: code}
}

var rootCmd = &cobra.Command{
	Use:     "ghstats",
	Short:   "Extract contributor data from local GitHub metadata backups",
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve()
		if err != nil {
			return cmdErr(err, output.ErrConfig)
		}
		cmd.SetContext(context.WithValue(cmd.Context(), cfgKey, cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-essential output")
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func getWriter(cmd *cobra.Command) *output.Writer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	quietMode, _ := cmd.Flags().GetBool("quiet")
	return output.New(jsonMode, quietMode)
}

func getCfg(cmd *cobra.Command) *config.Config {
	cfg, _ := cmd.Context().Value(cfgKey).(*config.Config)
	return cfg
}

// errCodeFor classifies a pipeline error into its output code so each failure
// stage (read vs write) maps to a distinct exit code.
func errCodeFor(err error) output.ErrorCode {
	var malformed *backup.MalformedBackupError
	var writeErr *extract.WriteError
	switch {
	case errors.Is(err, backup.ErrBackupNotFound):
		return output.ErrBackupNotFound
	case errors.As(err, &malformed):
		return output.ErrMalformedBackup
	case errors.As(err, &writeErr):
		return output.ErrWrite
	default:
		return output.ErrGeneral
	}
}

// loadUsernames loads the username map, treating any failure as a
// configuration error that aborts before extraction starts.
func loadUsernames(path string) (identity.UsernameMap, error) {
	if path == "" {
		return nil, cmdErr(fmt.Errorf("no username map specified: use --username-map or set username_map in ghstats.toml"), output.ErrConfig)
	}
	usernames, err := identity.Load(path)
	if err != nil {
		return nil, cmdErr(err, output.ErrConfig)
	}
	return usernames, nil
}

// recordHistory appends run outcomes to the local ledger. Ledger failures are
// warnings only; they never fail an extraction that already wrote its output.
func recordHistory(w *output.Writer, cfg *config.Config, runs ...model.Run) {
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		w.Warn("recording run history: %v", err)
		return
	}

	conn, err := db.Open(cfg.HistoryDBPath)
	if err != nil {
		w.Warn("recording run history: %v", err)
		return
	}
	defer conn.Close()

	if err := db.Initialize(conn); err != nil {
		w.Warn("recording run history: %v", err)
		return
	}

	for i := range runs {
		if err := db.RecordRun(conn, &runs[i]); err != nil {
			w.Warn("recording run history: %v", err)
			return
		}
	}
}

// Execute runs the root command and returns an exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		jsonMode, _ := rootCmd.PersistentFlags().GetBool("json")
		quietMode, _ := rootCmd.PersistentFlags().GetBool("quiet")
		w := output.New(jsonMode, quietMode)

		var ce *CmdError
		if errors.As(err, &ce) {
			return w.Error(ce.Err, ce.Code)
		}
		return w.Error(err, output.ErrGeneral)
	}
	return 0
}

// Package config resolves the extractor's state directory and optional
// configuration file, and derives the per-repository path conventions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	dirName         = ".ghstats"
	configFileName  = "ghstats.toml"
	historyFileName = "history.db"

	// EnvPathVar overrides the state directory location.
	EnvPathVar = "GHSTATS_PATH"
)

// File is the optional ghstats.toml inside the state directory. Flags always
// override these values.
type File struct {
	BackupRoot   string   `toml:"backup_root"`
	UsernameMap  string   `toml:"username_map"`
	OutDir       string   `toml:"out_dir"`
	Repositories []string `toml:"repositories"`
}

// Config holds resolved configuration for a run.
type Config struct {
	StateDir      string // resolved .ghstats directory
	HistoryDBPath string // full path to history.db
	EnvVarSet     bool   // whether GHSTATS_PATH was used
	File          File   // contents of ghstats.toml, zero-valued when absent
}

// Resolve returns the current configuration by checking GHSTATS_PATH first,
// then falling back to $PWD/.ghstats. A present but unparseable ghstats.toml
// is an error; an absent one is not.
func Resolve() (*Config, error) {
	var stateDir string
	var envVarSet bool

	if envPath := os.Getenv(EnvPathVar); envPath != "" {
		stateDir = envPath
		envVarSet = true
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		stateDir = filepath.Join(cwd, dirName)
	}

	cfg := &Config{
		StateDir:      stateDir,
		HistoryDBPath: filepath.Join(stateDir, historyFileName),
		EnvVarSet:     envVarSet,
	}

	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile() error {
	path := filepath.Join(c.StateDir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &c.File); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// BackupDir derives a repository's backup directory from the backup root.
// The naming convention is part of the external contract with the backup
// tool and must not change.
func BackupDir(root, repo string) string {
	return filepath.Join(root, "github-metadata-backup-"+repo)
}

// OutputPath derives a repository's extraction output file path. Like
// BackupDir, the data-{repo}.json convention is an external contract.
func OutputPath(outDir, repo string) string {
	return filepath.Join(outDir, "data-"+repo+".json")
}

// StatsPath derives a repository's stats report file path.
func StatsPath(outDir, repo string) string {
	return filepath.Join(outDir, "stats-"+repo+".json")
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveEnvVar(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvPathVar, dir)

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.StateDir != dir {
		t.Errorf("StateDir = %q, want %q", cfg.StateDir, dir)
	}
	if !cfg.EnvVarSet {
		t.Error("EnvVarSet = false, want true")
	}
	if want := filepath.Join(dir, "history.db"); cfg.HistoryDBPath != want {
		t.Errorf("HistoryDBPath = %q, want %q", cfg.HistoryDBPath, want)
	}
}

func TestResolveDefaultsToWorkingDir(t *testing.T) {
	t.Setenv(EnvPathVar, "")

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cwd, ".ghstats"); cfg.StateDir != want {
		t.Errorf("StateDir = %q, want %q", cfg.StateDir, want)
	}
	if cfg.EnvVarSet {
		t.Error("EnvVarSet = true, want false")
	}
}

func TestResolveAbsentFileIsFine(t *testing.T) {
	t.Setenv(EnvPathVar, t.TempDir())

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.File.BackupRoot != "" || len(cfg.File.Repositories) != 0 {
		t.Errorf("File = %+v, want zero value", cfg.File)
	}
}

func TestResolveLoadsFile(t *testing.T) {
	dir := t.TempDir()
	content := `backup_root = "/srv/backups"
username_map = "/srv/usernames.json"
out_dir = "/srv/out"
repositories = ["bitcoin/bitcoin", "bitcoin-core/gui"]
`
	if err := os.WriteFile(filepath.Join(dir, "ghstats.toml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPathVar, dir)

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.File.BackupRoot != "/srv/backups" {
		t.Errorf("BackupRoot = %q", cfg.File.BackupRoot)
	}
	if cfg.File.UsernameMap != "/srv/usernames.json" {
		t.Errorf("UsernameMap = %q", cfg.File.UsernameMap)
	}
	if cfg.File.OutDir != "/srv/out" {
		t.Errorf("OutDir = %q", cfg.File.OutDir)
	}
	if len(cfg.File.Repositories) != 2 || cfg.File.Repositories[1] != "bitcoin-core/gui" {
		t.Errorf("Repositories = %v", cfg.File.Repositories)
	}
}

func TestResolveMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ghstats.toml"), []byte("backup_root = [not toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPathVar, dir)

	if _, err := Resolve(); err == nil {
		t.Fatal("Resolve() with malformed ghstats.toml: want error, got nil")
	} else if !strings.Contains(err.Error(), "ghstats.toml") {
		t.Errorf("error %q does not name the file", err)
	}
}

func TestPathConventions(t *testing.T) {
	if got, want := BackupDir("/backups", "bitcoin"), filepath.Join("/backups", "github-metadata-backup-bitcoin"); got != want {
		t.Errorf("BackupDir = %q, want %q", got, want)
	}
	if got, want := OutputPath("/out", "bitcoin"), filepath.Join("/out", "data-bitcoin.json"); got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
	if got, want := StatsPath("/out", "bitcoin"), filepath.Join("/out", "stats-bitcoin.json"); got != want {
		t.Errorf("StatsPath = %q, want %q", got, want)
	}
}

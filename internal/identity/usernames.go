// Package identity loads the username-mapping table and resolves raw actor
// logins from backups to canonical usernames.
package identity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dergoegge/bitcoin-core-github-metadata-stats/internal/model"
)

// UsernameMap maps a backup-recorded identity key (old login, legacy handle)
// to a canonical username. Loaded once at process start and never mutated, so
// it is safe to share read-only across repositories.
type UsernameMap map[string]string

// Load reads a username map from a JSON object file. Duplicate keys are a
// format violation and are rejected rather than last-write-wins, since a
// silent overwrite would hide a broken mapping table.
func Load(path string) (UsernameMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading username map: %w", err)
	}

	m, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing username map %s: %w", path, err)
	}
	return m, nil
}

// parse decodes a JSON object token by token so duplicate keys can be
// detected; a plain json.Unmarshal silently keeps the last value.
func parse(data []byte) (UsernameMap, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	m := make(UsernameMap)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := keyTok.(string)

		var value string
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value for key %q: %w", key, err)
		}

		if _, dup := m[key]; dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		m[key] = value
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON object")
	}

	return m, nil
}

// Resolve maps a raw login to an identity. Mappings are followed as chains
// (a -> b, b -> c resolves a to c) with a guard against cycles, matching how
// rename tables accumulate over time. A key with no entry resolves to an
// unmapped identity retaining the original key.
func (m UsernameMap) Resolve(key string) model.Identity {
	login := key
	mapped := false
	seen := make(map[string]struct{})

	for {
		next, ok := m[login]
		if !ok {
			break
		}
		if _, cycle := seen[login]; cycle {
			break
		}
		seen[login] = struct{}{}
		login = next
		mapped = true
	}

	if !mapped {
		return model.Unresolved(key)
	}
	return model.Resolved(login)
}

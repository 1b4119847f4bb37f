// Package state persists client state between runs: the token pair, global
// editor preferences, and a per-problem code cache.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	pkgerrors "ojcli/pkg/errors"
)

// EditorPrefs stores editor settings. They are global, not per problem.
type EditorPrefs struct {
	Theme       string `json:"theme,omitempty"`
	Language    string `json:"language,omitempty"`
	FontSize    int    `json:"font_size,omitempty"`
	LineNumbers bool   `json:"line_numbers"`
}

// State is the durable client state. The token keys mirror what the web
// client stores ("authToken" / "refresh_token"), so the same account state
// survives a wire-format comparison with it.
type State struct {
	AccessToken  string            `json:"authToken"`
	RefreshToken string            `json:"refresh_token"`
	Username     string            `json:"username,omitempty"`
	Editor       EditorPrefs       `json:"editor"`
	CodeCache    map[string]string `json:"code_cache,omitempty"`
}

// CachedCode returns the cached editor buffer for a problem.
func (s *State) CachedCode(problemRef string) (string, bool) {
	code, ok := s.CodeCache[problemRef]
	return code, ok
}

// SetCachedCode stores an editor buffer keyed by problem.
func (s *State) SetCachedCode(problemRef, code string) {
	if s.CodeCache == nil {
		s.CodeCache = make(map[string]string)
	}
	s.CodeCache[problemRef] = code
}

// ClearTokens drops credentials but keeps editor prefs and cached code.
func (s *State) ClearTokens() {
	s.AccessToken = ""
	s.RefreshToken = ""
	s.Username = ""
}

// Load reads state from path. A missing or empty file yields zero state.
func Load(path string) (State, error) {
	var st State
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, pkgerrors.Wrap(err, pkgerrors.StateLoadFailed)
	}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, pkgerrors.Wrap(err, pkgerrors.StateLoadFailed)
	}
	return st, nil
}

// Save writes state to path, creating parent directories as needed.
// Mode 0600: the file holds credentials.
func Save(path string, st State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.StateSaveFailed)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, pkgerrors.StateSaveFailed)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.StateSaveFailed)
	}
	return nil
}

// Clear removes the state file.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(err, pkgerrors.StateClearFailed)
	}
	return nil
}

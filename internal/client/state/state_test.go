package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsZeroState(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("load missing file failed: %v", err)
	}
	if st.AccessToken != "" || st.RefreshToken != "" || st.Username != "" {
		t.Fatalf("expected zero state, got %+v", st)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	st := State{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		Username:     "demo",
		Editor:       EditorPrefs{Theme: "dark", Language: "python", FontSize: 14, LineNumbers: true},
	}
	st.SetCachedCode("two-sum", "print('hi')")

	if err := Save(path, st); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.AccessToken != "access-1" || loaded.RefreshToken != "refresh-1" || loaded.Username != "demo" {
		t.Fatalf("tokens did not round trip: %+v", loaded)
	}
	if loaded.Editor != st.Editor {
		t.Fatalf("editor prefs did not round trip: %+v", loaded.Editor)
	}
	code, ok := loaded.CachedCode("two-sum")
	if !ok || code != "print('hi')" {
		t.Fatalf("cached code did not round trip: %q %v", code, ok)
	}
}

// The token keys must match what the web client stores, so the same
// account state is readable by both.
func TestSaveUsesWebClientKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := Save(path, State{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state file failed: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("state file is not valid json: %v", err)
	}
	if _, ok := raw["authToken"]; !ok {
		t.Fatalf("missing authToken key, got keys %v", keys(raw))
	}
	if _, ok := raw["refresh_token"]; !ok {
		t.Fatalf("missing refresh_token key, got keys %v", keys(raw))
	}
}

func TestSaveFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := Save(path, State{AccessToken: "secret"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("state file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestClearTokensKeepsPrefsAndCache(t *testing.T) {
	st := State{
		AccessToken:  "a",
		RefreshToken: "r",
		Username:     "demo",
		Editor:       EditorPrefs{Theme: "dark"},
	}
	st.SetCachedCode("two-sum", "code")
	st.ClearTokens()
	if st.AccessToken != "" || st.RefreshToken != "" || st.Username != "" {
		t.Fatalf("tokens not cleared: %+v", st)
	}
	if st.Editor.Theme != "dark" {
		t.Fatalf("editor prefs lost on token clear")
	}
	if _, ok := st.CachedCode("two-sum"); !ok {
		t.Fatalf("code cache lost on token clear")
	}
}

func TestClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := Save(path, State{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := Clear(path); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("state file still exists after clear")
	}
	// A second clear of an absent file is not an error.
	if err := Clear(path); err != nil {
		t.Fatalf("clear of missing file failed: %v", err)
	}
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

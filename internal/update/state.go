package update

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// uiState is the persisted slice of UI state: which view was open and what
// was selected. Written atomically on quit, loaded on start.
type uiState struct {
	LastView    string `json:"last_view"`
	SelectedKey string `json:"selected_key"`
}

func (m *Model) persistUIState() {
	path := strings.TrimSpace(m.deps.StatePath)
	if path == "" {
		return
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return
		}
	}
	payload, err := json.MarshalIndent(uiState{
		LastView:    string(m.CurrentView),
		SelectedKey: m.SelectedKey,
	}, "", "  ")
	if err != nil {
		return
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, path)
}

func loadUIState(path string) (uiState, error) {
	var state uiState
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return state, nil
	}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, err
	}
	if strings.TrimSpace(string(raw)) == "" {
		return state, nil
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return uiState{}, err
	}
	return state, nil
}

package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// viewStatePath keeps the view state next to the user profile
func (a *App) viewStatePath() string {
	return filepath.Join(filepath.Dir(a.cfg.ProfilePath), "view-state.json")
}

// SaveViewState stores the frontend's view state (selected category,
// search text) so the next launch reopens the same view
func (a *App) SaveViewState(stateJSON string) error {
	if err := a.ready(); err != nil {
		return err
	}
	var testParse interface{}
	if err := json.Unmarshal([]byte(stateJSON), &testParse); err != nil {
		return fmt.Errorf("invalid view state JSON: %v", err)
	}

	path := a.viewStatePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(stateJSON), 0644); err != nil {
		return fmt.Errorf("failed to write view state file: %v", err)
	}
	return nil
}

// LoadViewState returns the saved view state, or "{}" when there is none
func (a *App) LoadViewState() (string, error) {
	if err := a.ready(); err != nil {
		return "{}", err
	}
	data, err := os.ReadFile(a.viewStatePath())
	if os.IsNotExist(err) {
		return "{}", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read view state file: %v", err)
	}

	var testParse interface{}
	if err := json.Unmarshal(data, &testParse); err != nil {
		return "", fmt.Errorf("invalid JSON in view state file: %v", err)
	}
	return string(data), nil
}

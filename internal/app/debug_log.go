package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"script-toolbox/internal/config"
	"script-toolbox/internal/gateway"
)

// defaultDebugLogPath uses ~/Library/Logs when that exists (macOS) and
// ~/.cache otherwise, falling back to the temp dir without a home
func defaultDebugLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), config.AppDirName+"-debug.log")
	}
	base := filepath.Join(home, ".cache")
	if info, err := os.Stat(filepath.Join(home, "Library", "Logs")); err == nil && info.IsDir() {
		base = filepath.Join(home, "Library", "Logs")
	}
	return filepath.Join(base, config.AppDirName, "debug.log")
}

func (a *App) debugLogPath() string {
	if a.cfg != nil && a.cfg.DebugLogPath != "" {
		return a.cfg.DebugLogPath
	}
	return defaultDebugLogPath()
}

// WriteDebugLog appends frontend diagnostics to the debug log
func (a *App) WriteDebugLog(logContent string) error {
	path := a.debugLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString(logContent); err != nil {
		return fmt.Errorf("failed to write log: %v", err)
	}
	return nil
}

// ClearDebugLog truncates the debug log
func (a *App) ClearDebugLog() error {
	if err := os.WriteFile(a.debugLogPath(), nil, 0644); err != nil {
		return fmt.Errorf("failed to clear log file: %v", err)
	}
	return nil
}

// GetDebugLogPath returns the debug log path so the UI can show it
func (a *App) GetDebugLogPath() string {
	return a.debugLogPath()
}

// recordPersistFailure keeps failed order writes in the debug log next to
// the frontend's own diagnostics
func (a *App) recordPersistFailure(res gateway.Result) {
	line := fmt.Sprintf("%s [order] failed to persist %s %v: %v\n",
		time.Now().Format(time.RFC3339), res.Kind, res.IDs, res.Err)
	if err := a.WriteDebugLog(line); err != nil {
		log.Printf("⚠️ [Order] %v", err)
	}
}

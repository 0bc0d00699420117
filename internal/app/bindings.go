package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"script-toolbox/internal/discovery"
	"script-toolbox/internal/dragdrop"
	"script-toolbox/internal/order"
	"script-toolbox/internal/placement"
	"script-toolbox/internal/prefs"
)

func parseKind(kind string) (order.Kind, error) {
	k := order.Kind(kind)
	if !k.Valid() {
		return "", fmt.Errorf("unknown order kind %q", kind)
	}
	return k, nil
}

// GetScripts rescans the scripts directory and returns every script in
// display order
func (a *App) GetScripts() ([]discovery.Script, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	scripts, err := a.reload()
	if err != nil {
		return nil, fmt.Errorf("failed to scan scripts: %v", err)
	}
	return scripts, nil
}

// Refresh reloads both orders from the profile, rescans and notifies
// listeners
func (a *App) Refresh() ([]discovery.Script, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	if err := a.engine.Load(context.Background()); err != nil {
		return nil, err
	}
	scripts, err := a.reload()
	if err != nil {
		return nil, fmt.Errorf("failed to scan scripts: %v", err)
	}
	a.emit(EventScriptsChanged, scripts)
	return scripts, nil
}

// SearchScripts filters the current scripts by name, description or
// category
func (a *App) SearchScripts(query string) []discovery.Script {
	return discovery.Search(a.Scripts(), query)
}

// GetScriptOrder returns the script order, possibly empty
func (a *App) GetScriptOrder() []string {
	if a.ready() != nil {
		return []string{}
	}
	return a.engine.Order(order.KindScripts)
}

// SaveScriptOrder stores ids as the script order and waits for the write
func (a *App) SaveScriptOrder(ids []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	a.engine.SetOrder(order.KindScripts, ids)
	if err := a.prefs.SaveScriptOrder(context.Background(), ids); err != nil {
		return fmt.Errorf("failed to save script order: %v", err)
	}
	return nil
}

// GetCategoryOrder returns the category order without the pinned "all"
func (a *App) GetCategoryOrder() []string {
	if a.ready() != nil {
		return []string{}
	}
	return a.engine.Order(order.KindCategories)
}

// SaveCategoryOrder stores ids as the category order and waits for the
// write
func (a *App) SaveCategoryOrder(ids []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	a.engine.SetOrder(order.KindCategories, ids)
	if err := a.prefs.SaveCategoryOrder(context.Background(), a.engine.Order(order.KindCategories)); err != nil {
		return fmt.Errorf("failed to save category order: %v", err)
	}
	return nil
}

// GetScriptCategories returns the categories used by scripts plus the
// custom ones, following the category order
func (a *App) GetScriptCategories() []string {
	if a.ready() != nil {
		return []string{}
	}
	known := append(discovery.Categories(a.Scripts()), a.prefs.CustomCategories()...)
	return order.ApplyOrder(dedupe(known), a.engine.Order(order.KindCategories))
}

func dedupe(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// AddCustomCategory creates an empty category at the end of the order
func (a *App) AddCustomCategory(name string) (bool, error) {
	if err := a.ready(); err != nil {
		return false, err
	}
	added, err := a.prefs.AddCustomCategory(name)
	if err != nil {
		return false, fmt.Errorf("failed to add category: %v", err)
	}
	if added {
		a.engine.Add(order.KindCategories, name)
	}
	return added, nil
}

// RemoveCustomCategory deletes a custom category; its scripts fall back
// to Uncategorized
func (a *App) RemoveCustomCategory(name string) (bool, error) {
	if err := a.ready(); err != nil {
		return false, err
	}
	removed, err := a.prefs.RemoveCustomCategory(name)
	if err != nil {
		return false, fmt.Errorf("failed to remove category: %v", err)
	}
	if removed {
		a.engine.Remove(order.KindCategories, name)
		if _, err := a.reload(); err != nil {
			return true, fmt.Errorf("failed to scan scripts: %v", err)
		}
	}
	return removed, nil
}

// AssignScriptToCategory moves a script into category, creating the
// category when no script defines it
func (a *App) AssignScriptToCategory(scriptID, category string) error {
	if err := a.ready(); err != nil {
		return err
	}
	defined := []string{}
	for _, s := range a.Scripts() {
		if s.ID != scriptID {
			defined = append(defined, s.Category)
		}
	}
	if _, err := a.prefs.AssignScriptToCategory(scriptID, category, defined); err != nil {
		return fmt.Errorf("failed to assign category: %v", err)
	}
	if category != "" && category != prefs.Uncategorized {
		a.engine.Add(order.KindCategories, category)
	}
	if _, err := a.reload(); err != nil {
		return fmt.Errorf("failed to scan scripts: %v", err)
	}
	return nil
}

// SaveParameterDefault remembers the last value used for a parameter
func (a *App) SaveParameterDefault(scriptID, param string, value interface{}) error {
	if err := a.ready(); err != nil {
		return err
	}
	if err := a.prefs.SaveParameterDefault(scriptID, param, value); err != nil {
		return fmt.Errorf("failed to save parameter default: %v", err)
	}
	return nil
}

// BeginDrag starts a drag session for a script card or category item
func (a *App) BeginDrag(kind, itemID string) (dragdrop.Session, error) {
	if err := a.ready(); err != nil {
		return dragdrop.Session{}, err
	}
	k, err := parseKind(kind)
	if err != nil {
		return dragdrop.Session{}, err
	}
	return a.engine.BeginDrag(k, itemID)
}

// HoverDrag resolves where the dragged element belongs for the pointer
// position over the rendered elements
func (a *App) HoverDrag(sessionID string, elems []placement.Element, x, y float64) (dragdrop.HoverResult, error) {
	if err := a.ready(); err != nil {
		return dragdrop.HoverResult{}, err
	}
	return a.engine.Hover(sessionID, elems, placement.Point{X: x, Y: y})
}

// DropOn applies a drop onto targetID and reports whether the order changed
func (a *App) DropOn(sessionID, targetID string) (bool, error) {
	if err := a.ready(); err != nil {
		return false, err
	}
	return a.engine.Drop(sessionID, targetID)
}

// EndDrag ends the session, resyncing from the rendered order when given
func (a *App) EndDrag(sessionID string, visual []string) error {
	if err := a.ready(); err != nil {
		return err
	}
	_, err := a.engine.EndDrag(sessionID, visual)
	return err
}

// SyncOrder resynchronises an order from the rendered one outside a drag
func (a *App) SyncOrder(kind string, visual []string) (bool, error) {
	if err := a.ready(); err != nil {
		return false, err
	}
	k, err := parseKind(kind)
	if err != nil {
		return false, err
	}
	return a.engine.SyncVisual(k, visual), nil
}

// CancelDrag drops the open session for kind, if any, leaving the order
// as it is. The frontend calls it when a gesture is abandoned without a
// drag-end.
func (a *App) CancelDrag(kind string) (bool, error) {
	if err := a.ready(); err != nil {
		return false, err
	}
	k, err := parseKind(kind)
	if err != nil {
		return false, err
	}
	return a.engine.CancelDrag(k), nil
}

// GetActiveDrag returns the open session for kind, or nil
func (a *App) GetActiveDrag(kind string) (*dragdrop.Session, error) {
	if err := a.ready(); err != nil {
		return nil, err
	}
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	s, ok := a.engine.ActiveDrag(k)
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (a *App) findScript(scriptID string) (discovery.Script, error) {
	for _, s := range a.Scripts() {
		if s.ID == scriptID {
			return s, nil
		}
	}
	return discovery.Script{}, fmt.Errorf("script %q not found", scriptID)
}

// DeleteScript removes the script folder from disk and forgets its order
// slot and preferences
func (a *App) DeleteScript(scriptID string) error {
	if err := a.ready(); err != nil {
		return err
	}
	script, err := a.findScript(scriptID)
	if err != nil {
		return err
	}

	folder := filepath.Dir(script.FilePath)
	if err := os.RemoveAll(folder); err != nil {
		return fmt.Errorf("failed to delete script folder: %v", err)
	}
	if err := a.prefs.ForgetScript(scriptID, script.Name); err != nil {
		log.Printf("⚠️ [Prefs] Failed to forget %s: %v", scriptID, err)
	}
	a.engine.Remove(order.KindScripts, scriptID)
	log.Printf("✅ Deleted script %s (%s)", script.Name, folder)

	scripts, err := a.reload()
	if err != nil {
		return fmt.Errorf("failed to scan scripts: %v", err)
	}
	a.emit(EventScriptsChanged, scripts)
	return nil
}

const invalidFolderChars = `<>:"/\|?*`

// RenameScriptFolder renames the script's folder. The script keeps its id,
// so its order slot and preferences follow it.
func (a *App) RenameScriptFolder(scriptID, newName string) error {
	if err := a.ready(); err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("script name cannot be empty")
	}
	if strings.ContainsAny(newName, invalidFolderChars) {
		return fmt.Errorf("script name %q contains invalid characters", newName)
	}

	script, err := a.findScript(scriptID)
	if err != nil {
		return err
	}
	if newName == script.Name {
		return nil
	}

	oldFolder := filepath.Dir(script.FilePath)
	newFolder := filepath.Join(a.scanner.Dir(), newName)
	if _, err := os.Stat(newFolder); err == nil {
		return fmt.Errorf("a script named %q already exists", newName)
	}
	// mapped first so a rescan triggered by the rename sees the old id
	if err := a.prefs.MoveIDMapping(script.Name, newName, scriptID); err != nil {
		return fmt.Errorf("failed to save id mapping: %v", err)
	}
	if err := os.Rename(oldFolder, newFolder); err != nil {
		a.prefs.MoveIDMapping(newName, script.Name, scriptID)
		return fmt.Errorf("failed to rename script folder: %v", err)
	}
	log.Printf("✅ Renamed script %s to %s", script.Name, newName)

	scripts, err := a.reload()
	if err != nil {
		return fmt.Errorf("failed to scan scripts: %v", err)
	}
	a.emit(EventScriptsChanged, scripts)
	return nil
}

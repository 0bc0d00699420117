package prefs

import (
	"slices"
)

func (p *Profile) script(id string) *ScriptPrefs {
	sp := p.Scripts[id]
	if sp == nil {
		sp = &ScriptPrefs{}
		p.Scripts[id] = sp
	}
	return sp
}

func appendUnique(list []string, v string) ([]string, bool) {
	if slices.Contains(list, v) {
		return list, false
	}
	return append(list, v), true
}

// AddCustomCategory registers name and appends it to the category order.
// It reports false when the category already exists.
func (s *Store) AddCustomCategory(name string) (bool, error) {
	if name == "" || name == Uncategorized {
		return false, nil
	}
	return s.update(func(p *Profile) bool {
		var added bool
		p.CustomCategories, added = appendUnique(p.CustomCategories, name)
		if !added {
			return false
		}
		p.Layout.CategoryOrder, _ = appendUnique(p.Layout.CategoryOrder, name)
		return true
	})
}

// RemoveCustomCategory drops name from the custom categories and the
// category order, and moves its scripts back to Uncategorized.
func (s *Store) RemoveCustomCategory(name string) (bool, error) {
	return s.update(func(p *Profile) bool {
		i := slices.Index(p.CustomCategories, name)
		if i < 0 {
			return false
		}
		p.CustomCategories = slices.Delete(p.CustomCategories, i, i+1)
		p.Layout.CategoryOrder = slices.DeleteFunc(p.Layout.CategoryOrder, func(c string) bool {
			return c == name
		})
		for _, sp := range p.Scripts {
			if sp != nil && sp.Category == name {
				sp.Category = Uncategorized
			}
		}
		return true
	})
}

// AssignScriptToCategory records the category override for scriptID.
// Categories not defined by any script (scriptDefined) are registered as
// custom and appended to the category order. It returns the category
// order after the change.
func (s *Store) AssignScriptToCategory(scriptID, category string, scriptDefined []string) ([]string, error) {
	var order []string
	_, err := s.update(func(p *Profile) bool {
		p.script(scriptID).Category = category
		if category != "" && category != Uncategorized && !slices.Contains(scriptDefined, category) {
			p.CustomCategories, _ = appendUnique(p.CustomCategories, category)
			p.Layout.CategoryOrder, _ = appendUnique(p.Layout.CategoryOrder, category)
		}
		order = slices.Clone(p.Layout.CategoryOrder)
		return true
	})
	return order, err
}

// SaveParameterDefault remembers the last value used for a parameter
func (s *Store) SaveParameterDefault(scriptID, param string, value any) error {
	_, err := s.update(func(p *Profile) bool {
		sp := p.script(scriptID)
		if sp.ParameterDefaults == nil {
			sp.ParameterDefaults = map[string]any{}
		}
		sp.ParameterDefaults[param] = value
		return true
	})
	return err
}

// ScriptPrefs returns a copy of the overrides for scriptID
func (s *Store) ScriptPrefs(scriptID string) (ScriptPrefs, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.profile.Scripts[scriptID]
	if !ok || sp == nil {
		return ScriptPrefs{}, false
	}
	cp := *sp
	return cp, true
}

// IDMapping returns the id recorded for a script folder
func (s *Store) IDMapping(folder string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.profile.IDMappings[folder]
	return id, ok
}

// RecordIDMapping stores the id for a script folder in memory. It is
// written with the next save.
func (s *Store) RecordIDMapping(folder, id string) {
	s.mu.Lock()
	s.profile.IDMappings[folder] = id
	s.mu.Unlock()
}

// MoveIDMapping re-keys the id of a renamed script folder so the script
// keeps its place and preferences
func (s *Store) MoveIDMapping(oldFolder, newFolder, id string) error {
	_, err := s.update(func(p *Profile) bool {
		delete(p.IDMappings, oldFolder)
		p.IDMappings[newFolder] = id
		return true
	})
	return err
}

// ForgetScript removes every trace of a deleted script
func (s *Store) ForgetScript(scriptID, folder string) error {
	_, err := s.update(func(p *Profile) bool {
		p.Layout.ScriptOrder = slices.DeleteFunc(p.Layout.ScriptOrder, func(id string) bool {
			return id == scriptID
		})
		delete(p.Scripts, scriptID)
		delete(p.IDMappings, folder)
		return true
	})
	return err
}

// CustomCategories returns the user-defined categories
func (s *Store) CustomCategories() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.profile.CustomCategories)
}

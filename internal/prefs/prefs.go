package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Uncategorized is the category given to scripts without one. It is never
// part of the category order.
const Uncategorized = "Uncategorized"

// ScriptPrefs holds per-script user overrides
type ScriptPrefs struct {
	Category          string         `json:"category,omitempty"`
	Venv              string         `json:"venv,omitempty"`
	Icon              string         `json:"icon,omitempty"`
	ParameterDefaults map[string]any `json:"parameter_defaults,omitempty"`
}

// Layout holds the persisted orders
type Layout struct {
	ScriptOrder   []string `json:"scriptOrder"`
	CategoryOrder []string `json:"categoryOrder"`
}

// Profile is the on-disk user profile document
type Profile struct {
	Scripts          map[string]*ScriptPrefs `json:"scripts"`
	Layout           Layout                  `json:"layout"`
	Favorites        []string                `json:"favorites"`
	CustomCategories []string                `json:"custom_categories"`
	IDMappings       map[string]string       `json:"id_mappings"`
}

func defaultProfile() Profile {
	return Profile{
		Scripts:          map[string]*ScriptPrefs{},
		Layout:           Layout{ScriptOrder: []string{}, CategoryOrder: []string{}},
		Favorites:        []string{},
		CustomCategories: []string{},
		IDMappings:       map[string]string{},
	}
}

func (p *Profile) normalize() {
	if p.Scripts == nil {
		p.Scripts = map[string]*ScriptPrefs{}
	}
	if p.IDMappings == nil {
		p.IDMappings = map[string]string{}
	}
	if p.Layout.ScriptOrder == nil {
		p.Layout.ScriptOrder = []string{}
	}
	if p.Layout.CategoryOrder == nil {
		p.Layout.CategoryOrder = []string{}
	}
	if p.Favorites == nil {
		p.Favorites = []string{}
	}
	if p.CustomCategories == nil {
		p.CustomCategories = []string{}
	}
}

// Store is the user profile file plus its in-memory copy. All methods
// are safe for concurrent use.
type Store struct {
	path    string
	mu      sync.Mutex
	profile Profile
}

// Open loads the profile at path. A missing file yields the default
// profile; an unreadable one is logged and replaced by the default.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("profile path is required")
	}
	s := &Store{path: path, profile: defaultProfile()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read profile: %v", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		log.Printf("⚠️ [Prefs] Invalid JSON in %s, starting from defaults: %v", path, err)
		return s, nil
	}
	p.normalize()
	s.profile = p
	log.Printf("📂 [Prefs] Loaded profile from %s", path)
	return s, nil
}

// Path returns the profile location
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a deep copy of the current profile
func (s *Store) Snapshot() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.clone()
}

// Save writes the current profile to disk
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked()
}

// update applies fn under the lock and writes the profile when fn
// reports a change
func (s *Store) update(fn func(p *Profile) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn(&s.profile) {
		return false, nil
	}
	return true, s.writeLocked()
}

func (s *Store) writeLocked() error {
	data, err := json.MarshalIndent(s.profile, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %v", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace profile: %v", err)
	}
	return nil
}

// ScriptOrder returns the saved script order
func (s *Store) ScriptOrder(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.profile.Layout.ScriptOrder), nil
}

// SaveScriptOrder replaces and writes the script order
func (s *Store) SaveScriptOrder(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.update(func(p *Profile) bool {
		p.Layout.ScriptOrder = slices.Clone(ids)
		return true
	})
	return err
}

// CategoryOrder returns the saved category order
func (s *Store) CategoryOrder(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.profile.Layout.CategoryOrder), nil
}

// SaveCategoryOrder replaces and writes the category order
func (s *Store) SaveCategoryOrder(ctx context.Context, ids []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.update(func(p *Profile) bool {
		p.Layout.CategoryOrder = slices.Clone(ids)
		return true
	})
	return err
}

// SetScriptOrderInMemory updates the script order without writing. New
// scripts found at startup are only kept for the session until the next
// real save.
func (s *Store) SetScriptOrderInMemory(ids []string) {
	s.mu.Lock()
	s.profile.Layout.ScriptOrder = slices.Clone(ids)
	s.mu.Unlock()
}

// ResetLayout clears both orders
func (s *Store) ResetLayout() error {
	_, err := s.update(func(p *Profile) bool {
		p.Layout = Layout{ScriptOrder: []string{}, CategoryOrder: []string{}}
		return true
	})
	return err
}

func (p Profile) clone() Profile {
	out := Profile{
		Scripts:          make(map[string]*ScriptPrefs, len(p.Scripts)),
		Layout:           Layout{ScriptOrder: slices.Clone(p.Layout.ScriptOrder), CategoryOrder: slices.Clone(p.Layout.CategoryOrder)},
		Favorites:        slices.Clone(p.Favorites),
		CustomCategories: slices.Clone(p.CustomCategories),
		IDMappings:       make(map[string]string, len(p.IDMappings)),
	}
	for id, sp := range p.Scripts {
		if sp == nil {
			continue
		}
		cp := *sp
		if sp.ParameterDefaults != nil {
			cp.ParameterDefaults = make(map[string]any, len(sp.ParameterDefaults))
			for k, v := range sp.ParameterDefaults {
				cp.ParameterDefaults[k] = v
			}
		}
		out.Scripts[id] = &cp
	}
	for k, v := range p.IDMappings {
		out.IDMappings[k] = v
	}
	return out
}

package discovery

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"script-toolbox/internal/order"
	"script-toolbox/internal/prefs"
)

const (
	// EntryPoint is the file every script folder must contain
	EntryPoint = "main.py"
	// MetadataFile is the optional sidecar describing the script
	MetadataFile = "toolbox.yaml"

	defaultDescription = "No description"
)

// Parameter describes one command-line parameter of a script
type Parameter struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description,omitempty" yaml:"description"`
	Default     any    `json:"defaultValue,omitempty" yaml:"default"`
	Required    bool   `json:"required,omitempty" yaml:"required"`
}

// Script is a discovered script as shown on a card
type Script struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Category     string      `json:"category"`
	Parameters   []Parameter `json:"parameters"`
	Dependencies []string    `json:"dependencies"`
	FilePath     string      `json:"file_path"`
	Icon         string      `json:"icon,omitempty"`
	Venv         string      `json:"venv,omitempty"`
}

type metadata struct {
	Description  string      `yaml:"description"`
	Category     string      `yaml:"category"`
	Parameters   []Parameter `yaml:"parameters"`
	Dependencies []string    `yaml:"dependencies"`
}

// Scanner finds scripts in a directory of script folders
type Scanner struct {
	dir   string
	prefs *prefs.Store
}

// NewScanner creates a scanner for dir, creating it when missing
func NewScanner(dir string, store *prefs.Store) (*Scanner, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create scripts directory: %v", err)
	}
	return &Scanner{dir: dir, prefs: store}, nil
}

// Dir returns the scanned directory
func (s *Scanner) Dir() string {
	return s.dir
}

// Scan returns every folder that has an entry point, in directory order.
// Folders with a broken sidecar are skipped with a warning.
func (s *Scanner) Scan() ([]Script, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scripts directory: %v", err)
	}

	scripts := make([]Script, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		folder := filepath.Join(s.dir, entry.Name())
		entryFile := filepath.Join(folder, EntryPoint)
		if _, err := os.Stat(entryFile); err != nil {
			continue
		}

		meta, err := readMetadata(folder)
		if err != nil {
			log.Printf("⚠️ [Discovery] Skipping %s: %v", entry.Name(), err)
			continue
		}

		script := Script{
			ID:           s.scriptID(entry.Name()),
			Name:         entry.Name(),
			Description:  meta.Description,
			Category:     meta.Category,
			Parameters:   meta.Parameters,
			Dependencies: meta.Dependencies,
			FilePath:     entryFile,
			Icon:         findIcon(folder),
		}
		s.applyOverrides(&script)
		scripts = append(scripts, script)
	}
	return scripts, nil
}

func (s *Scanner) scriptID(folder string) string {
	if s.prefs != nil {
		if id, ok := s.prefs.IDMapping(folder); ok {
			return id
		}
	}
	id := GenerateID(folder)
	if s.prefs != nil {
		s.prefs.RecordIDMapping(folder, id)
	}
	return id
}

func (s *Scanner) applyOverrides(script *Script) {
	if s.prefs == nil {
		return
	}
	sp, ok := s.prefs.ScriptPrefs(script.ID)
	if !ok {
		return
	}
	if sp.Category != "" {
		script.Category = sp.Category
	}
	if sp.Icon != "" {
		script.Icon = sp.Icon
	}
	script.Venv = sp.Venv
	for i, p := range script.Parameters {
		if v, ok := sp.ParameterDefaults[p.Name]; ok {
			script.Parameters[i].Default = v
		}
	}
}

// GenerateID derives a stable id from a folder name: the lowercased name
// with spaces replaced, plus the first 8 hex digits of its MD5.
func GenerateID(folder string) string {
	sum := md5.Sum([]byte(folder))
	base := strings.ReplaceAll(strings.ToLower(folder), " ", "_")
	return base + "_" + hex.EncodeToString(sum[:])[:8]
}

func readMetadata(folder string) (metadata, error) {
	meta := metadata{}
	data, err := os.ReadFile(filepath.Join(folder, MetadataFile))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return meta, err
	default:
		if err := yaml.Unmarshal(data, &meta); err != nil {
			return meta, fmt.Errorf("parse %s: %w", MetadataFile, err)
		}
	}

	if meta.Description == "" {
		meta.Description = defaultDescription
	}
	if meta.Category == "" {
		meta.Category = prefs.Uncategorized
	}
	if meta.Parameters == nil {
		meta.Parameters = []Parameter{}
	}
	if meta.Dependencies == nil {
		meta.Dependencies = []string{}
	}
	return meta, nil
}

var iconExts = []string{".ico", ".png", ".jpg", ".jpeg", ".gif", ".svg"}

func findIcon(folder string) string {
	for _, ext := range iconExts {
		matches, _ := filepath.Glob(filepath.Join(folder, "*"+ext))
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[0]
		}
	}
	return ""
}

// IDs returns the ids of scripts in order
func IDs(scripts []Script) []string {
	ids := make([]string, len(scripts))
	for i, s := range scripts {
		ids[i] = s.ID
	}
	return ids
}

// Categories returns the sorted set of categories used by scripts
func Categories(scripts []Script) []string {
	seen := map[string]struct{}{}
	for _, s := range scripts {
		c := s.Category
		if c == "" {
			c = prefs.Uncategorized
		}
		seen[c] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Search matches query against name, description and category, ignoring
// case
func Search(scripts []Script, query string) []Script {
	q := strings.ToLower(query)
	out := []Script{}
	for _, s := range scripts {
		if strings.Contains(strings.ToLower(s.Name), q) ||
			strings.Contains(strings.ToLower(s.Description), q) ||
			strings.Contains(strings.ToLower(s.Category), q) {
			out = append(out, s)
		}
	}
	return out
}

// SortByOrder returns scripts arranged by ids; scripts missing from ids
// keep their relative order at the end
func SortByOrder(scripts []Script, ids []string) []Script {
	byID := make(map[string]Script, len(scripts))
	for _, s := range scripts {
		byID[s.ID] = s
	}
	out := make([]Script, 0, len(scripts))
	for _, id := range order.ApplyOrder(IDs(scripts), ids) {
		out = append(out, byID[id])
	}
	return out
}

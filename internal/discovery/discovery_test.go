package discovery

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"script-toolbox/internal/prefs"
)

func writeScript(t *testing.T, dir, name, sidecar string) {
	t.Helper()
	folder := filepath.Join(dir, name)
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(folder, EntryPoint), []byte("print('hi')\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if sidecar != "" {
		if err := os.WriteFile(filepath.Join(folder, MetadataFile), []byte(sidecar), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func newScanner(t *testing.T) (*Scanner, *prefs.Store, string) {
	t.Helper()
	root := t.TempDir()
	store, err := prefs.Open(filepath.Join(root, "user_profile.json"))
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(root, "scripts")
	sc, err := NewScanner(dir, store)
	if err != nil {
		t.Fatal(err)
	}
	return sc, store, dir
}

func TestGenerateID(t *testing.T) {
	id := GenerateID("Image Converter")
	if !strings.HasPrefix(id, "image_converter_") || len(id) != len("image_converter_")+8 {
		t.Errorf("Unexpected id %q", id)
	}
	if GenerateID("Image Converter") != id {
		t.Error("GenerateID should be deterministic")
	}
}

func TestScan(t *testing.T) {
	sc, store, dir := newScanner(t)

	writeScript(t, dir, "qrcode", `
description: Make QR codes
category: Tools
parameters:
  - name: text
    type: string
    required: true
  - name: size
    type: number
    default: 10
dependencies: [qrcode]
`)
	writeScript(t, dir, "bare", "")
	if err := os.MkdirAll(filepath.Join(dir, "no-entry"), 0755); err != nil {
		t.Fatal(err)
	}
	writeScript(t, dir, "broken", "parameters: [oops")

	scripts, err := sc.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(scripts) != 2 {
		t.Fatalf("Expected 2 scripts, got %d: %+v", len(scripts), scripts)
	}

	byName := map[string]Script{}
	for _, s := range scripts {
		byName[s.Name] = s
	}
	qr := byName["qrcode"]
	if qr.Category != "Tools" || len(qr.Parameters) != 2 || qr.Description != "Make QR codes" {
		t.Errorf("Unexpected qrcode script %+v", qr)
	}
	bare := byName["bare"]
	if bare.Category != prefs.Uncategorized || bare.Description != defaultDescription {
		t.Errorf("Unexpected defaults %+v", bare)
	}

	if id, ok := store.IDMapping("qrcode"); !ok || id != qr.ID {
		t.Errorf("Scan should record the id mapping, got %q %v", id, ok)
	}
}

func TestScan_UsesMappingAndOverrides(t *testing.T) {
	sc, store, dir := newScanner(t)
	writeScript(t, dir, "renamed", "category: Net\nparameters:\n  - name: host\n    type: string\n")

	store.RecordIDMapping("renamed", "original_id")
	if _, err := store.AssignScriptToCategory("original_id", "Media", nil); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveParameterDefault("original_id", "host", "example.org"); err != nil {
		t.Fatal(err)
	}

	scripts, err := sc.Scan()
	if err != nil {
		t.Fatal(err)
	}
	if len(scripts) != 1 {
		t.Fatalf("Expected 1 script, got %d", len(scripts))
	}
	s := scripts[0]
	if s.ID != "original_id" || s.Category != "Media" {
		t.Errorf("Unexpected script %+v", s)
	}
	if s.Parameters[0].Default != "example.org" {
		t.Errorf("Expected saved default, got %v", s.Parameters[0].Default)
	}
}

func TestCategoriesAndSearch(t *testing.T) {
	scripts := []Script{
		{ID: "1", Name: "Video Downloader", Description: "grab videos", Category: "Media"},
		{ID: "2", Name: "Web Analyzer", Description: "inspect pages", Category: "Net"},
		{ID: "3", Name: "Notes", Description: "", Category: ""},
	}

	if got := Categories(scripts); !slices.Equal(got, []string{"Media", "Net", prefs.Uncategorized}) {
		t.Errorf("Unexpected categories %v", got)
	}

	if got := Search(scripts, "NET"); len(got) != 1 || got[0].ID != "2" {
		t.Errorf("Search by category failed: %+v", got)
	}
	if got := Search(scripts, "video"); len(got) != 1 || got[0].ID != "1" {
		t.Errorf("Search by name failed: %+v", got)
	}
	if got := Search(scripts, "zzz"); len(got) != 0 {
		t.Errorf("Expected no results, got %+v", got)
	}
}

func TestSortByOrder(t *testing.T) {
	scripts := []Script{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	got := IDs(SortByOrder(scripts, []string{"c", "a"}))
	if !slices.Equal(got, []string{"c", "a", "b"}) {
		t.Errorf("Expected [c a b], got %v", got)
	}
}

func TestWatcher_DebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan struct{}, 10)

	w := NewWatcher(dir, 50*time.Millisecond, func() { changed <- struct{}{} })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	writeScript(t, dir, "new_tool", "")

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("Expected a change notification")
	}
}

func TestIgnored(t *testing.T) {
	for _, name := range []string{".git", "main.py~", "x.swp", "__pycache__", "mod.pyc"} {
		if !ignored(name) {
			t.Errorf("%q should be ignored", name)
		}
	}
	if ignored("main.py") {
		t.Error("main.py should not be ignored")
	}
}

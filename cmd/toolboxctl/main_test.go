package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCtl(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCategoryAddMoveShow(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	for _, name := range []string{"Net", "Media"} {
		if _, err := runCtl(t, configPath, "category", "add", name); err != nil {
			t.Fatalf("category add %s failed: %v", name, err)
		}
	}
	if _, err := runCtl(t, configPath, "category", "add", "Net"); err == nil {
		t.Error("Expected duplicate category to fail")
	}

	if _, err := runCtl(t, configPath, "order", "move", "categories", "Media", "--before", "Net"); err != nil {
		t.Fatalf("order move failed: %v", err)
	}

	out, err := runCtl(t, configPath, "order", "show", "categories")
	if err != nil {
		t.Fatalf("order show failed: %v", err)
	}
	if want := "all\nMedia\nNet\n"; out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}

	if _, err := runCtl(t, configPath, "category", "rm", "Media"); err != nil {
		t.Fatalf("category rm failed: %v", err)
	}
	out, _ = runCtl(t, configPath, "order", "show", "categories")
	if want := "all\nNet\n"; out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	out, err := runCtl(t, configPath, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, configPath) {
		t.Errorf("Expected the written path in %q", out)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), filepath.Join(dir, "scripts")) {
		t.Errorf("Expected the resolved scripts dir, got %q", data)
	}

	if _, err := runCtl(t, configPath, "config", "init"); err == nil {
		t.Error("Expected an existing config to be kept")
	}
	if _, err := runCtl(t, configPath, "config", "init", "--force"); err != nil {
		t.Errorf("config init --force failed: %v", err)
	}
}

func TestScriptsList(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	folder := filepath.Join(dir, "scripts", "hello")
	if err := os.MkdirAll(folder, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(folder, "main.py"), []byte("print('hello')\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCtl(t, configPath, "scripts", "list")
	if err != nil {
		t.Fatalf("scripts list failed: %v", err)
	}
	if !strings.Contains(out, "hello") || !strings.Contains(out, "Uncategorized") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestOrderShow_UnknownKind(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := runCtl(t, configPath, "order", "show", "widgets"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestOrderReset(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if _, err := runCtl(t, configPath, "category", "add", "Net"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCtl(t, configPath, "order", "reset"); err != nil {
		t.Fatalf("order reset failed: %v", err)
	}
	out, _ := runCtl(t, configPath, "order", "show", "categories")
	if out != "all\n" {
		t.Errorf("Expected only the pinned category, got %q", out)
	}
}

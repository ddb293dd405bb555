package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan_ReadsScriptsSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{
		"name": "web",
		"scripts": {"test": "vitest", "build": "vite build", "dev": "vite"}
	}`)

	p, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if p.Name != filepath.Base(dir) {
		t.Errorf("Name = %q, want %q", p.Name, filepath.Base(dir))
	}

	var names []string
	for _, c := range p.Commands {
		if c.Kind != KindScript {
			t.Errorf("command %q has kind %d, want script", c.Name, c.Kind)
		}
		names = append(names, c.Name)
	}
	want := []string{"build", "dev", "test"}
	if len(names) != len(want) {
		t.Fatalf("script names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("script names = %v, want %v", names, want)
		}
	}
}

func TestScan_NoManifestIsValid(t *testing.T) {
	p, err := Scan(t.TempDir())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(p.Commands) != 0 {
		t.Errorf("commands = %v, want none", p.Commands)
	}
	if p.Manager != NPM {
		t.Errorf("manager = %q, want npm default", p.Manager)
	}
}

func TestScan_MissingDirFails(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("Scan succeeded for a missing directory")
	}
}

func TestScan_MalformedManifestFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"scripts": [`)
	if _, err := Scan(dir); err == nil {
		t.Fatal("Scan succeeded for a malformed package.json")
	}
}

func TestDetectManager_ByLockfile(t *testing.T) {
	cases := []struct {
		lockfile string
		want     PackageManager
	}{
		{"pnpm-lock.yaml", PNPM},
		{"yarn.lock", Yarn},
		{"package-lock.json", NPM},
	}
	for _, tc := range cases {
		dir := t.TempDir()
		writeFile(t, dir, tc.lockfile, "")
		if got := detectManager(dir); got != tc.want {
			t.Errorf("detectManager with %s = %q, want %q", tc.lockfile, got, tc.want)
		}
	}
}

func TestDevCommand(t *testing.T) {
	p := &Project{Commands: []Command{
		{Kind: KindScript, Name: "build"},
		{Kind: KindScript, Name: "dev"},
	}}
	c, ok := p.DevCommand()
	if !ok || c.Name != "dev" {
		t.Errorf("DevCommand = (%+v, %v), want the dev script", c, ok)
	}

	p = &Project{}
	if _, ok := p.DevCommand(); ok {
		t.Error("DevCommand found something in an empty project")
	}
}

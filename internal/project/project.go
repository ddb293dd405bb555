// Package project models the directories the panel manages: where
// they live, which package manager they use, and the commands that can
// be launched inside them.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/devdeck/devdeck/internal/platform"
)

// PackageManager identifies the JS package manager a project uses.
type PackageManager string

const (
	NPM  PackageManager = "npm"
	PNPM PackageManager = "pnpm"
	Yarn PackageManager = "yarn"
)

// CommandKind distinguishes package.json scripts from raw command
// lines the user typed in.
type CommandKind uint8

const (
	// KindScript is a named package.json script, launched through the
	// project's package manager.
	KindScript CommandKind = iota
	// KindRaw is a literal shell command line.
	KindRaw
)

// Command is one launchable entry in a project's command list.
type Command struct {
	Kind CommandKind
	// Name is the script name for KindScript, a display label for
	// KindRaw.
	Name string
	// Raw holds the literal command line for KindRaw.
	Raw string
}

// Project is one managed directory.
type Project struct {
	Name     string
	Dir      string
	Manager  PackageManager
	Commands []Command
}

// Scan builds a Project from dir. A package.json contributes its
// scripts sorted by name; the lockfile picks the package manager; a
// directory without a manifest is still a valid project with no
// script commands.
func Scan(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve project dir: %w", err)
	}
	if info, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("stat project dir: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	p := &Project{
		Name:    filepath.Base(abs),
		Dir:     abs,
		Manager: detectManager(abs),
	}

	scripts, err := readScripts(filepath.Join(abs, "package.json"))
	if err != nil {
		return nil, err
	}
	for _, name := range scripts {
		p.Commands = append(p.Commands, Command{Kind: KindScript, Name: name})
	}
	return p, nil
}

// AddRawCommand appends a literal command line to the project's list.
func (p *Project) AddRawCommand(label, commandLine string) {
	p.Commands = append(p.Commands, Command{Kind: KindRaw, Name: label, Raw: commandLine})
}

// FullCommand resolves a command entry to the shell line that runs it.
func (p *Project) FullCommand(c Command) string {
	if c.Kind == KindRaw {
		return c.Raw
	}
	return platform.PackageManagerCommand(string(p.Manager)) + " run " + c.Name
}

// DevCommand returns the conventional dev-server entry if the project
// has one.
func (p *Project) DevCommand() (Command, bool) {
	for _, c := range p.Commands {
		if c.Kind == KindScript && c.Name == "dev" {
			return c, true
		}
	}
	return Command{}, false
}

// detectManager picks the package manager by lockfile, npm when none
// or several match.
func detectManager(dir string) PackageManager {
	if fileExists(filepath.Join(dir, "pnpm-lock.yaml")) {
		return PNPM
	}
	if fileExists(filepath.Join(dir, "yarn.lock")) {
		return Yarn
	}
	return NPM
}

// readScripts returns the script names from a package.json, sorted.
// A missing manifest is not an error.
func readScripts(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var manifest struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	names := make([]string, 0, len(manifest.Scripts))
	for name := range manifest.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

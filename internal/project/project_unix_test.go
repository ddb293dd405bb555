//go:build !windows

package project

import "testing"

func TestFullCommand(t *testing.T) {
	p := &Project{Name: "web", Manager: PNPM}
	p.Commands = append(p.Commands, Command{Kind: KindScript, Name: "dev"})
	p.AddRawCommand("lint", "eslint .")

	if got := p.FullCommand(p.Commands[0]); got != "pnpm run dev" {
		t.Errorf("script FullCommand = %q, want pnpm run dev", got)
	}
	if got := p.FullCommand(p.Commands[1]); got != "eslint ." {
		t.Errorf("raw FullCommand = %q, want the literal line", got)
	}
}

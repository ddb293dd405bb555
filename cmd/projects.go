package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devdeck/devdeck/internal/project"
)

var projectsCmd = &cobra.Command{
	Use:   "projects [dir...]",
	Short: "Scan project directories and list their commands",
	RunE:  runProjects,
}

var projectsJSONFlag bool

func init() {
	projectsCmd.Flags().BoolVar(&projectsJSONFlag, "json", false, "Output as JSON")
}

func runProjects(cmd *cobra.Command, args []string) error {
	dirs := args
	if len(dirs) == 0 {
		dirs = []string{"."}
	}

	var projects []*project.Project
	for _, dir := range dirs {
		p, err := project.Scan(dir)
		if err != nil {
			return err
		}
		projects = append(projects, p)
	}

	if projectsJSONFlag {
		data, err := json.MarshalIndent(projects, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, p := range projects {
		fmt.Printf("%s\t%s\t%s\n", p.Name, p.Manager, p.Dir)
		for _, c := range p.Commands {
			fmt.Printf("  %s\t%s\n", c.Name, p.FullCommand(c))
		}
	}
	return nil
}

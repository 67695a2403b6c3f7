package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codemap-dev/codemap/internal/fileutil"
)

func RunList(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(cmd)
	if err != nil {
		return err
	}
	path, err := snapshotPath(cmd, root)
	if err != nil {
		return err
	}
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	includeHidden, err := cmd.Flags().GetBool("all")
	if err != nil {
		return fmt.Errorf("failed to read --all flag: %w", err)
	}

	session, project, err := openSession(root, path)
	if err != nil {
		return err
	}

	if asJSON {
		return fileutil.PrintJSON(os.Stdout, map[string]any{
			"project_root": project,
			"map":          session.Map(project),
			"position":     session.Position(project),
		})
	}

	files := session.FileList(project)
	if len(files) == 0 {
		fmt.Println("map is empty; run codemap see <symbol> to start one")
		return nil
	}

	for _, file := range files {
		symbols, err := session.SymbolList(project, file)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", file)
		for _, symbol := range symbols {
			list, err := session.Definitions(project, file, symbol)
			if err != nil {
				return err
			}
			entries := list.Visible()
			if includeHidden {
				entries = list
			}
			fmt.Printf("  %s\n", symbol)
			for _, entry := range entries {
				fmt.Printf("    %s\n", describeEntry(entry))
			}
		}
	}
	return nil
}

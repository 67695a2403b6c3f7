package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codemap-dev/codemap/internal/state"
)

func RunSee(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(cmd)
	if err != nil {
		return err
	}
	path, err := snapshotPath(cmd, root)
	if err != nil {
		return err
	}
	fileKey, err := cmd.Flags().GetString("in")
	if err != nil {
		return fmt.Errorf("failed to read --in flag: %w", err)
	}

	session, project, err := openSession(root, path)
	if err != nil {
		return err
	}
	machine, err := newMachine(session, root)
	if err != nil {
		return err
	}

	name := args[0]
	if fileKey == "" {
		// Without an explicit file key the symbol lives under the file of
		// its first definition.
		records, err := machine.Query.Definitions(name)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no definition found for %q", name)
		}
		fileKey = records[0].Path
	} else {
		fileKey = relKey(root, fileKey)
	}

	if err := machine.SeeSymbol(project, fileKey, name); err != nil {
		return err
	}

	list, err := session.Definitions(project, fileKey, name)
	if err != nil {
		return err
	}
	fmt.Printf("%s in %s (%d definitions)\n", name, fileKey, len(list))
	for i, entry := range list.Visible() {
		fmt.Printf("%3d: %s\n", i+1, describeEntry(entry))
	}

	return state.Save(session, project, path)
}

func RunFile(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(cmd)
	if err != nil {
		return err
	}
	path, err := snapshotPath(cmd, root)
	if err != nil {
		return err
	}

	session, project, err := openSession(root, path)
	if err != nil {
		return err
	}
	machine, err := newMachine(session, root)
	if err != nil {
		return err
	}

	fileKey := relKey(root, args[0])
	if err := machine.SeeFile(project, fileKey); err != nil {
		return err
	}

	symbols, err := session.SymbolList(project, fileKey)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d symbols)\n", fileKey, len(symbols))
	for _, symbol := range symbols {
		list, err := session.Definitions(project, fileKey, symbol)
		if err != nil {
			return err
		}
		fmt.Printf("- %s (%d visible)\n", symbol, len(list.Visible()))
	}

	// Browsing moved the cursor; persist it so browse resumes there.
	return state.Save(session, project, path)
}

func RunRename(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(cmd)
	if err != nil {
		return err
	}
	path, err := snapshotPath(cmd, root)
	if err != nil {
		return err
	}

	session, project, err := openSession(root, path)
	if err != nil {
		return err
	}

	oldKey := relKey(root, args[0])
	newKey := relKey(root, args[1])
	if err := session.RenameFile(project, oldKey, newKey); err != nil {
		return err
	}

	fmt.Printf("renamed %s -> %s\n", oldKey, newKey)
	return state.Save(session, project, path)
}

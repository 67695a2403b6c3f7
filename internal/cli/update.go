package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codemap-dev/codemap/internal/fileutil"
	"github.com/codemap-dev/codemap/internal/state"
)

func RunUpdate(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(cmd)
	if err != nil {
		return err
	}
	path, err := snapshotPath(cmd, root)
	if err != nil {
		return err
	}
	skipPrompt, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to read --yes flag: %w", err)
	}

	session, project, err := openSession(root, path)
	if err != nil {
		return err
	}
	if session.Map(project).Len() == 0 {
		fmt.Println("map is empty; nothing to update")
		return nil
	}

	if !skipPrompt {
		prompt := "update replaces every definition list and resets hidden flags; continue?"
		if !confirm(bufio.NewReader(os.Stdin), os.Stdout, prompt) {
			fmt.Println("aborted")
			return nil
		}
	}

	machine, err := newMachine(session, root)
	if err != nil {
		return err
	}
	if err := machine.Update(project); err != nil {
		return err
	}

	symbols := 0
	for _, file := range session.FileList(project) {
		names, err := session.SymbolList(project, file)
		if err != nil {
			return err
		}
		symbols += len(names)
	}
	fmt.Printf("updated %d symbols across %d files\n", symbols, session.Map(project).Len())
	return state.Save(session, project, path)
}

func RunMissing(cmd *cobra.Command, args []string) error {
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
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}

	session, project, err := openSession(root, path)
	if err != nil {
		return err
	}
	machine, err := newMachine(session, root)
	if err != nil {
		return err
	}

	level := "files"
	position := session.Position(project)
	if fileKey != "" {
		if err := machine.SeeFile(project, relKey(root, fileKey)); err != nil {
			return err
		}
		level = "symbols"
	} else {
		position.Reset()
	}

	missing, err := machine.MarkMissing(project)
	if err != nil {
		return err
	}

	if asJSON {
		return fileutil.PrintJSON(os.Stdout, map[string]any{
			"level":   level,
			"missing": missing,
		})
	}
	if len(missing) == 0 {
		fmt.Printf("no missing %s\n", level)
		return nil
	}
	for _, key := range missing {
		fmt.Printf("missing: %s\n", key)
	}
	return nil
}

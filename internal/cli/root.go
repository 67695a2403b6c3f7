package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codemap-dev/codemap/internal/query"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "codemap",
		Short: "Build and navigate a persistent map of your codebase",
		Long: `Codemap maintains a user-curated map of a codebase: the files you care
about, the symbols you looked up in them, and where each symbol is defined.
Maps are built incrementally while exploring, annotated (definitions can be
hidden, stale entries marked), and saved to a snapshot file for later
sessions.`,
	}

	rootCmd.PersistentFlags().String("root", "", "Project root (default: nearest .git/go.mod above cwd)")
	rootCmd.PersistentFlags().String("map", "", "Snapshot file (default: $CODEMAP_FILE or <root>/.codemap.json)")

	browseCmd := &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive map browser",
		Args:  cobra.NoArgs,
		RunE:  RunBrowse,
	}

	seeCmd := &cobra.Command{
		Use:   "see <symbol>",
		Short: "Look up a symbol's definitions and add it to the map",
		Args:  cobra.ExactArgs(1),
		RunE:  RunSee,
	}
	seeCmd.Flags().String("in", "", "File key to add the symbol under (default: file of first definition)")

	fileCmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Show the mapped symbols of a file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunFile,
	}

	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "Print the whole map",
		Args:  cobra.NoArgs,
		RunE:  RunList,
	}
	lsCmd.Flags().Bool("json", false, "Print machine-readable map contents")
	lsCmd.Flags().Bool("all", false, "Include hidden definitions")

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Re-query every symbol in the map",
		Long: `Update re-runs the definition query for every symbol in the map and
replaces each definition list with fresh results. Hidden flags are reset:
records carry no stable identity across a re-query.`,
		Args: cobra.NoArgs,
		RunE: RunUpdate,
	}
	updateCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	missingCmd := &cobra.Command{
		Use:   "missing",
		Short: "List map entries that no longer resolve",
		Args:  cobra.NoArgs,
		RunE:  RunMissing,
	}
	missingCmd.Flags().String("in", "", "Check a file's symbols instead of the file list")
	missingCmd.Flags().Bool("json", false, "Print machine-readable results")

	renameCmd := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a file key in the map",
		Args:  cobra.ExactArgs(2),
		RunE:  RunRename,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and supported source types",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("codemap %s\n", version)
			exts := query.NewDefaultRegistry().SupportedExtensions()
			fmt.Printf("source extensions: %s\n", strings.Join(exts, " "))
		},
	}

	rootCmd.AddCommand(
		browseCmd,
		seeCmd,
		fileCmd,
		lsCmd,
		updateCmd,
		missingCmd,
		renameCmd,
		versionCmd,
	)

	return rootCmd
}

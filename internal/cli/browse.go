package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codemap-dev/codemap/internal/codemap"
	"github.com/codemap-dev/codemap/internal/nav"
	"github.com/codemap-dev/codemap/internal/query"
	"github.com/codemap-dev/codemap/internal/state"
)

func RunBrowse(cmd *cobra.Command, args []string) error {
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

	browser := &browser{
		session: session,
		machine: machine,
		project: project,
		root:    root,
		path:    path,
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	return browser.run()
}

// browser is the interactive shell over one project's map. It owns the
// transient UI state the core does not: marked items and the active region.
type browser struct {
	session *codemap.Session
	machine *nav.Machine
	project string
	root    string
	path    string
	in      *bufio.Reader
	out     io.Writer

	marked nav.Selection
	region nav.Selection
}

func (b *browser) run() error {
	fmt.Fprintf(b.out, "codemap browse: %s (map %s)\n", b.project, b.path)
	fmt.Fprintln(b.out, `type "help" for commands`)
	b.list()

	for {
		fmt.Fprintf(b.out, "%s> ", b.promptLabel())
		line, err := b.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(b.out)
				return b.exit()
			}
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		command, rest := fields[0], fields[1:]

		if command == "quit" || command == "q" || command == "exit" {
			return b.exit()
		}
		if err := b.dispatch(command, rest); err != nil {
			fmt.Fprintf(b.out, "error: %v\n", err)
		}
	}
}

func (b *browser) dispatch(command string, args []string) error {
	switch command {
	case "help":
		b.help()
		return nil
	case "ls":
		b.list()
		return nil
	case "pos":
		b.printPosition()
		return nil
	case "fwd", "f":
		return b.forward(args)
	case "back", "b":
		b.machine.Backward(b.project)
		b.clearSelection()
		b.list()
		return nil
	case "see":
		return b.see(args)
	case "file":
		return b.seeFile(args)
	case "hide":
		return b.bulk(b.machine.Hide)
	case "delete", "del":
		return b.deleteItems()
	case "keep":
		return b.keep()
	case "show-all":
		return b.showAll()
	case "mark":
		return b.mark(args)
	case "range":
		return b.markRange(args)
	case "missing":
		return b.missing()
	case "update":
		return b.update()
	case "rename":
		return b.rename(args)
	case "save":
		return b.save(args)
	case "load":
		return b.load(args)
	default:
		return fmt.Errorf("unknown command %q; type \"help\"", command)
	}
}

func (b *browser) help() {
	fmt.Fprint(b.out, `navigation
  ls                 list items at the current level
  fwd <item>         descend into a file/symbol, or jump to definition <n>
  back               ascend one level
  see <symbol> [file]  query a symbol and add it to the map
  file <path>        enter a mapped file
  pos                print the cursor position

selection (region > marks > cursor)
  mark <item>        toggle a mark; "mark none" clears marks
  range <a> <b>      select a contiguous region of listed items

operations
  hide               hide selected definitions
  show-all           unhide every definition of the current symbol
  keep               hide/delete everything except the selection
  delete             delete selected files or symbols (asks first)
  missing            mark entries that no longer resolve
  update             re-query every symbol in the map (asks first)
  rename <old> <new> rename a file key

snapshots
  save [path]        write the map to disk
  load <path>        replace the map from a snapshot (asks if unsaved)
  quit               exit; offers to save unsaved changes
`)
}

func (b *browser) promptLabel() string {
	p := b.session.Position(b.project)
	switch p.Depth {
	case codemap.DepthFiles:
		return "files"
	case codemap.DepthSymbols:
		return p.File
	default:
		return p.File + "/" + p.Symbol
	}
}

// list prints the items at the cursor's level, numbering them so fwd, mark
// and range can address them by index.
func (b *browser) list() {
	p := b.session.Position(b.project)
	switch p.Depth {
	case codemap.DepthFiles:
		files := b.session.FileList(b.project)
		if len(files) == 0 {
			fmt.Fprintln(b.out, "map is empty; see <symbol> to start")
			return
		}
		for i, file := range files {
			fmt.Fprintf(b.out, "%3d%s %s\n", i+1, b.markerFor(file), file)
		}

	case codemap.DepthSymbols:
		symbols, err := b.session.SymbolList(b.project, p.File)
		if err != nil {
			fmt.Fprintf(b.out, "error: %v\n", err)
			return
		}
		for i, symbol := range symbols {
			fmt.Fprintf(b.out, "%3d%s %s\n", i+1, b.markerFor(symbol), symbol)
		}

	default:
		list, err := b.session.Definitions(b.project, p.File, p.Symbol)
		if err != nil {
			fmt.Fprintf(b.out, "error: %v\n", err)
			return
		}
		for i, entry := range list.Visible() {
			marker := " "
			if containsRecord(b.marked.Records, entry.Record) {
				marker = "*"
			}
			fmt.Fprintf(b.out, "%3d%s %s\n", i+1, marker, describeEntry(entry))
		}
	}
}

func (b *browser) markerFor(key string) string {
	for _, marked := range b.marked.Keys {
		if marked == key {
			return "*"
		}
	}
	return " "
}

func (b *browser) printPosition() {
	p := b.session.Position(b.project)
	fmt.Fprintf(b.out, "depth=%d file=%q symbol=%q", p.Depth, p.File, p.Symbol)
	if p.Def != nil {
		fmt.Fprintf(b.out, " definition=%s:%d", p.Def.Path, p.Def.Line)
	}
	fmt.Fprintln(b.out)
}

func (b *browser) forward(args []string) error {
	if len(args) == 0 {
		// Nothing under the cursor: silently ignored.
		return nil
	}
	selected, err := b.resolveKey(args[0])
	if err != nil {
		return err
	}
	wasDefinitions := b.session.Position(b.project).Depth == codemap.DepthDefinitions
	if err := b.machine.Forward(b.project, selected); err != nil {
		return err
	}
	b.clearSelection()
	if !wasDefinitions {
		b.list()
	}
	return nil
}

// resolveKey turns a numeric argument into the listed item it refers to.
// At the definition list indexes pass through; the machine resolves them.
func (b *browser) resolveKey(arg string) (string, error) {
	p := b.session.Position(b.project)
	if p.Depth == codemap.DepthDefinitions {
		return arg, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	items, err := b.currentKeys()
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(items) {
		return "", fmt.Errorf("no item %d", n)
	}
	return items[n-1], nil
}

func (b *browser) currentKeys() ([]string, error) {
	p := b.session.Position(b.project)
	if p.Depth == codemap.DepthFiles {
		return b.session.FileList(b.project), nil
	}
	return b.session.SymbolList(b.project, p.File)
}

func (b *browser) see(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: see <symbol> [file]")
	}
	name := args[0]

	fileKey := ""
	if len(args) > 1 {
		fileKey = relKey(b.root, args[1])
	} else {
		records, err := b.machine.Query.Definitions(name)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return fmt.Errorf("no definition found for %q", name)
		}
		fileKey = records[0].Path
	}

	if err := b.machine.SeeSymbol(b.project, fileKey, name); err != nil {
		return err
	}
	b.clearSelection()
	b.list()
	return nil
}

func (b *browser) seeFile(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: file <path>")
	}
	if err := b.machine.SeeFile(b.project, relKey(b.root, args[0])); err != nil {
		return err
	}
	b.clearSelection()
	b.list()
	return nil
}

// selection resolves the operation targets: region first, then marks, then
// the single item under the cursor.
func (b *browser) selection() nav.Selection {
	cursor := nav.Selection{}
	p := b.session.Position(b.project)
	switch p.Depth {
	case codemap.DepthFiles:
		if p.File != "" {
			cursor.Keys = []string{p.File}
		}
	case codemap.DepthSymbols:
		if p.Symbol != "" {
			cursor.Keys = []string{p.Symbol}
		}
	default:
		if p.Def != nil {
			cursor.Records = []query.Record{*p.Def}
		}
	}
	return nav.Pick(b.region, b.marked, cursor)
}

func (b *browser) clearSelection() {
	b.marked = nav.Selection{}
	b.region = nav.Selection{}
}

func (b *browser) bulk(op func(string, nav.Selection) error) error {
	sel := b.selection()
	if sel.Empty() {
		return fmt.Errorf("nothing selected")
	}
	if err := op(b.project, sel); err != nil {
		return err
	}
	b.clearSelection()
	b.list()
	return nil
}

func (b *browser) deleteItems() error {
	sel := b.selection()
	if sel.Empty() {
		return fmt.Errorf("nothing selected")
	}
	count := len(sel.Keys)
	if !confirm(b.in, b.out, fmt.Sprintf("delete %d item(s) and their subtrees? this cannot be undone", count)) {
		fmt.Fprintln(b.out, "aborted")
		return nil
	}
	if err := b.machine.Delete(b.project, sel); err != nil {
		return err
	}
	b.clearSelection()
	b.list()
	return nil
}

func (b *browser) keep() error {
	sel := b.selection()
	if sel.Empty() {
		return fmt.Errorf("nothing selected")
	}
	p := b.session.Position(b.project)
	if p.Depth != codemap.DepthDefinitions {
		if !confirm(b.in, b.out, "keep deletes everything not selected; continue?") {
			fmt.Fprintln(b.out, "aborted")
			return nil
		}
	}
	if err := b.machine.Keep(b.project, sel); err != nil {
		return err
	}
	b.clearSelection()
	b.list()
	return nil
}

func (b *browser) showAll() error {
	p := b.session.Position(b.project)
	if p.Depth != codemap.DepthDefinitions {
		return fmt.Errorf("show-all applies to definitions only")
	}
	shown, err := b.machine.ShowAll(b.project, p.File, p.Symbol)
	if err != nil {
		return err
	}
	// Re-shown definitions come back marked so a follow-up hide can target
	// exactly what was just revealed.
	b.marked.Records = append(b.marked.Records, shown...)
	fmt.Fprintf(b.out, "unhid %d definition(s)\n", len(shown))
	b.list()
	return nil
}

func (b *browser) mark(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: mark <item> | mark none")
	}
	if args[0] == "none" {
		b.clearSelection()
		b.list()
		return nil
	}

	p := b.session.Position(b.project)
	if p.Depth == codemap.DepthDefinitions {
		record, err := b.visibleRecordAt(args[0])
		if err != nil {
			return err
		}
		if i := indexOfRecord(b.marked.Records, record); i >= 0 {
			b.marked.Records = append(b.marked.Records[:i], b.marked.Records[i+1:]...)
		} else {
			b.marked.Records = append(b.marked.Records, record)
		}
	} else {
		key, err := b.resolveKey(args[0])
		if err != nil {
			return err
		}
		if i := indexOfString(b.marked.Keys, key); i >= 0 {
			b.marked.Keys = append(b.marked.Keys[:i], b.marked.Keys[i+1:]...)
		} else {
			b.marked.Keys = append(b.marked.Keys, key)
		}
	}
	b.region = nav.Selection{}
	b.list()
	return nil
}

func (b *browser) markRange(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: range <first> <last>")
	}
	first, err1 := strconv.Atoi(args[0])
	last, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil || first < 1 || last < first {
		return fmt.Errorf("usage: range <first> <last>")
	}

	p := b.session.Position(b.project)
	region := nav.Selection{}
	if p.Depth == codemap.DepthDefinitions {
		list, err := b.session.Definitions(b.project, p.File, p.Symbol)
		if err != nil {
			return err
		}
		visible := list.Visible()
		if last > len(visible) {
			return fmt.Errorf("no item %d", last)
		}
		for i := first - 1; i < last; i++ {
			region.Records = append(region.Records, visible[i].Record)
		}
	} else {
		items, err := b.currentKeys()
		if err != nil {
			return err
		}
		if last > len(items) {
			return fmt.Errorf("no item %d", last)
		}
		region.Keys = items[first-1 : last]
	}

	b.region = region
	fmt.Fprintf(b.out, "selected items %d-%d\n", first, last)
	return nil
}

func (b *browser) missing() error {
	missing, err := b.machine.MarkMissing(b.project)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		fmt.Fprintln(b.out, "nothing missing")
		return nil
	}
	// Missing keys become the marked set, ready for delete or keep.
	b.marked = nav.Selection{Keys: missing}
	b.region = nav.Selection{}
	for _, key := range missing {
		fmt.Fprintf(b.out, "missing: %s\n", key)
	}
	b.list()
	return nil
}

func (b *browser) update() error {
	if !confirm(b.in, b.out, "update replaces every definition list and resets hidden flags; continue?") {
		fmt.Fprintln(b.out, "aborted")
		return nil
	}

	// Rescan so the refresh sees the code as it is now, not as it was when
	// the shell started.
	fresh, err := newMachine(b.session, b.root)
	if err != nil {
		return err
	}
	b.machine.Query = fresh.Query

	if err := b.machine.Update(b.project); err != nil {
		return err
	}
	b.clearSelection()
	fmt.Fprintln(b.out, "map updated")
	b.list()
	return nil
}

func (b *browser) rename(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: rename <old> <new>")
	}
	if err := b.session.RenameFile(b.project, relKey(b.root, args[0]), relKey(b.root, args[1])); err != nil {
		return err
	}
	b.list()
	return nil
}

func (b *browser) save(args []string) error {
	path := b.path
	if len(args) > 0 {
		path = args[0]
	}
	if err := state.Save(b.session, b.project, path); err != nil {
		return err
	}
	b.path = path
	fmt.Fprintf(b.out, "saved %s\n", path)
	return nil
}

func (b *browser) load(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: load <path>")
	}
	if b.session.Disk(b.project).Dirty {
		if !confirm(b.in, b.out, "unsaved changes will be lost; load anyway?") {
			fmt.Fprintln(b.out, "aborted")
			return nil
		}
	}

	project, err := state.Load(b.session, args[0])
	if err != nil {
		return err
	}
	b.project = project
	b.path = args[0]
	b.clearSelection()
	fmt.Fprintf(b.out, "loaded %s (project %s)\n", args[0], project)
	b.list()
	return nil
}

// exit implements the ask-to-save hook: only projects that are dirty and
// already have a backing file are offered. Maps that never touched disk are
// not nagged about; they are written only by an explicit save.
func (b *browser) exit() error {
	for _, project := range state.UnsavedProjects(b.session) {
		backing := b.session.Disk(project).BackingPath
		if !confirm(b.in, b.out, fmt.Sprintf("save unsaved map for %s to %s?", project, backing)) {
			continue
		}
		if err := state.Save(b.session, project, backing); err != nil {
			return err
		}
		fmt.Fprintf(b.out, "saved %s\n", backing)
	}
	return nil
}

func (b *browser) visibleRecordAt(arg string) (query.Record, error) {
	p := b.session.Position(b.project)
	list, err := b.session.Definitions(b.project, p.File, p.Symbol)
	if err != nil {
		return query.Record{}, err
	}
	visible := list.Visible()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(visible) {
		return query.Record{}, fmt.Errorf("no item %q", arg)
	}
	return visible[n-1].Record, nil
}

func containsRecord(records []query.Record, want query.Record) bool {
	return indexOfRecord(records, want) >= 0
}

func indexOfRecord(records []query.Record, want query.Record) int {
	for i, record := range records {
		if record == want {
			return i
		}
	}
	return -1
}

func indexOfString(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return -1
}

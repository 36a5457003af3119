// Package cli implements the equipinv command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/vbonduro/equipinv/internal/domain"
	"github.com/vbonduro/equipinv/internal/report"
	"github.com/vbonduro/equipinv/internal/store"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Inventory is the set of service operations the command line drives.
type Inventory interface {
	Register(ctx context.Context, f domain.Fields) (*domain.Equipment, error)
	Get(ctx context.Context, id int64) (*domain.Equipment, error)
	Relocate(ctx context.Context, id int64, loc domain.Location) (bool, error)
	Remove(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f store.Filter, sortKey domain.SortKey) ([]*domain.Equipment, error)
	Export(ctx context.Context, w io.Writer) (int, error)
	Import(ctx context.Context, r io.Reader, policy store.IDPolicy) (int, error)
	Report(ctx context.Context, w io.Writer, format report.Format, f store.Filter) (int, error)
	Stats(ctx context.Context) ([]store.Summary, error)
}

var (
	errUsage    = errors.New("usage")
	errNotFound = errors.New("not found")
)

const usageText = `usage: equipinv <command> [flags]

commands:
  add -kind table|chair|projector -value N -location H-202 [-seats N | -chair-kind K | -lumens N]
  get <id>
  move <id> <location>
  delete <id>
  list [-building B] [-kind K] [-room LOC] [-floor N] [-sort id|kind|location|value]
  export [-o file]
  import [-ids preserve|reassign] <file>
  report [-format xlsx|text] [-o file]
  stats
`

type App struct {
	inv           Inventory
	logger        *slog.Logger
	stdout        io.Writer
	stderr        io.Writer
	defaultPolicy store.IDPolicy
}

// New returns an App. defaultPolicy applies to imports run without -ids.
func New(inv Inventory, logger *slog.Logger, stdout, stderr io.Writer, defaultPolicy store.IDPolicy) *App {
	return &App{
		inv:           inv,
		logger:        logger,
		stdout:        stdout,
		stderr:        stderr,
		defaultPolicy: defaultPolicy,
	}
}

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.stderr, usageText)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "add":
		err = a.add(ctx, rest)
	case "get":
		err = a.get(ctx, rest)
	case "move":
		err = a.move(ctx, rest)
	case "delete":
		err = a.remove(ctx, rest)
	case "list":
		err = a.list(ctx, rest)
	case "export":
		err = a.export(ctx, rest)
	case "import":
		err = a.importDump(ctx, rest)
	case "report":
		err = a.report(ctx, rest)
	case "stats":
		err = a.stats(ctx, rest)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(a.stdout, usageText)
		return ExitOK
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return a.exitCode(cmd, err)
}

func (a *App) exitCode(cmd string, err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, flag.ErrHelp):
		return ExitOK
	case errors.Is(err, errUsage):
		fmt.Fprintf(a.stderr, "equipinv: %v\n\n%s", err, usageText)
		return ExitUsage
	case errors.Is(err, domain.ErrValidation):
		fmt.Fprintf(a.stderr, "equipinv: %v\n", err)
		return ExitUsage
	case errors.Is(err, errNotFound):
		fmt.Fprintf(a.stderr, "equipinv: %v\n", err)
		return ExitFailure
	default:
		a.logger.Error("command failed", "command", cmd, "error", err)
		fmt.Fprintf(a.stderr, "equipinv: %v\n", err)
		return ExitFailure
	}
}

func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

func wantArgs(fs *flag.FlagSet, n int, names string) error {
	if fs.NArg() != n {
		return fmt.Errorf("%w: %s expects %s", errUsage, fs.Name(), names)
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", domain.ErrValidation, s)
	}
	return id, nil
}

func (a *App) add(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add")
	kind := fs.String("kind", "", "equipment kind: table, chair or projector")
	value := fs.Int64("value", 0, "value in ISK")
	location := fs.String("location", "", "location such as H-202")
	seats := fs.Int("seats", 0, "number of seats (tables)")
	chairKind := fs.String("chair-kind", "", "comfort, school, office or other (chairs)")
	lumens := fs.Int("lumens", 0, "light output (projectors)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, "no arguments"); err != nil {
		return err
	}

	k, err := domain.ParseKind(*kind)
	if err != nil {
		return err
	}
	loc, err := domain.ParseLocation(*location)
	if err != nil {
		return err
	}
	f := domain.Fields{Kind: k, Value: *value, Location: loc}

	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if set["seats"] {
		f.Seats = seats
	}
	if set["chair-kind"] {
		ck, err := domain.ParseChairKind(*chairKind)
		if err != nil {
			return err
		}
		f.ChairKind = &ck
	}
	if set["lumens"] {
		f.Lumens = lumens
	}

	e, err := a.inv.Register(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, domain.Describe(*e))
	return nil
}

func (a *App) get(ctx context.Context, args []string) error {
	fs := a.newFlagSet("get")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1, "<id>"); err != nil {
		return err
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	e, err := a.inv.Get(ctx, id)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("%w: equipment %d", errNotFound, id)
	}
	fmt.Fprintln(a.stdout, domain.Describe(*e))
	return nil
}

func (a *App) move(ctx context.Context, args []string) error {
	fs := a.newFlagSet("move")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 2, "<id> <location>"); err != nil {
		return err
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	loc, err := domain.ParseLocation(fs.Arg(1))
	if err != nil {
		return err
	}

	ok, err := a.inv.Relocate(ctx, id, loc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: equipment %d", errNotFound, id)
	}
	fmt.Fprintf(a.stdout, "moved #%d to %s\n", id, loc.DisplayString())
	return nil
}

func (a *App) remove(ctx context.Context, args []string) error {
	fs := a.newFlagSet("delete")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1, "<id>"); err != nil {
		return err
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}

	ok, err := a.inv.Remove(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: equipment %d", errNotFound, id)
	}
	fmt.Fprintf(a.stdout, "deleted #%d\n", id)
	return nil
}

// filterFlags registers the selection flags shared by list and report.
type filterFlags struct {
	building *string
	kind     *string
	room     *string
	floor    *int
	fs       *flag.FlagSet
}

func addFilterFlags(fs *flag.FlagSet) *filterFlags {
	return &filterFlags{
		building: fs.String("building", "", "building code or name"),
		kind:     fs.String("kind", "", "equipment kind"),
		room:     fs.String("room", "", "exact room such as H-202"),
		floor:    fs.Int("floor", 0, "floor within -building"),
		fs:       fs,
	}
}

func (ff *filterFlags) filter() (store.Filter, error) {
	var f store.Filter
	if *ff.building != "" {
		b, err := domain.ParseBuilding(*ff.building)
		if err != nil {
			return f, err
		}
		f.Building = &b
	}
	if *ff.kind != "" {
		k, err := domain.ParseKind(*ff.kind)
		if err != nil {
			return f, err
		}
		f.Kind = &k
	}

	floorSet := false
	ff.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == "floor" {
			floorSet = true
		}
	})
	if floorSet {
		if f.Building == nil {
			return f, fmt.Errorf("%w: -floor requires -building", errUsage)
		}
		if *ff.floor < 0 || *ff.floor > domain.MaxFloor {
			return f, fmt.Errorf("%w: floor %d must be between 0 and %d", domain.ErrInvalidLocation, *ff.floor, domain.MaxFloor)
		}
		f.Floor = ff.floor
	}

	if *ff.room != "" {
		loc, err := domain.ParseLocation(*ff.room)
		if err != nil {
			return f, err
		}
		if f.Building != nil && *f.Building != loc.Building {
			return f, fmt.Errorf("%w: -room %s is not in building %s", errUsage, loc, f.Building.Code())
		}
		if f.Floor != nil && *f.Floor != loc.Floor {
			return f, fmt.Errorf("%w: -room %s is not on floor %d", errUsage, loc, *f.Floor)
		}
		f.Building, f.Floor, f.Room = &loc.Building, &loc.Floor, &loc.Room
	}
	return f, nil
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.newFlagSet("list")
	ff := addFilterFlags(fs)
	sortKey := fs.String("sort", "", "sort by id, kind, location or value")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, "no arguments"); err != nil {
		return err
	}

	f, err := ff.filter()
	if err != nil {
		return err
	}
	var key domain.SortKey
	if *sortKey != "" {
		if key, err = domain.ParseSortKey(*sortKey); err != nil {
			return err
		}
	}

	items, err := a.inv.List(ctx, f, key)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.stdout, "no equipment found")
		return nil
	}
	for _, e := range items {
		fmt.Fprintln(a.stdout, domain.Describe(*e))
	}
	return nil
}

func (a *App) export(ctx context.Context, args []string) error {
	fs := a.newFlagSet("export")
	out := fs.String("o", "", "output file (default stdout)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, "no arguments"); err != nil {
		return err
	}

	if *out == "" {
		_, err := a.inv.Export(ctx, a.stdout)
		return err
	}

	var n int
	err := writeFile(*out, func(w io.Writer) error {
		var err error
		n, err = a.inv.Export(ctx, w)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "exported %d items to %s\n", n, *out)
	return nil
}

func (a *App) importDump(ctx context.Context, args []string) error {
	fs := a.newFlagSet("import")
	ids := fs.String("ids", string(a.defaultPolicy), "preserve or reassign ids from the dump")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 1, "<file>"); err != nil {
		return err
	}
	policy, err := store.ParseIDPolicy(*ids)
	if err != nil {
		return err
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("failed to open dump: %w", err)
	}
	defer func() { _ = f.Close() }()

	n, err := a.inv.Import(ctx, f, policy)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "imported %d items\n", n)
	return nil
}

func (a *App) report(ctx context.Context, args []string) error {
	fs := a.newFlagSet("report")
	ff := addFilterFlags(fs)
	format := fs.String("format", string(report.FormatXLSX), "xlsx or text")
	out := fs.String("o", "", "output file (text reports default to stdout)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, "no arguments"); err != nil {
		return err
	}

	rf, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}
	f, err := ff.filter()
	if err != nil {
		return err
	}

	if *out == "" {
		if rf != report.FormatText {
			return fmt.Errorf("%w: report -format %s requires -o", errUsage, rf)
		}
		_, err := a.inv.Report(ctx, a.stdout, rf, f)
		return err
	}

	var n int
	err = writeFile(*out, func(w io.Writer) error {
		var err error
		n, err = a.inv.Report(ctx, w, rf, f)
		return err
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "wrote %d items to %s\n", n, *out)
	return nil
}

func (a *App) stats(ctx context.Context, args []string) error {
	fs := a.newFlagSet("stats")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := wantArgs(fs, 0, "no arguments"); err != nil {
		return err
	}

	summaries, err := a.inv.Stats(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUILDING\tKIND\tCOUNT\tVALUE")
	var count int
	var total int64
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Building.DisplayName(), s.Kind, s.Count, domain.FormatISK(s.TotalValue))
		count += s.Count
		total += s.TotalValue
	}
	fmt.Fprintf(tw, "Total\t\t%d\t%s\n", count, domain.FormatISK(total))
	return tw.Flush()
}

// writeFile creates path and passes it to write. The file is removed if
// write fails.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// Command cemeteryctl manages graveyard inventory, burial records and payments
// from the command line. Write commands are gated on the role of the current
// session.
package main

import (
	"cemeterycore/internal/config"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
)

var exitFunc = os.Exit

// errUsage marks errors caused by bad arguments; they exit with status 2.
var errUsage = errors.New("usage")

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"session":   {"start, show or end the current session", runSession},
	"graveyard": {"add, list, update or delete graveyards", runGraveyard},
	"plot":      {"add, list, rename or delete plots", runPlot},
	"grave":     {"list graves and change reservations", runGrave},
	"record":    {"add, list, approve, reject or delete burial records", runRecord},
	"payment":   {"record payments and report ledger totals", runPayment},
	"stats":     {"print occupancy statistics", runStats},
}

// main runs the command-line interface using the program arguments and exits
// the process with the status code returned by cli.
func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("cemeteryctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts config.Options
	fs.StringVar(&opts.ConfigFile, "config", "", "path to a YAML config file (default ./cemetery.yaml when present)")
	fs.StringVar(&opts.EnvFile, "env-file", "", "path to a .env file (default ./.env when present)")
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	rest := fs.Args()
	if len(rest) == 0 {
		usage(fs)
		return 2
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(fs)
		return 2
	}

	cfg, err := config.Load(opts)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	level, _ := cfg.LogLevel()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	ctx := context.Background()
	a, err := newApp(ctx, cfg, logger, stdout, stderr)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	if err := cmd.run(ctx, a, rest[1:]); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			_, _ = fmt.Fprintln(stderr, err)
			return 2
		default:
			_, _ = fmt.Fprintf(stderr, "%s: %v\n", rest[0], err)
			return 1
		}
	}
	return 0
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	_, _ = fmt.Fprintln(out, "usage: cemeteryctl [flags] <command> [args]")
	_, _ = fmt.Fprintln(out, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, _ = fmt.Fprintf(out, "  %-10s %s\n", name, commands[name].summary)
	}
	_, _ = fmt.Fprintln(out, "\nflags:")
	fs.PrintDefaults()
}

// usageErr formats a usage error for a subcommand.
func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

// subcommand splits args into an action and its remaining arguments.
func subcommand(args []string, actions ...string) (string, []string, error) {
	if len(args) == 0 {
		return "", nil, usageErr("expected one of %s", strings.Join(actions, ", "))
	}
	for _, a := range actions {
		if args[0] == a {
			return a, args[1:], nil
		}
	}
	return "", nil, usageErr("unknown action %q, expected one of %s", args[0], strings.Join(actions, ", "))
}

// parseFlags reports bad subcommand flags as usage errors.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func newFlagSet(name string, a *app) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

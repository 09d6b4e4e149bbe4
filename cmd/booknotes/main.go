// Package main provides the booknotes command-line front end.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/booknotes/booknotes/internal/config"
	"github.com/booknotes/booknotes/internal/di"
	domainerrors "github.com/booknotes/booknotes/internal/errors"
	"github.com/booknotes/booknotes/internal/logger"
)

const usage = `Usage: booknotes [global flags] <command> [args]

Commands:
  add      add a note: --book, --front, --back, [--page], [--tags a,b]
  list     list books: [--search s] [--tag t ...] [--sort mode] [--json]
  notes    list the notes of one book: <book> [--search s] [--tag t ...] [--difficulty d]
  remove   delete a note: <id> [--yes]
  tags     list every tag: [--tag t ...]
  search   full-text search of notes: <query> [--tag t ...] [--limit n]
  review   review the notes of one book: <book>
  export   write a JSON backup: [--dir d]
  import   replace the collection with a backup: <file> [--yes]
  theme    show or change the theme: [light|dark|toggle]
  covers   download every book cover into the local cache

Run "booknotes -h" for the global flags.
`

// app is one invocation of the CLI.
type app struct {
	injector *do.RootScope
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command and returns the process exit status.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, rest, err := config.Load(args)
	if errors.Is(err, flag.ErrHelp) {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "booknotes: %v\n", err)
		return 2
	}
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	injector := di.NewContainer(cfg)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			if log, lerr := do.Invoke[*logger.Logger](injector); lerr == nil {
				log.Error("Shutdown error", "error", err)
			}
		}
	}()

	a := &app{injector: injector, stdin: stdin, stdout: stdout, stderr: stderr}
	err = a.dispatch(ctx, rest[0], rest[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "booknotes %s: %v\n", rest[0], err)
		return 2
	default:
		fmt.Fprintf(stderr, "booknotes %s: %v\n", rest[0], err)
		return domainerrors.CodeOf(err).ExitCode()
	}
}

var errUsage = errors.New("usage error")

// invoke resolves a service from the command's container. Provider failures,
// such as a data dir locked by another booknotes process, come back as errors.
func invoke[T any](a *app) (T, error) {
	return do.Invoke[T](a.injector)
}

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "add":
		return a.add(ctx, args)
	case "list":
		return a.list(ctx, args)
	case "notes":
		return a.notes(args)
	case "remove", "rm":
		return a.remove(ctx, args)
	case "tags":
		return a.tags(args)
	case "search":
		return a.search(ctx, args)
	case "review":
		return a.review(ctx, args)
	case "export":
		return a.export(ctx, args)
	case "import":
		return a.importBackup(ctx, args)
	case "theme":
		return a.theme(ctx, args)
	case "covers":
		return a.covers(ctx, args)
	default:
		return usageErrorf("unknown command %q", command)
	}
}

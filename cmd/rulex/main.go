package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/agenthands/rulex/pkg/compiler/diag"
	"github.com/agenthands/rulex/pkg/compiler/emitter"
	"github.com/agenthands/rulex/pkg/config"
	"github.com/agenthands/rulex/pkg/rulex"
)

// errReported means the failure was already printed.
var errReported = errors.New("compilation failed")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "repl" {
		s, _, err := setup("repl", args[1:], stderr)
		if err != nil {
			return err
		}
		defer s.close()
		return s.repl(stdout)
	}

	s, set, err := setup("rulex", args, stderr)
	if err != nil {
		return err
	}
	defer s.close()

	src, name, err := readSource(s.file, set.Args(), stdin)
	if err != nil {
		return err
	}

	switch {
	case s.tokens:
		out, err := rulex.Tokens(src)
		if err != nil {
			return s.report(stderr, err, src, name)
		}
		fmt.Fprintln(stdout, out)
	case s.ast:
		tree, err := rulex.Parse(src)
		if err != nil {
			return s.report(stderr, err, src, name)
		}
		spew.Fdump(stdout, tree)
	default:
		out, err := rulex.Compile(s.ctx, src, rulex.Options{Flavor: s.flavor})
		if err != nil {
			return s.report(stderr, err, src, name)
		}
		fmt.Fprintln(stdout, out)
	}
	return nil
}

type session struct {
	config.Config

	configPath string
	file       string
	ast        bool
	tokens     bool

	ctx    context.Context
	flavor emitter.Flavor
	sync   func()
}

func setup(name string, args []string, stderr io.Writer) (*session, *flag.FlagSet, error) {
	s := &session{Config: config.Default()}

	set := flag.NewFlagSet(name, flag.ContinueOnError)
	set.SetOutput(stderr)
	s.Bind(set)
	set.StringVar(&s.configPath, "config", "", "Path to a YAML config file (default "+config.DefaultPath+" if present)")
	if name != "repl" {
		set.StringVar(&s.file, "file", "", "Read the pattern from this file")
		set.BoolVar(&s.ast, "ast", false, "Dump the syntax tree instead of compiling")
		set.BoolVar(&s.tokens, "tokens", false, "List the tokens instead of compiling")
	}
	if err := set.Parse(args); err != nil {
		return nil, nil, err
	}

	var f *config.File
	var err error
	if s.configPath != "" {
		f, err = config.Load(s.configPath)
	} else {
		f, err = config.LoadOptional(config.DefaultPath)
	}
	if err != nil {
		return nil, nil, err
	}
	if f != nil {
		s.Apply(f, set)
	}

	if s.flavor, err = s.EmitterFlavor(); err != nil {
		return nil, nil, err
	}

	logger, sync, err := newLogger(s.Debug)
	if err != nil {
		return nil, nil, err
	}
	s.ctx = logr.NewContext(context.Background(), logger)
	s.sync = sync
	return s, set, nil
}

func (s *session) close() {
	s.sync()
}

func newLogger(debug bool) (logr.Logger, func(), error) {
	zapCfg := zap.NewProductionConfig()
	if debug {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zl, err := zapCfg.Build()
	if err != nil {
		return logr.Logger{}, nil, err
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}

// readSource picks the pattern from -file, the positional arguments or
// stdin, in that order.
func readSource(file string, args []string, stdin io.Reader) (src, name string, err error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", "", err
		}
		return string(data), file, nil
	case len(args) > 0:
		return strings.Join(args, " "), "", nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), "<stdin>", nil
}

var (
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	caretStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// report prints located errors with a source snippet and returns
// errReported. Other errors are returned as they are.
func (s *session) report(w io.Writer, err error, src, name string) error {
	var d *diag.Error
	if !errors.As(err, &d) {
		return err
	}
	text := diag.Snippet(d, src, name)
	if s.Color {
		text = colorize(text)
	}
	fmt.Fprint(w, text)
	return errReported
}

func colorize(snippet string) string {
	lines := strings.Split(snippet, "\n")
	for i, l := range lines {
		switch {
		case i == 0:
			lines[i] = errorStyle.Render(l)
		case strings.HasPrefix(l, "help:"):
			lines[i] = helpStyle.Render(l)
		case strings.HasPrefix(l, "     | ") && strings.Trim(l[7:], " ^") == "":
			lines[i] = "     | " + caretStyle.Render(l[7:])
		}
	}
	return strings.Join(lines, "\n")
}

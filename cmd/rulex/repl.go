package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/agenthands/rulex/pkg/compiler/diag"
	"github.com/agenthands/rulex/pkg/compiler/emitter"
	"github.com/agenthands/rulex/pkg/rulex"
)

const (
	historyFile = ".rulex_history"
	promptMain  = "rulex> "
	promptCont  = "  ...> "
)

func (s *session) repl(stdout io.Writer) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath, ok := historyPath(); ok {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintf(stdout, "rulex repl (%s). Type :flavor NAME to switch, :quit to exit.\n", s.flavor)
	for {
		src, err := readPattern(ln)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(stdout)
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		if quit := s.command(stdout, src); quit {
			return nil
		}
	}
}

// command handles one REPL entry and reports whether to leave the loop.
func (s *session) command(w io.Writer, src string) bool {
	line := strings.TrimSpace(src)
	if !strings.HasPrefix(line, ":") {
		out, err := rulex.Compile(s.ctx, src, rulex.Options{Flavor: s.flavor})
		if err != nil {
			if rerr := s.report(w, err, src, ""); !errors.Is(rerr, errReported) {
				fmt.Fprintf(w, "error: %s\n", rerr)
			}
			return false
		}
		fmt.Fprintln(w, out)
		return false
	}

	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case ":quit", ":q":
		return true
	case ":flavor":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			fmt.Fprintln(w, s.flavor)
			return false
		}
		f, err := emitter.ParseFlavor(arg)
		if err != nil {
			fmt.Fprintf(w, "error: %s\n", err)
			return false
		}
		s.flavor = f
		fmt.Fprintf(w, "flavor set to %s\n", f)
	default:
		fmt.Fprintln(w, "unknown command. Type :flavor NAME or :quit.")
	}
	return false
}

// historyPath is the history file in the home directory. There is no
// history without a home directory.
func historyPath() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, historyFile), true
}

type prompter interface {
	Prompt(prompt string) (string, error)
}

// readPattern keeps prompting while the input so far ends in the middle
// of a pattern. End of input and Ctrl-C are reported as io.EOF.
func readPattern(ln prompter) (string, error) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, nil
		}
	}
}

func incomplete(src string) bool {
	_, err := rulex.Parse(src)
	var d *diag.Error
	return errors.As(err, &d) && d.Kind == diag.KindIncomplete
}

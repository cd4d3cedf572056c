package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rulex/pkg/compiler/emitter"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name string
		args []string
		in   string
		want string
	}{
		{name: "Argument", args: []string{`'a'+`}, want: "a+\n"},
		{name: "Joined Arguments", args: []string{`'a'`, `|`, `'b'`}, want: "a|b\n"},
		{name: "Flavor", args: []string{"-flavor", "python", `:x('a')`}, want: "(?P<x>a)\n"},
		{name: "Stdin", in: `<% 'x' %>`, want: "^x$\n"},
		{name: "Tokens", args: []string{"-tokens", `'a' .`}, want: "[string \"'a'\", `.` \".\"]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, strings.NewReader(tt.in), &stdout, &stderr)
			require.NoError(t, err, stderr.String())
			assert.Equal(t, tt.want, stdout.String())
		})
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ip.rulex")
	require.NoError(t, os.WriteFile(path, []byte("let d = ['0'-'9'];\nd{1,3}\n"), 0o600))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-file", path}, nil, &stdout, &stderr))
	assert.Equal(t, "[0-9]{1,3}\n", stdout.String())
}

func TestRunAST(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-ast", `'a'`}, nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "ast.Literal")
}

func TestRunReportsDiagnostics(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-no-color", `'a' @`}, nil, &stdout, &stderr)
	assert.ErrorIs(t, err, errReported)
	assert.Empty(t, stdout.String())
	assert.Equal(t, "error at 1:5: unknown token\n\n   1 | 'a' @\n     |     ^\n", stderr.String())
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rulex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("flavor: ruby\n"), 0o600))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-config", path, `:('a') ::1`}, nil, &stdout, &stderr))
	assert.Equal(t, "(a)\\k<1>\n", stdout.String())
}

func TestRunRejectsUnknownFlavor(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-flavor", "perl", `'a'`}, nil, &stdout, &stderr)
	assert.ErrorIs(t, err, emitter.ErrUnknownFlavor)
}

func TestReplCommand(t *testing.T) {
	s, _, err := setup("repl", []string{"-no-color"}, &bytes.Buffer{})
	require.NoError(t, err)
	defer s.close()

	var out bytes.Buffer
	assert.False(t, s.command(&out, `'a'*`))
	assert.False(t, s.command(&out, ":flavor re2"))
	assert.False(t, s.command(&out, ">> 'a'"))
	assert.False(t, s.command(&out, ":flavor"))
	assert.True(t, s.command(&out, ":quit"))

	text := out.String()
	assert.Contains(t, text, "a*\n")
	assert.Contains(t, text, "flavor set to re2\n")
	assert.Contains(t, text, "lookarounds aren't supported in re2")
	assert.True(t, strings.HasSuffix(text, "re2\n"))
}

func TestIncomplete(t *testing.T) {
	assert.True(t, incomplete(`('a'`))
	assert.True(t, incomplete(`:(`))
	assert.True(t, incomplete(`'a' >>`))
	assert.False(t, incomplete(`'a' | 'b'`))
	assert.False(t, incomplete(`'a' )`))
}

// scriptedPrompt answers prompts from lines, then returns err.
type scriptedPrompt struct {
	lines   []string
	prompts []string
	err     error
}

func (p *scriptedPrompt) Prompt(prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if len(p.lines) == 0 {
		return "", p.err
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func TestReadPatternContinuesIncompleteInput(t *testing.T) {
	p := &scriptedPrompt{lines: []string{"('a'", "| 'b')"}, err: io.EOF}
	src, err := readPattern(p)
	require.NoError(t, err)
	assert.Equal(t, "('a'\n| 'b')", src)
	assert.Equal(t, []string{promptMain, promptCont}, p.prompts)
}

func TestReadPatternEndOfInput(t *testing.T) {
	for _, end := range []error{io.EOF, liner.ErrPromptAborted} {
		_, err := readPattern(&scriptedPrompt{err: end})
		assert.ErrorIs(t, err, io.EOF)
	}
}

func TestReadPatternReturnsReadErrors(t *testing.T) {
	broken := errors.New("terminal gone")
	_, err := readPattern(&scriptedPrompt{lines: []string{"('a'"}, err: broken})
	assert.ErrorIs(t, err, broken)
}

func TestHistoryPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path, ok := historyPath()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(home, historyFile), path)

	t.Setenv("HOME", "")
	_, ok = historyPath()
	assert.False(t, ok)
}

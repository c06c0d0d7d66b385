package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/trezcool/aulavirtual/core"
)

// terminal notifies on out and asks confirmations on in.
type terminal struct {
	in  *bufio.Reader
	out io.Writer
}

var (
	_ core.Notifier  = (*terminal)(nil)
	_ core.Confirmer = (*terminal)(nil)
)

func newTerminal(in io.Reader, out io.Writer) *terminal {
	return &terminal{in: bufio.NewReader(in), out: out}
}

func (t *terminal) Notify(level core.Level, msg string) {
	_, _ = fmt.Fprintln(t.out, levelStyles[level].Render(msg))
}

// Confirm defaults to no; EOF counts as no.
func (t *terminal) Confirm(prompt string) bool {
	_, _ = fmt.Fprint(t.out, promptStyle.Render(prompt)+" [s/N] ")
	line, _ := t.in.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "si", "sí", "y", "yes":
		return true
	}
	return false
}

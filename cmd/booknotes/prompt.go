package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/booknotes/booknotes/internal/service"
)

// prompter reads answers line by line from the CLI's input.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// readLine prints prompt and returns the next trimmed input line.
// ok is false at end of input.
func (p *prompter) readLine(prompt string) (line string, ok bool) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// Confirm implements service.Confirmer. Only an explicit yes confirms.
func (p *prompter) Confirm(prompt string) bool {
	answer, ok := p.readLine(prompt + " [y/N] ")
	if !ok {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// confirmer returns the policy for a destructive command.
func (a *app) confirmer(yes bool) service.Confirmer {
	if yes {
		return service.AlwaysConfirm
	}
	return newPrompter(a.stdin, a.stdout)
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// terminalPrompter asks confirmations on the terminal and prints alerts.
type terminalPrompter struct {
	mu        sync.Mutex
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

func newTerminalPrompter(in io.Reader, out io.Writer, assumeYes bool) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

// Confirm accepts "s", "si", "sí", "y" and "yes". EOF counts as no.
func (p *terminalPrompter) Confirm(msg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	confirmPrompt(p.out, msg)
	if p.assumeYes {
		fmt.Fprintln(p.out, "s")
		return true
	}

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "si", "sí", "y", "yes":
		return true
	default:
		return false
	}
}

func (p *terminalPrompter) Alert(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, msg)
}

// ReadLine writes prompt and returns the next input line, trimmed. ok is
// false once the input is exhausted.
func (p *terminalPrompter) ReadLine(prompt string) (line string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(line), true
}

// printNavigator reports where the web view would go next.
type printNavigator struct {
	out    io.Writer
	target string
}

func (n *printNavigator) GoToList()        { n.goTo("/clientes") }
func (n *printNavigator) GoToNew()         { n.goTo("/clientes/new") }
func (n *printNavigator) GoToEdit(id uint) { n.goTo(fmt.Sprintf("/clientes/edit/%d", id)) }

func (n *printNavigator) goTo(target string) {
	n.target = target
	fmt.Fprintf(n.out, "-> %s\n", target)
}

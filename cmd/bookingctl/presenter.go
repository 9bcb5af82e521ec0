package main

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/briandowns/spinner"
)

// terminalPresenter renders dispatcher feedback on a terminal.
type terminalPresenter struct {
	out         io.Writer
	spin        *spinner.Spinner
	fieldErrors map[string]string
}

func newTerminalPresenter(out io.Writer) *terminalPresenter {
	return &terminalPresenter{
		out:         out,
		spin:        spinner.New(spinner.CharSets[14], 120*time.Millisecond, spinner.WithWriter(out)),
		fieldErrors: make(map[string]string),
	}
}

func (p *terminalPresenter) SetFieldError(field, message string) {
	if message == "" {
		delete(p.fieldErrors, field)
		return
	}
	p.fieldErrors[field] = message
}

func (p *terminalPresenter) SetBusy(busy bool, label string) {
	if busy {
		p.spin.Suffix = " " + label
		p.spin.Start()
		return
	}
	p.spin.Stop()
}

// ShowSuccess prints once; a terminal has nothing to dismiss after display.
func (p *terminalPresenter) ShowSuccess(message string, _ time.Duration) {
	fmt.Fprintf(p.out, "✅ %s\n", message)
}

func (p *terminalPresenter) ShowError(message string) {
	fmt.Fprintf(p.out, "❌ %s\n", message)
}

// flushFieldErrors prints the annotations left after validation, sorted by field.
func (p *terminalPresenter) flushFieldErrors() {
	fields := make([]string, 0, len(p.fieldErrors))
	for f := range p.fieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(p.out, "  --%s: %s\n", flagName(f), p.fieldErrors[f])
	}
}

// flagForm is the form backed by command line flags.
type flagForm struct {
	values map[string]string
}

func (f *flagForm) Values() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

func (f *flagForm) Reset() {
	f.values = make(map[string]string)
}

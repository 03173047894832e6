package cli

import (
	"fmt"
	"io"
)

// IO is the output side of one command run. Warnings go to stderr twice,
// ahead of the first stdout write and again at the end, so that they are
// still visible when the output is cut by head or tail.
type IO struct {
	stdout   *leadWriter
	errOut   io.Writer
	warnings []string
}

// NewIO returns an IO writing to out and errOut.
func NewIO(out, errOut io.Writer) *IO {
	o := &IO{errOut: errOut}
	o.stdout = &leadWriter{w: out, o: o}

	return o
}

// Warn records a problem and what to do about it. Any warning turns the
// exit code into 1.
func (o *IO) Warn(issue string, action string) {
	o.warnings = append(o.warnings, issue+": "+action)
}

func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.stdout, a...)
}

func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.stdout, format, a...)
}

func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Out is stdout for writers such as tabular renderers. It leads with the
// warnings just like Println.
func (o *IO) Out() io.Writer {
	return o.stdout
}

// Fail reports err, repeats the warnings and returns exit code 1.
func (o *IO) Fail(err error) int {
	o.ErrPrintln("error:", err)
	o.Finish()

	return 1
}

// Finish repeats the warnings and returns the exit code.
func (o *IO) Finish() int {
	o.stdout.flush()
	o.writeWarnings()

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}

func (o *IO) writeWarnings() {
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}
}

// leadWriter writes the pending warnings to stderr once, before the first
// stdout write that finds any.
type leadWriter struct {
	w    io.Writer
	o    *IO
	done bool
}

func (l *leadWriter) Write(p []byte) (int, error) {
	l.flush()

	return l.w.Write(p)
}

func (l *leadWriter) flush() {
	if l.done || len(l.o.warnings) == 0 {
		return
	}

	l.o.writeWarnings()
	l.done = true
}

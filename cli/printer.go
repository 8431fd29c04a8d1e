package cli

import (
	"fmt"
	"io"
	"os"
)

// Printer is where user-visible output goes. It writes to STDERR unless redirected.
type Printer struct {
	out io.Writer
}

func NewPrinter() *Printer {
	return &Printer{out: os.Stderr}
}

// Redirect sends all further output to writer.
func (p *Printer) Redirect(writer io.Writer) {
	p.out = writer
}

// Writer returns the current output destination, for things like loggers that need an [io.Writer].
func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) Print(msg ...any) {
	_, _ = fmt.Fprint(p.out, msg...)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) Println(msg ...any) {
	_, _ = fmt.Fprintln(p.out, msg...)
}

package gen

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter prints generator diagnostics. Colors follow the terminal capabilities detected by
// fatih/color.
type Reporter struct {
	out     io.Writer
	verbose bool

	errorColor   *color.Color
	warnColor    *color.Color
	successColor *color.Color
	detailColor  *color.Color
}

func NewReporter(out io.Writer, verbose bool) *Reporter {
	return &Reporter{
		out:          out,
		verbose:      verbose,
		errorColor:   color.New(color.FgRed, color.Bold),
		warnColor:    color.New(color.FgYellow),
		successColor: color.New(color.FgGreen),
		detailColor:  color.New(color.FgHiBlack),
	}
}

func (r *Reporter) Error(description string, err error) {
	r.errorColor.Fprint(r.out, "ERROR: ")
	fmt.Fprintf(r.out, "%s\n\t%v\n", description, err)
}

func (r *Reporter) Warning(description string, err error) {
	r.warnColor.Fprint(r.out, "WARNING: ")
	fmt.Fprintf(r.out, "%s\n\t%v\n", description, err)
}

func (r *Reporter) Success(format string, args ...any) {
	r.successColor.Fprintf(r.out, "✓ "+format+"\n", args...)
}

// Verbose prints only when the reporter was created verbose.
func (r *Reporter) Verbose(format string, args ...any) {
	if r.verbose {
		r.detailColor.Fprintf(r.out, "  "+format+"\n", args...)
	}
}

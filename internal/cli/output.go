package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// printer writes status lines. Colors are dropped automatically when the
// writer is not a terminal.
type printer struct {
	out     io.Writer
	errOut  io.Writer
	failure lipgloss.Style
	success lipgloss.Style
}

func newPrinter(out, errOut io.Writer) *printer {
	r := lipgloss.NewRenderer(out)
	return &printer{
		out:     out,
		errOut:  errOut,
		failure: r.NewStyle().Foreground(lipgloss.Color("9")),
		success: r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

func (p *printer) Failure(msg string) {
	fmt.Fprintln(p.out, p.failure.Render(msg))
}

func (p *printer) Success(msg string) {
	fmt.Fprintln(p.out, p.success.Render(msg))
}

// Detail writes diagnostic text to the error stream.
func (p *printer) Detail(err error) {
	fmt.Fprintln(p.errOut, err)
}

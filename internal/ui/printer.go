package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Printer writes command output to Out and diagnostics to Err.
type Printer struct {
	Out    io.Writer
	Err    io.Writer
	styles Styles
	errSty Styles
}

func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{
		Out:    out,
		Err:    errOut,
		styles: NewStyles(lipgloss.NewRenderer(out)),
		errSty: NewStyles(lipgloss.NewRenderer(errOut)),
	}
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.Out, a...)
}

func (p *Printer) Success(format string, a ...any) {
	fmt.Fprintln(p.Out, p.styles.Success.Render("✓ "+fmt.Sprintf(format, a...)))
}

func (p *Printer) Warn(format string, a ...any) {
	fmt.Fprintln(p.Err, p.errSty.Warning.Render("warning:")+" "+fmt.Sprintf(format, a...))
}

func (p *Printer) Error(err error) {
	fmt.Fprintln(p.Err, p.errSty.Error.Render("error:")+" "+err.Error())
}

// Field prints an aligned "label: value" line; empty values show as "-".
func (p *Printer) Field(label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(p.Out, "%s %s\n", p.styles.Label.Render(fmt.Sprintf("%-12s", label+":")), value)
}

func (p *Printer) Title(text string) {
	fmt.Fprintln(p.Out, p.styles.Title.Render(text))
}

// Diff colours a unified diff line by line.
func (p *Printer) Diff(unified string) {
	for _, line := range strings.SplitAfter(unified, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "+++"), strings.HasPrefix(text, "---"):
			text = p.styles.Title.Render(text)
		case strings.HasPrefix(text, "@@"):
			text = p.styles.DiffHunk.Render(text)
		case strings.HasPrefix(text, "+"):
			text = p.styles.DiffAdd.Render(text)
		case strings.HasPrefix(text, "-"):
			text = p.styles.DiffDel.Render(text)
		}
		fmt.Fprintln(p.Out, text)
	}
}

// Table renders rows under headers with a normal border.
func (p *Printer) Table(headers []string, rows [][]string) {
	styleFunc := func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return p.styles.Header
		}
		return p.styles.Cell
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.Border).
		StyleFunc(styleFunc).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(p.Out, t.Render())
}

// JSON writes v indented.
func (p *Printer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, string(data))
	return err
}

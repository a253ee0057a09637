package ui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperr "sshkm/internal/error"
)

// Confirm is a single y/n question.
type Confirm struct {
	question string
	styles   Styles
	answered bool
	yes      bool
}

func NewConfirm(question string, styles Styles) *Confirm {
	return &Confirm{question: question, styles: styles}
}

func (c *Confirm) Init() tea.Cmd {
	return nil
}

func (c *Confirm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	switch key.String() {
	case "y", "Y":
		c.answered, c.yes = true, true
		return c, tea.Quit
	case "n", "N", "enter", "esc", "ctrl+c":
		c.answered, c.yes = true, false
		return c, tea.Quit
	}
	return c, nil
}

func (c *Confirm) View() string {
	if c.answered {
		answer := "no"
		if c.yes {
			answer = "yes"
		}
		return c.styles.Warning.Render(c.question) + " " + answer + "\n"
	}
	return c.styles.Warning.Render(c.question) + " " + c.styles.Description.Render("[y/N]") + " "
}

// Confirmed reports whether the answer was yes.
func (c *Confirm) Confirmed() bool {
	return c.answered && c.yes
}

// AskConfirm asks question on the given terminal streams. Anything but an
// explicit yes counts as no.
func AskConfirm(ctx context.Context, in io.Reader, out io.Writer, question string) (bool, error) {
	c := NewConfirm(question, NewStyles(lipgloss.NewRenderer(out)))
	p := tea.NewProgram(c, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return false, apperr.IO(err)
	}
	return c.Confirmed(), nil
}

package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperr "sshkm/internal/error"
	"sshkm/internal/models"
)

const (
	fieldName = iota
	fieldHostname
	fieldUser
	fieldKey
	fieldPort
	fieldProxyJump
	fieldCount
)

var fieldLabels = [fieldCount]string{"Name", "Hostname", "User", "Key", "Port", "ProxyJump"}

// HostForm asks for the fields of a new host entry.
type HostForm struct {
	inputs      []textinput.Model
	activeField int
	styles      Styles
	err         string

	host      models.Host
	submitted bool
	cancelled bool
}

// NewHostForm returns a form prefilled with initial.
func NewHostForm(initial models.Host, styles Styles) *HostForm {
	f := &HostForm{
		inputs: make([]textinput.Model, fieldCount),
		styles: styles,
	}

	values := [fieldCount]string{
		initial.Name, initial.Hostname, initial.User, initial.Key, "", initial.ProxyJump,
	}
	if initial.Port != 0 {
		values[fieldPort] = strconv.Itoa(initial.Port)
	}

	for i := range f.inputs {
		t := textinput.New()
		t.CharLimit = 255
		t.Prompt = ""
		t.Placeholder = strings.ToLower(fieldLabels[i])
		if i == fieldPort {
			t.CharLimit = 5
			t.Placeholder = "22"
		}
		t.SetValue(values[i])
		f.inputs[i] = t
	}

	// Start on the first empty required field.
	switch {
	case initial.Name == "":
		f.activeField = fieldName
	case initial.Hostname == "":
		f.activeField = fieldHostname
	default:
		f.activeField = fieldUser
	}
	f.inputs[f.activeField].Focus()
	return f
}

func (f *HostForm) Init() tea.Cmd {
	return textinput.Blink
}

func (f *HostForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			f.cancelled = true
			return f, tea.Quit
		case "tab", "down":
			f.navigate(1)
			return f, nil
		case "shift+tab", "up":
			f.navigate(-1)
			return f, nil
		case "enter":
			if f.activeField < fieldCount-1 {
				f.navigate(1)
				return f, nil
			}
			return f.submit()
		}
	}

	var cmd tea.Cmd
	f.inputs[f.activeField], cmd = f.inputs[f.activeField].Update(msg)
	return f, cmd
}

func (f *HostForm) navigate(step int) {
	f.activeField = (f.activeField + step + fieldCount) % fieldCount
	for i := range f.inputs {
		if i == f.activeField {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

func (f *HostForm) submit() (tea.Model, tea.Cmd) {
	host, err := f.collect()
	if err != nil {
		f.err = err.Error()
		return f, nil
	}
	f.host = host
	f.submitted = true
	return f, tea.Quit
}

func (f *HostForm) collect() (models.Host, error) {
	value := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

	host := models.Host{
		Name:      value(fieldName),
		Hostname:  value(fieldHostname),
		User:      value(fieldUser),
		Key:       value(fieldKey),
		ProxyJump: value(fieldProxyJump),
	}
	if host.Name == "" {
		return models.Host{}, fmt.Errorf("name is required")
	}
	if host.Hostname == "" {
		return models.Host{}, fmt.Errorf("hostname is required")
	}
	if p := value(fieldPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return models.Host{}, fmt.Errorf("port must be a number between 1 and 65535")
		}
		host.Port = port
	}
	return host, nil
}

func (f *HostForm) View() string {
	var b strings.Builder
	b.WriteString(f.styles.Title.Render("New host"))
	b.WriteString("\n\n")

	for i, input := range f.inputs {
		label := fmt.Sprintf("%-10s", fieldLabels[i])
		if i == f.activeField {
			label = f.styles.Focused.Render("> " + label)
		} else {
			label = f.styles.Label.Render("  " + label)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label, " ", input.View()))
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n" + f.styles.Error.Render(f.err) + "\n")
	}
	b.WriteString("\n" + f.styles.Description.Render("tab: next field • enter: confirm • esc: cancel") + "\n")
	return b.String()
}

// Host returns the submitted entry and whether the form was completed.
func (f *HostForm) Host() (models.Host, bool) {
	return f.host, f.submitted
}

// RunHostForm runs the form on the given terminal streams.
func RunHostForm(ctx context.Context, in io.Reader, out io.Writer, initial models.Host) (models.Host, error) {
	form := NewHostForm(initial, NewStyles(lipgloss.NewRenderer(out)))
	p := tea.NewProgram(form, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return models.Host{}, apperr.IO(err)
	}
	host, ok := form.Host()
	if !ok {
		return models.Host{}, apperr.InvalidInput("host entry cancelled")
	}
	return host, nil
}

package spinner

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/proxystack/wasmbench/internal/ui"
)

type SpinnerModel struct {
	spinner spinner.Model
	step    string
	err     error
	done    bool
	result  interface{}
}

func (m SpinnerModel) HasError() bool {
	return m.err != nil
}

func (m SpinnerModel) HasResult() bool {
	return m.result != nil
}

func (m SpinnerModel) GetResult() interface{} {
	return m.result
}

func (m SpinnerModel) GetError() error {
	return m.err
}

func NewSpinnerModelWithMessage(message string) SpinnerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ui.InfoColor))
	return SpinnerModel{
		spinner: s,
		step:    message,
	}
}

func (m SpinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// ResultMsg completes the spinner with a result.
type ResultMsg struct {
	Result interface{}
}

// StepMsg updates the progress message.
type StepMsg struct {
	Step string
}

func (m SpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case error:
		m.err = msg
		m.done = true
		return m, tea.Sequence(
			tea.Printf("%s", ui.ErrorStyle.Render(fmt.Sprintf("%s %s", ui.ErrorSymbol, strings.TrimSpace(msg.Error())))),
			tea.Quit,
		)

	case StepMsg:
		m.step = msg.Step
		return m, nil

	case string:
		m.step = msg
		return m, nil

	case ResultMsg:
		m.result = msg.Result
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m SpinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.step)
}

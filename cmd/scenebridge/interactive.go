package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	scenebridge "github.com/lumekit/scenebridge"
	"github.com/lumekit/scenebridge/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2E86AB")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#2E86AB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

type funcEntry struct {
	id        scenebridge.FuncID
	name      string
	params    int
	hasResult bool
}

type inspectorModel struct {
	err      error
	eng      *engine.Engine
	cfg      fileConfig
	funcs    []funcEntry
	inputs   []textinput.Model
	result   string
	selected int
	focusIdx int
	state    modelState
}

type loadedMsg struct {
	err error
	eng *engine.Engine
}

type callResultMsg struct {
	err    error
	result string
}

func newInspectorModel(cfg fileConfig) *inspectorModel {
	m := &inspectorModel{cfg: cfg, state: stateSelectFunc}
	for fn := scenebridge.FuncID(0); fn < scenebridge.FuncCount; fn++ {
		params, hasResult := engine.Arity(fn)
		m.funcs = append(m.funcs, funcEntry{
			id:        fn,
			name:      engine.ExportName(fn),
			params:    params,
			hasResult: hasResult,
		})
	}
	return m
}

func (m *inspectorModel) Init() tea.Cmd {
	if m.cfg.Wasm == "" {
		return nil
	}
	return m.loadRuntime
}

func (m *inspectorModel) loadRuntime() tea.Msg {
	ctx := context.Background()

	data, err := os.ReadFile(m.cfg.Wasm)
	if err != nil {
		return loadedMsg{err: err}
	}

	ecfg := &engine.Config{MemoryLimitPages: m.cfg.MemoryLimitPages}
	if m.cfg.Manifest != "" {
		text, err := os.ReadFile(m.cfg.Manifest)
		if err != nil {
			return loadedMsg{err: err}
		}
		ecfg.Manifest = string(text)
	}

	eng, err := engine.LoadWithConfig(ctx, data, ecfg)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{eng: eng}
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.eng != nil {
				m.eng.Close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		m.err = msg.err
		m.eng = msg.eng

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *inspectorModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, f.params)
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = "s32"
		ti.Prompt = fmt.Sprintf("a%d: ", i)
		ti.Width = 20
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *inspectorModel) callFunction() tea.Msg {
	if m.eng == nil {
		return callResultMsg{err: fmt.Errorf("no runtime loaded (start with -wasm)")}
	}

	f := m.funcs[m.selected]
	args := make([]uint64, len(m.inputs))
	for i, input := range m.inputs {
		v, err := strconv.ParseInt(strings.TrimSpace(input.Value()), 10, 32)
		if err != nil {
			return callResultMsg{err: fmt.Errorf("argument a%d: %w", i, err)}
		}
		args[i] = scenebridge.I32Arg(int32(v))
	}

	res, err := m.eng.Call(context.Background(), f.id, args...)
	if err != nil {
		return callResultMsg{err: err}
	}
	if !f.hasResult {
		return callResultMsg{result: "ok"}
	}
	return callResultMsg{result: strconv.FormatInt(int64(scenebridge.I32Result(res)), 10)}
}

func (m *inspectorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Scene Runtime Inspector"))
	if m.cfg.Wasm != "" {
		b.WriteString(" ")
		b.WriteString(m.cfg.Wasm)
	} else {
		b.WriteString(" ")
		b.WriteString(helpStyle.Render("(no runtime, browse only)"))
	}
	b.WriteString("\n\n")

	if m.err != nil && m.state != stateShowResult {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			line := m.formatFunc(f)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *inspectorModel) formatFunc(f funcEntry) string {
	var params []string
	for i := 0; i < f.params; i++ {
		params = append(params, fmt.Sprintf("a%d: %s", i, typeStyle.Render("s32")))
	}
	result := ""
	if f.hasResult {
		result = " -> " + typeStyle.Render("s32")
	}
	return funcStyle.Render(f.name) + "(" + strings.Join(params, ", ") + ")" + result
}

func runInteractive(cfg fileConfig) error {
	p := tea.NewProgram(newInspectorModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

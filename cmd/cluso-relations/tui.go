package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-relations/pkg/consolidate"
	"github.com/dd0wney/cluso-relations/pkg/pipeline"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit}}
}

type eventMsg pipeline.Event

type doneMsg struct {
	session *consolidate.Session
	err     error
}

type progressModel struct {
	categories []string
	events     map[string]pipeline.Event
	table      table.Model
	spinner    spinner.Model
	help       help.Model
	keys       keyMap
	cancel     context.CancelFunc
	startTime  time.Time
	elapsed    time.Duration
	done       bool
	session    *consolidate.Session
	err        error
}

func newProgressModel(categories []string, cancel context.CancelFunc) progressModel {
	columns := []table.Column{
		{Title: "Category", Width: 14},
		{Title: "Records", Width: 10},
		{Title: "Built", Width: 10},
		{Title: "Skipped", Width: 10},
		{Title: "Status", Width: 12},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(len(categories)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.UnsetForeground().UnsetBackground().Bold(false)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := progressModel{
		categories: categories,
		events:     make(map[string]pipeline.Event, len(categories)),
		table:      t,
		spinner:    sp,
		help:       help.New(),
		keys:       keys,
		cancel:     cancel,
		startTime:  time.Now(),
	}
	m.refresh()
	return m
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			if !m.done {
				m.cancel()
				return m, nil
			}
			return m, tea.Quit
		}

	case eventMsg:
		m.events[msg.Category] = pipeline.Event(msg)
		m.refresh()

	case doneMsg:
		m.done = true
		m.session, m.err = msg.session, msg.err
		m.elapsed = time.Since(m.startTime)
		m.refresh()
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) refresh() {
	rows := make([]table.Row, 0, len(m.categories))
	for _, c := range m.categories {
		ev, seen := m.events[c]
		status := "waiting"
		switch {
		case ev.Err != nil:
			status = "failed"
		case ev.Done:
			status = "done"
		case seen:
			status = "running"
		}
		rows = append(rows, table.Row{
			c,
			fmt.Sprintf("%d", ev.Records),
			fmt.Sprintf("%d", ev.Built),
			fmt.Sprintf("%d", ev.Skipped),
			status,
		})
	}
	m.table.SetRows(rows)
}

func (m progressModel) View() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("INSPIRE relations"))
	s.WriteString("\n")
	s.WriteString(contentStyle.Render(m.table.View()))
	s.WriteString("\n")

	switch {
	case m.err != nil:
		s.WriteString(contentStyle.Render(errorStyle.Render("Failed: " + m.err.Error())))
	case m.done:
		st := m.session.Stats()
		summary := fmt.Sprintf("Nodes:      %d\nRelations:  %d\nExpanded:   %d\nDuplicates: %d\nElapsed:    %s",
			st.Nodes, st.Relations, st.Expanded, st.DuplicateNodes, m.elapsed.Round(time.Millisecond))
		s.WriteString(contentStyle.Render(successStyle.Render("Consolidated")))
		s.WriteString("\n")
		s.WriteString(contentStyle.Render(statsBoxStyle.Render(summary)))
	default:
		s.WriteString(contentStyle.Render(m.spinner.View() + " consolidating"))
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.View(m.keys)))
	s.WriteString("\n")
	return s.String()
}

// runWithProgress runs p while rendering its progress events.
func runWithProgress(ctx context.Context, p *pipeline.Pipeline) (*consolidate.Session, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan pipeline.Event, 64)
	p.Progress = events
	defer func() { p.Progress = nil }()

	prog := tea.NewProgram(newProgressModel(p.Categories, cancel))

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for ev := range events {
			prog.Send(eventMsg(ev))
		}
	}()
	go func() {
		session, err := p.Run(ctx)
		close(events)
		<-forwarded
		prog.Send(doneMsg{session: session, err: err})
	}()

	final, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view: %w", err)
	}
	m := final.(progressModel)
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

// Package tui shows the progress of an evolution run in the terminal.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/netevo/internal/evolve"
	"github.com/san-kum/netevo/internal/network"
)

const historyCapacity = 600

var (
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(1, 2)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

// ProgressMsg reports the incumbent after a trial.
type ProgressMsg struct {
	Iteration int
	Score     float64
	Nodes     int
	Arcs      int
}

// DoneMsg ends the run.
type DoneMsg struct {
	Result *evolve.Result
	Err    error
}

type EvolveModel struct {
	title     string
	started   time.Time
	iteration int
	score     float64
	best      float64
	nodes     int
	arcs      int
	history   []float64
	done      bool
	result    *evolve.Result
	err       error
}

func NewEvolveModel(title string) EvolveModel {
	return EvolveModel{
		title:   title,
		started: time.Now(),
		best:    math.Inf(1),
		history: make([]float64, 0, historyCapacity),
	}
}

func (m EvolveModel) Init() tea.Cmd { return nil }

func (m EvolveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case ProgressMsg:
		m.iteration = msg.Iteration
		m.score = msg.Score
		m.nodes, m.arcs = msg.Nodes, msg.Arcs
		m.best = math.Min(m.best, msg.Score)
		if len(m.history) == historyCapacity {
			copy(m.history, m.history[1:])
			m.history = m.history[:historyCapacity-1]
		}
		m.history = append(m.history, msg.Score)
	case DoneMsg:
		m.done = true
		m.result, m.err = msg.Result, msg.Err
		return m, tea.Quit
	}
	return m, nil
}

func (m EvolveModel) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(errStyle.Render("FAILED: "+m.err.Error()) + "\n\n")
	case m.done:
		s.WriteString(doneStyle.Render("DONE") + "\n\n")
	default:
		s.WriteString("RUNNING\n\n")
	}
	if len(m.history) > 1 {
		chart := asciigraph.Plot(m.history, asciigraph.Height(8), asciigraph.Width(50), asciigraph.Caption("incumbent score"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Iteration", humanize.Comma(int64(m.iteration)))
	row("Score", fmt.Sprintf("%.6g", m.score))
	if !math.IsInf(m.best, 1) {
		row("Best", fmt.Sprintf("%.6g", m.best))
	}
	row("Graph", fmt.Sprintf("%d nodes, %d arcs", m.nodes, m.arcs))
	row("Elapsed", time.Since(m.started).Round(time.Second).String())
	s.WriteString(helpStyle.Render("Q:Quit"))
	return panelStyle.Render(s.String())
}

// History returns the recorded scores, oldest first.
func (m EvolveModel) History() []float64 { return m.history }

// Observer forwards every incumbent to p.
func Observer(p *tea.Program) evolve.Observer {
	return evolve.ObserverFunc(func(sys *network.System, score float64, iteration int) {
		p.Send(ProgressMsg{Iteration: iteration, Score: score, Nodes: sys.CountNodes(), Arcs: sys.CountArcs()})
	})
}

// RunFunc performs a search reporting to obs.
type RunFunc func(ctx context.Context, obs evolve.Observer) (*evolve.Result, error)

// Run shows the view while run executes on its own goroutine. Quitting the
// view cancels the context given to run; Run still waits for it to return.
func Run(ctx context.Context, title string, run RunFunc, opts ...tea.ProgramOption) (*evolve.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewEvolveModel(title), opts...)
	type outcome struct {
		res *evolve.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := run(ctx, Observer(p))
		done <- outcome{res, err}
		p.Send(DoneMsg{Result: res, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("tui: %w", err)
	}
	cancel()
	out := <-done
	return out.res, out.err
}

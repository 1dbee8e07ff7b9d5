package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func update(m EvolveModel, msg tea.Msg) (EvolveModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(EvolveModel), cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestProgressTracksBest(t *testing.T) {
	m := NewEvolveModel("ring")
	for i, score := range []float64{5, 3, 4} {
		var cmd tea.Cmd
		m, cmd = update(m, ProgressMsg{Iteration: i, Score: score, Nodes: 10, Arcs: 40})
		if cmd != nil {
			t.Fatalf("unexpected command after progress")
		}
	}
	if m.score != 4 || m.best != 3 || m.iteration != 2 {
		t.Errorf("unexpected model state: score %f best %f iteration %d", m.score, m.best, m.iteration)
	}
	if len(m.History()) != 3 {
		t.Errorf("expected 3 history points, got %d", len(m.History()))
	}

	view := m.View()
	for _, want := range []string{"RING", "RUNNING", "10 nodes, 40 arcs", "incumbent score"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryIsCapped(t *testing.T) {
	m := NewEvolveModel("cap")
	for i := 0; i < historyCapacity+10; i++ {
		m, _ = update(m, ProgressMsg{Iteration: i, Score: float64(i)})
	}
	h := m.History()
	if len(h) != historyCapacity {
		t.Fatalf("expected %d points, got %d", historyCapacity, len(h))
	}
	if h[0] != 10 || h[len(h)-1] != float64(historyCapacity+9) {
		t.Errorf("expected oldest points dropped, got %f..%f", h[0], h[len(h)-1])
	}
}

func TestDoneQuits(t *testing.T) {
	m, cmd := update(NewEvolveModel("x"), DoneMsg{})
	if !isQuit(cmd) {
		t.Error("expected quit after done")
	}
	if !strings.Contains(m.View(), "DONE") {
		t.Error("view should report done")
	}

	m, _ = update(NewEvolveModel("x"), DoneMsg{Err: errors.New("boom")})
	if !strings.Contains(m.View(), "FAILED: boom") {
		t.Error("view should report the error")
	}
}

func TestKeysQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		if _, cmd := update(NewEvolveModel("x"), key); !isQuit(cmd) {
			t.Errorf("key %q should quit", key.String())
		}
	}
	if _, cmd := update(NewEvolveModel("x"), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}); cmd != nil {
		t.Error("other keys should be ignored")
	}
}

// Package tui is the interactive terminal front end of the diagram.
//
// The Model runs inside the bubbletea event loop; every mutation goes
// through the shared session, so the TUI and a concurrently running HTTP or
// MCP surface see the same state.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/cfreality/internal/dictionary"
	"github.com/starford/cfreality/internal/models"
	"github.com/starford/cfreality/internal/session"
)

// Tab identifies a screen.
type Tab int

const (
	TabCosmology Tab = iota
	TabDictionary
	TabSimulator
	TabInsights
)

var tabNames = []string{"Cosmology", "Dictionary", "Simulator", "Insights"}

func (t Tab) String() string { return tabNames[t] }

// SliderStep is how much left/right moves a simulator slider.
const SliderStep = 5

const frameInterval = 100 * time.Millisecond

type frameMsg time.Time

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Model is the bubbletea model.
type Model struct {
	sess *session.Session

	tab    Tab
	cursor int // selected stage on the cosmology tab
	slider int // selected parameter on the simulator tab

	search       textinput.Model
	searchActive bool
	letter       int // 0 is "All", 1..26 are A..Z

	width    int
	quitting bool
}

// New returns a model over sess.
func New(sess *session.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "Search terms..."
	ti.CharLimit = 64
	ti.Width = 40

	return Model{sess: sess, search: ti}
}

// Run starts the program in the alternate screen and blocks until it exits.
func Run(sess *session.Session) error {
	_, err := tea.NewProgram(New(sess), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return frame()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case frameMsg:
		return m, frame()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.tab == TabDictionary && m.searchActive {
			return m.updateSearch(msg)
		}
		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			m.tab = (m.tab + 1) % Tab(len(tabNames))
			return m, nil
		case "shift+tab":
			m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
			return m, nil
		case "1", "2", "3", "4":
			m.tab = Tab(msg.String()[0] - '1')
			return m, nil
		}

		switch m.tab {
		case TabCosmology:
			return m.updateCosmology(msg)
		case TabDictionary:
			return m.updateDictionary(msg)
		case TabSimulator:
			return m.updateSimulator(msg)
		}
	}
	return m, nil
}

func (m Model) updateCosmology(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nodes := m.sess.Nodes()
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(nodes)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.sess.Collapse(string(nodes[m.cursor].ID))
	case "r":
		m.sess.Reset()
	case "p":
		m.sess.ToggleClock()
	}
	return m, nil
}

func (m Model) updateDictionary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	letters := len(dictionary.Letters()) + 1
	switch msg.String() {
	case "/":
		m.searchActive = true
		return m, m.search.Focus()
	case "up", "k":
		m.letter = (m.letter + letters - 1) % letters
	case "down", "j":
		m.letter = (m.letter + 1) % letters
	case "esc":
		m.letter = 0
		m.search.SetValue("")
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		m.searchActive = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateSimulator(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.slider > 0 {
			m.slider--
		}
	case "down", "j":
		if m.slider < len(models.ParameterNames)-1 {
			m.slider++
		}
	case "left", "h":
		m.nudge(-SliderStep)
	case "right", "l":
		m.nudge(SliderStep)
	}
	return m, nil
}

func (m Model) nudge(delta int) {
	name := models.ParameterNames[m.slider]
	p := m.sess.Parameters()
	_, _ = m.sess.SetParameter(name, paramValue(p, name)+delta)
}

func paramValue(p models.Parameters, name string) int {
	switch name {
	case models.ParamDistinctions:
		return p.Distinctions
	case models.ParamIdeation:
		return p.Ideation
	default:
		return p.Complexity
	}
}

// Letter is the active letter filter; empty means all.
func (m Model) Letter() string {
	if m.letter == 0 {
		return ""
	}
	return dictionary.Letters()[m.letter-1]
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Consciousness-First Reality"))
	b.WriteString("\n\n")
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	switch m.tab {
	case TabCosmology:
		b.WriteString(m.viewCosmology())
	case TabDictionary:
		b.WriteString(m.viewDictionary())
	case TabSimulator:
		b.WriteString(m.viewSimulator())
	case TabInsights:
		b.WriteString(m.viewInsights())
	}
	return b.String()
}

func (m Model) tabBar() string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			parts[i] = activeTabStyle.Render(name)
		} else {
			parts[i] = tabStyle.Render(name)
		}
	}
	return strings.Join(parts, "")
}

func (m Model) viewCosmology() string {
	var b strings.Builder
	for i, n := range m.sess.Nodes() {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		label := brightness(n.Opacity).Render(fmt.Sprintf("%-5s", n.Label))
		line := fmt.Sprintf("%s%s  %s", marker, label, mutedStyle.Render(n.Description))
		if n.Collapsed {
			line += "  " + collapsedStyle.Render("collapsed")
		}
		b.WriteString(line + "\n")
	}

	clockLabel := "paused"
	if m.sess.ClockState().Running {
		clockLabel = "playing"
	}
	p := m.sess.Parameters()
	fmt.Fprintf(&b, "\nD %d  I %d  C %d  Φ %.1f  [%s]\n",
		p.Distinctions, p.Ideation, p.Complexity, m.sess.Coherence(), clockLabel)
	b.WriteString(helpStyle.Render("↑/↓ select • enter collapse • r reset • p pause/play • tab switch • q quit"))
	return b.String()
}

func (m Model) viewDictionary() string {
	var b strings.Builder
	b.WriteString(m.search.View())
	letter := m.Letter()
	if letter == "" {
		letter = "All"
	}
	fmt.Fprintf(&b, "   letter: %s\n\n", cursorStyle.Render(letter))

	terms := dictionary.Filter(m.search.Value(), m.Letter())
	if len(terms) == 0 {
		b.WriteString(mutedStyle.Render("No terms found") + "\n")
	}
	for _, t := range terms {
		fmt.Fprintf(&b, "%s  %s\n", titleStyle.Render(t.Title), t.Definition)
		if rel := dictionary.Related(t.ID); len(rel) > 0 {
			names := make([]string, len(rel))
			for i, r := range rel {
				names[i] = r.Title
			}
			b.WriteString(mutedStyle.Render("   related: "+strings.Join(names, ", ")) + "\n")
		}
	}
	b.WriteString(helpStyle.Render("/ search • ↑/↓ letter • esc clear • tab switch • q quit"))
	return b.String()
}

func (m Model) viewSimulator() string {
	var b strings.Builder
	p := m.sess.Parameters()
	for i, name := range models.ParameterNames {
		marker := "  "
		if i == m.slider {
			marker = cursorStyle.Render("> ")
		}
		v := paramValue(p, name)
		bar := barStyle.Render(strings.Repeat("█", v/5)) + mutedStyle.Render(strings.Repeat("░", 20-v/5))
		fmt.Fprintf(&b, "%s%-13s %s %3d\n", marker, name, bar, v)
	}
	fmt.Fprintf(&b, "\nCoherence Φ = %.2f\n", m.sess.Coherence())
	b.WriteString(helpStyle.Render("↑/↓ select • ←/→ adjust by 5 • tab switch • q quit"))
	return b.String()
}

func (m Model) viewInsights() string {
	insights := m.sess.Insights()
	if len(insights) == 0 {
		return mutedStyle.Render("No insights yet. Collapse a stage on the Cosmology tab.")
	}
	var b strings.Builder
	for _, in := range insights {
		ts := time.UnixMilli(in.Timestamp).Format("15:04:05")
		fmt.Fprintf(&b, "%s  %s\n", mutedStyle.Render(ts), in.Text)
	}
	return b.String()
}

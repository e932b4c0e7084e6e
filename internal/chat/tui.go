package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/kpiadvisor/internal/ai"
	"github.com/amishk599/kpiadvisor/internal/model"
)

// queryTimeout bounds one round trip from the TUI.
const queryTimeout = 2 * time.Minute

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	advisorLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	alertBarStyle = statusBarStyle.
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160"))

	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
)

// Advisor is the part of ai.KPIAdvisor the chat needs.
type Advisor interface {
	Advise(ctx context.Context, userInput string, bizCtx model.BusinessContext, kpis model.KPISnapshot) ai.Result
	ClearMemory(ctx context.Context) error
}

type role int

const (
	roleUser role = iota
	roleAdvisor
	roleSystem
)

type entry struct {
	role   role
	text   string
	failed bool
}

// Alert thresholds of the assistant dashboard.
const (
	slowResponseThreshold = 2 * time.Second
	errorRateThreshold    = 0.15
)

// sessionStats mirrors the counters of the assistant dashboard.
type sessionStats struct {
	interactions int
	failures     int
	totalLatency time.Duration
}

func (s sessionStats) avgLatency() time.Duration {
	if s.interactions == 0 {
		return 0
	}
	return s.totalLatency / time.Duration(s.interactions)
}

func (s sessionStats) errorRate() float64 {
	if s.interactions == 0 {
		return 0
	}
	return float64(s.failures) / float64(s.interactions)
}

// alerts names every dashboard threshold currently crossed.
func (s sessionStats) alerts() []string {
	var out []string
	if s.avgLatency() > slowResponseThreshold {
		out = append(out, "respuesta lenta")
	}
	if s.errorRate() > errorRateThreshold {
		out = append(out, "tasa de error alta")
	}
	return out
}

// answeredMsg is sent when an async query completes.
type answeredMsg struct {
	result ai.Result
}

// clearedMsg is sent when the memory has been cleared.
type clearedMsg struct {
	err error
}

type chatModel struct {
	advisor Advisor
	bizCtx  model.BusinessContext
	kpis    model.KPISnapshot

	input      textinput.Model
	transcript viewport.Model
	spinner    spinner.Model

	entries []entry
	stats   sessionStats
	busy    bool

	width  int
	height int
	ready  bool
}

func newChatModel(advisor Advisor, bizCtx model.BusinessContext, kpis model.KPISnapshot) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Pregunta sobre tus KPIs..."
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return chatModel{
		advisor: advisor,
		bizCtx:  bizCtx,
		kpis:    kpis,
		input:   ti,
		spinner: sp,
	}
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case answeredMsg:
		m.busy = false
		m.stats.interactions++
		m.stats.totalLatency += msg.result.Duration
		if !msg.result.OK() {
			m.stats.failures++
		}
		m.entries = append(m.entries, entry{role: roleAdvisor, text: msg.result.String(), failed: !msg.result.OK()})
		m.refreshTranscript()
		return m, nil

	case clearedMsg:
		if msg.err != nil {
			m.entries = append(m.entries, entry{role: roleSystem, text: fmt.Sprintf("no se pudo borrar la memoria: %v", msg.err), failed: true})
		} else {
			m.entries = append(m.entries, entry{role: roleSystem, text: "memoria borrada"})
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "ctrl+l":
			if m.busy {
				return m, nil
			}
			return m, m.clearCmd()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.transcript, cmd = m.transcript.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) submit() (tea.Model, tea.Cmd) {
	query := strings.TrimSpace(m.input.Value())
	if m.busy || query == "" {
		return m, nil
	}
	m.input.SetValue("")
	m.busy = true
	m.entries = append(m.entries, entry{role: roleUser, text: query})
	m.refreshTranscript()
	return m, tea.Batch(m.askCmd(query), m.spinner.Tick)
}

func (m chatModel) askCmd(query string) tea.Cmd {
	advisor, bizCtx, kpis := m.advisor, m.bizCtx, m.kpis
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		return answeredMsg{result: advisor.Advise(ctx, query, bizCtx, kpis)}
	}
}

func (m chatModel) clearCmd() tea.Cmd {
	advisor := m.advisor
	return func() tea.Msg {
		return clearedMsg{err: advisor.ClearMemory(context.Background())}
	}
}

func (m *chatModel) recalcLayout() {
	// Title (1) + status bar (1) + input line (1) + hint (1) = 4 lines overhead.
	width := max(m.width, 20)
	height := max(m.height-4, 3)

	if !m.ready {
		m.transcript = viewport.New(width, height)
		m.ready = true
	} else {
		m.transcript.Width = width
		m.transcript.Height = height
	}
	m.input.Width = max(width-4, 10)
	m.refreshTranscript()
}

func (m *chatModel) refreshTranscript() {
	if !m.ready {
		return
	}
	m.transcript.SetContent(renderEntries(m.entries, m.transcript.Width))
	m.transcript.GotoBottom()
}

func renderEntries(entries []entry, width int) string {
	body := lipgloss.NewStyle().Width(max(width-2, 10))
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch e.role {
		case roleUser:
			b.WriteString(userLabelStyle.Render("Tú") + "\n")
			b.WriteString(body.Render(e.text) + "\n")
		case roleAdvisor:
			b.WriteString(advisorLabelStyle.Render("Asistente") + "\n")
			if e.failed {
				b.WriteString(errorStyle.Inherit(body).Render(e.text) + "\n")
			} else {
				b.WriteString(body.Render(e.text) + "\n")
			}
		case roleSystem:
			style := hintStyle
			if e.failed {
				style = errorStyle
			}
			b.WriteString(style.Render("· "+e.text) + "\n")
		}
	}
	return b.String()
}

func (m chatModel) statusLine() string {
	line := fmt.Sprintf("Interacciones: %d  Errores: %d (%.0f%%)  Tiempo medio: %.1fs",
		m.stats.interactions, m.stats.failures, m.stats.errorRate()*100, m.stats.avgLatency().Seconds())
	if alerts := m.stats.alerts(); len(alerts) > 0 {
		line += "  ALERTA: " + strings.Join(alerts, ", ")
	}
	return line
}

func (m chatModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Asistente de KPIs") + "\n")
	b.WriteString(m.transcript.View() + "\n")
	bar := statusBarStyle
	if len(m.stats.alerts()) > 0 {
		bar = alertBarStyle
	}
	b.WriteString(bar.Width(m.width).Render(m.statusLine()) + "\n")
	if m.busy {
		b.WriteString(m.spinner.View() + " Analizando KPIs...\n")
	} else {
		b.WriteString(m.input.View() + "\n")
	}
	b.WriteString(hintStyle.Render("enter enviar  ctrl+l borrar memoria  pgup/pgdown desplazar  esc salir"))
	return b.String()
}

// Run starts the interactive chat on the alternate screen and blocks until
// the user quits. Every question is asked with the same context and KPIs.
func Run(advisor Advisor, bizCtx model.BusinessContext, kpis model.KPISnapshot) error {
	p := tea.NewProgram(newChatModel(advisor, bizCtx, kpis), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

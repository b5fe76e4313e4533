package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

type model struct {
	ctx   context.Context
	theme Theme
	deps  Deps

	table table.Model

	snap    domain.Snapshot
	hasSnap bool
	lastErr error
	lastAt  time.Time

	fetching bool
	seq      int
	toast    string

	width int
}

// Run starts the live view and blocks until the user quits or ctx ends.
func Run(ctx context.Context, deps Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, deps)
	p := tea.NewProgram(wrapSafe(m, deps.Logger), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newModel(ctx context.Context, deps Deps) model {
	if deps.Interval <= 0 {
		deps.Interval = 5 * time.Second
	}

	t := table.New(
		table.WithColumns(outletColumns()),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(tableStyles()),
	)

	return model{
		ctx:   ctx,
		theme: DefaultTheme(),
		deps:  deps,
		table: t,
		// Init issues the first fetch.
		fetching: true,
	}
}

func outletColumns() []table.Column {
	return []table.Column{
		{Title: "Device", Width: 12},
		{Title: "#", Width: 3},
		{Title: "Outlet", Width: 18},
		{Title: "Status", Width: 6},
		{Title: "Amps", Width: 7},
		{Title: "Watts", Width: 7},
		{Title: "kWh", Width: 10},
	}
}

func (m model) Init() tea.Cmd {
	return cmdFetch(m.ctx, m.deps)
}

func (m *model) fetchCmd() tea.Cmd {
	m.fetching = true
	return cmdFetch(m.ctx, m.deps)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetHeight(max(3, msg.Height-14))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "r":
			if m.fetching {
				return m, nil
			}
			m.toast = "refreshing…"
			return m, m.fetchCmd()
		}

	case snapshotMsg:
		m.fetching = false
		m.lastAt = msg.at
		m.toast = ""
		if msg.err != nil {
			m.lastErr = msg.err
			if m.deps.Logger != nil {
				m.deps.Logger.Warn("pdu.fetch_failed", "where", "tui", "error", msg.err)
			}
		} else {
			m.lastErr = nil
			m.snap = msg.snap
			m.hasSnap = true
			m.table.SetRows(outletRows(msg.snap))
		}
		m.seq++
		return m, cmdTick(m.deps.Interval, m.seq)

	case tickMsg:
		if msg.seq != m.seq || m.fetching {
			return m, nil
		}
		return m, m.fetchCmd()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func outletRows(s domain.Snapshot) []table.Row {
	rows := make([]table.Row, 0, s.OutletCount())
	for _, d := range s.Devices {
		if !d.Exported() {
			continue
		}
		name := d.Name
		if name == "" {
			name = d.ID
		}
		for _, o := range d.Outlets {
			rows = append(rows, table.Row{
				clampString(name, 12),
				o.Num,
				clampString(o.Name, 18),
				string(o.Status),
				formatFloat(o.Amps, 2),
				formatFloat(o.Watts, 0),
				formatFloat(o.KWattHrs, 2),
			})
		}
	}
	return rows
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("pdu-exporter · watch"))
	b.WriteString("\n")
	b.WriteString(m.theme.Subtitle.Render(fmt.Sprintf("%s every %s", m.deps.Target, m.deps.Interval)))
	b.WriteString("\n\n")

	switch {
	case m.lastErr != nil:
		b.WriteString(m.theme.Error.Render("✗ " + userMessage(m.lastErr)))
		b.WriteString("\n")
	case !m.hasSnap:
		b.WriteString("Fetching…\n")
	default:
		b.WriteString(m.theme.On.Render("✓ ") + fmt.Sprintf("updated %s", m.lastAt.Format(time.TimeOnly)))
		b.WriteString("\n")
	}

	if m.hasSnap {
		b.WriteString("\n")
		for _, d := range m.snap.Devices {
			if !d.Exported() {
				continue
			}
			b.WriteString(m.theme.Card.Render(renderDeviceSummary(d)))
			b.WriteString("\n")
		}
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	if m.toast != "" {
		b.WriteString(m.theme.Subtitle.Render(m.toast))
		b.WriteString("\n")
	}
	b.WriteString(m.theme.Help.Render("r refresh · ↑/↓ scroll · q quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

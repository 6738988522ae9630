package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tracetime/internal/repository"
	"tracetime/internal/stats"
	"tracetime/internal/types"
)

// Terminal dashboard, for checking stats over SSH or without a browser.

const dashboardRefresh = 5 * time.Second

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#39D353"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#39D353"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

type statsMsg struct {
	view *stats.View
	heat []types.HeatMapDay
	err  error
}

type refreshMsg time.Time

type dashboardModel struct {
	repo     repository.ActivityRepository
	ranges   []string
	rangeIdx int
	detailed bool
	asTable  bool
	view     *stats.View
	heat     []types.HeatMapDay
	err      error
	width    int
}

func newDashboardModel(repo repository.ActivityRepository) dashboardModel {
	return dashboardModel{
		repo:   repo,
		ranges: repository.Ranges(),
		width:  80,
	}
}

func runDashboard(repo repository.ActivityRepository) error {
	_, err := tea.NewProgram(newDashboardModel(repo), tea.WithAltScreen()).Run()
	return err
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.load(), scheduleRefresh())
}

func (m dashboardModel) load() tea.Cmd {
	repo := m.repo
	rng := m.ranges[m.rangeIdx]
	detailed := m.detailed
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		raw, err := repo.GetStats(ctx, rng)
		if err != nil {
			return statsMsg{err: err}
		}
		return statsMsg{
			view: stats.Aggregate(raw, detailed, nil),
			heat: stats.BuildHeatMap(repo.GetDailyTotals(ctx), time.Now()),
		}
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(dashboardRefresh, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case statsMsg:
		m.view = msg.view
		m.heat = msg.heat
		m.err = msg.err
		return m, nil

	case refreshMsg:
		return m, tea.Batch(m.load(), scheduleRefresh())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "tab":
			m.rangeIdx = (m.rangeIdx + 1) % len(m.ranges)
			return m, m.load()
		case "left", "h", "shift+tab":
			m.rangeIdx = (m.rangeIdx - 1 + len(m.ranges)) % len(m.ranges)
			return m, m.load()
		case "d":
			m.detailed = !m.detailed
			return m, m.load()
		case "t":
			m.asTable = !m.asTable
			return m, nil
		case "r":
			return m, m.load()
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TraceTime"))
	if m.view != nil {
		b.WriteString(labelStyle.Render("  " + m.view.TotalLabel))
	}
	b.WriteString("\n\n")

	b.WriteString(m.renderRanges())
	b.WriteString("\n\n")

	if len(m.heat) > 0 {
		b.WriteString(m.renderHeatMap())
		b.WriteString("\n\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
	case m.view == nil:
		b.WriteString(labelStyle.Render("loading..."))
	case len(m.view.Records) == 0:
		b.WriteString(labelStyle.Render("no activity recorded"))
	default:
		b.WriteString(m.renderRecords())
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("←/→ range · d detailed · t table · r refresh · q quit"))
	return b.String()
}

func (m dashboardModel) renderRanges() string {
	parts := make([]string, 0, len(m.ranges))
	for i, rng := range m.ranges {
		if i == m.rangeIdx {
			parts = append(parts, activeStyle.Render("["+rng+"]"))
		} else {
			parts = append(parts, labelStyle.Render(rng))
		}
	}
	return strings.Join(parts, "  ")
}

func (m dashboardModel) renderHeatMap() string {
	var b strings.Builder
	for _, day := range m.heat {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(day.Color)).Render("■"))
	}
	return b.String()
}

func (m dashboardModel) renderRecords() string {
	nameWidth := 20
	barSpace := m.width - nameWidth - 18
	if barSpace < 10 {
		barSpace = 10
	}

	var b strings.Builder
	for i, rec := range m.view.Records {
		if i > 0 {
			b.WriteString("\n")
		}
		name := rec.AppName
		if len(name) > nameWidth {
			name = name[:nameWidth-1] + "…"
		}
		b.WriteString(fmt.Sprintf("%-*s ", nameWidth, name))

		if m.asTable {
			b.WriteString(labelStyle.Render(rec.TimeLabel))
		} else {
			cells := int(rec.BarWidth / 400.0 * float64(barSpace))
			if cells < 1 && rec.Duration > 0 {
				cells = 1
			}
			b.WriteString(barStyle.Render(strings.Repeat("█", cells)))
			b.WriteString(" " + labelStyle.Render(rec.TimeLabel))
		}

		if m.detailed {
			for _, d := range rec.Details {
				b.WriteString("\n" + strings.Repeat(" ", nameWidth+1))
				b.WriteString(labelStyle.Render(fmt.Sprintf("%s - %s", d.WindowTitle, d.TimeLabel)))
			}
		}
	}
	return b.String()
}
